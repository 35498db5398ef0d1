package library

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/goap/goap"
)

// Decode parses a problem document. The document is walked as a YAML node
// tree so that state keys and actions keep the order they were written in;
// JSON documents decode the same way.
//
//	name: firewood
//	current: {hasAxe: false}
//	goal: {hasFirewood: true}
//	actions:
//	  - name: getAxe
//	    cost: 2
//	    preconditions: {hasAxe: false}
//	    effects: {hasAxe: true}
//
// An action without cost costs goap.DefaultCost. State values must be
// scalars. Unknown fields are rejected.
func Decode(data []byte) (goap.Problem, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return goap.Problem{}, fmt.Errorf("%w: %v", ErrInvalidProblem, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return goap.Problem{}, fmt.Errorf("%w: empty document", ErrInvalidProblem)
	}

	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return goap.Problem{}, invalid(root, "problem must be a mapping")
	}

	p := goap.Problem{Current: goap.NewState(), Goal: goap.NewState()}

	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]

		var err error
		switch key.Value {
		case "name":
			err = decodeString(val, &p.Name)
		case "current":
			p.Current, err = decodeState(val)
		case "goal":
			p.Goal, err = decodeState(val)
		case "actions":
			p.Actions, err = decodeActions(val)
		default:
			err = invalid(key, "unknown field %q", key.Value)
		}
		if err != nil {
			return goap.Problem{}, err
		}
	}

	return p, nil
}

func decodeActions(n *yaml.Node) ([]*goap.Action, error) {
	if isNull(n) {
		return nil, nil
	}
	if n.Kind != yaml.SequenceNode {
		return nil, invalid(n, "actions must be a list")
	}

	actions := make([]*goap.Action, 0, len(n.Content))
	for _, item := range n.Content {
		a, err := decodeAction(item)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func decodeAction(n *yaml.Node) (*goap.Action, error) {
	if n.Kind != yaml.MappingNode {
		return nil, invalid(n, "action must be a mapping")
	}

	a := goap.NewAction("")
	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]

		var err error
		switch key.Value {
		case "name":
			err = decodeString(val, &a.Name)
		case "cost":
			if err = val.Decode(&a.Cost); err != nil {
				err = invalid(val, "cost: %v", err)
			} else if a.Cost < 0 {
				err = invalid(val, "cost must not be negative, got %v", a.Cost)
			}
		case "preconditions":
			a.Preconditions, err = decodeState(val)
		case "effects":
			a.Effects, err = decodeState(val)
		default:
			err = invalid(key, "unknown action field %q", key.Value)
		}
		if err != nil {
			return nil, err
		}
	}

	if a.Name == "" {
		return nil, invalid(n, "action name is required")
	}
	return a, nil
}

func decodeState(n *yaml.Node) (*goap.State, error) {
	s := goap.NewState()
	if isNull(n) {
		return s, nil
	}
	if n.Kind != yaml.MappingNode {
		return nil, invalid(n, "state must be a mapping")
	}

	for i := 0; i+1 < len(n.Content); i += 2 {
		key, val := n.Content[i], n.Content[i+1]
		if key.Kind != yaml.ScalarNode {
			return nil, invalid(key, "state key must be a scalar")
		}
		if val.Kind != yaml.ScalarNode {
			return nil, invalid(val, "value of %q must be a scalar", key.Value)
		}

		var v any
		if err := val.Decode(&v); err != nil {
			return nil, invalid(val, "value of %q: %v", key.Value, err)
		}
		s.Set(key.Value, v)
	}
	return s, nil
}

func decodeString(n *yaml.Node, dst *string) error {
	if n.Kind != yaml.ScalarNode {
		return invalid(n, "expected a string")
	}
	*dst = n.Value
	return nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

func invalid(n *yaml.Node, format string, args ...any) error {
	return fmt.Errorf("%w: line %d: %s", ErrInvalidProblem, n.Line, fmt.Sprintf(format, args...))
}

// Encode renders p in the format Decode reads, preserving state key order
// and action order.
func Encode(p goap.Problem) ([]byte, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	if p.Name != "" {
		root.Content = append(root.Content, scalar("name"), scalar(p.Name))
	}

	current, err := encodeState(p.Current)
	if err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}
	goal, err := encodeState(p.Goal)
	if err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}
	root.Content = append(root.Content, scalar("current"), current, scalar("goal"), goal)

	actions := &yaml.Node{Kind: yaml.SequenceNode}
	for _, a := range p.Actions {
		if a == nil {
			continue
		}
		n, err := encodeAction(a)
		if err != nil {
			return nil, fmt.Errorf("action %s: %w", a.Name, err)
		}
		actions.Content = append(actions.Content, n)
	}
	root.Content = append(root.Content, scalar("actions"), actions)

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeAction(a *goap.Action) (*yaml.Node, error) {
	cost := &yaml.Node{}
	if err := cost.Encode(a.Cost); err != nil {
		return nil, err
	}
	pre, err := encodeState(a.Preconditions)
	if err != nil {
		return nil, err
	}
	eff, err := encodeState(a.Effects)
	if err != nil {
		return nil, err
	}

	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			scalar("name"), scalar(a.Name),
			scalar("cost"), cost,
			scalar("preconditions"), pre,
			scalar("effects"), eff,
		},
	}, nil
}

func encodeState(s *goap.State) (*yaml.Node, error) {
	n := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}
	for k, v := range s.All() {
		val, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k, err)
		}
		if val.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("%w: value of %q is not a scalar", ErrInvalidProblem, k)
		}
		n.Content = append(n.Content, scalar(k), val)
	}
	return n, nil
}

// encodeValue writes floats so they decode as float64 again; yaml would
// otherwise print 1.0 as 1 and read it back as int, which compares unequal.
func encodeValue(v any) (*yaml.Node, error) {
	switch f := v.(type) {
	case float64:
		return floatNode(f), nil
	case float32:
		return floatNode(float64(f)), nil
	}

	val := &yaml.Node{}
	if err := val.Encode(v); err != nil {
		return nil, err
	}
	return val, nil
}

func floatNode(f float64) *yaml.Node {
	var text string
	switch {
	case math.IsNaN(f):
		text = ".nan"
	case math.IsInf(f, 1):
		text = ".inf"
	case math.IsInf(f, -1):
		text = "-.inf"
	default:
		text = strconv.FormatFloat(f, 'f', -1, 64)
		if !strings.Contains(text, ".") {
			text += ".0"
		}
	}
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: text}
}

func scalar(v string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v}
}
