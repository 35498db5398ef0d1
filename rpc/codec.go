package rpc

import (
	"fmt"
	"maps"
	"slices"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/goap/goap"
)

// PlanResponse is the decoded reply of the Plan procedure.
type PlanResponse struct {
	RunID     string
	Found     bool
	Cost      float64
	Actions   []string
	Nodes     int
	Truncated bool
}

// EncodeProblem converts p into a Plan request. State values must be nil,
// bool, numeric or string; numbers travel as float64, so a server sees every
// numeric fact as float64 regardless of how the client typed it.
func EncodeProblem(p goap.Problem) (*structpb.Struct, error) {
	current, err := encodeState(p.Current)
	if err != nil {
		return nil, fmt.Errorf("current: %w", err)
	}
	goal, err := encodeState(p.Goal)
	if err != nil {
		return nil, fmt.Errorf("goal: %w", err)
	}

	actions := make([]*structpb.Value, 0, len(p.Actions))
	for _, a := range p.Actions {
		if a == nil {
			continue
		}
		pre, err := encodeState(a.Preconditions)
		if err != nil {
			return nil, fmt.Errorf("action %s: preconditions: %w", a.Name, err)
		}
		eff, err := encodeState(a.Effects)
		if err != nil {
			return nil, fmt.Errorf("action %s: effects: %w", a.Name, err)
		}
		actions = append(actions, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"name":          structpb.NewStringValue(a.Name),
			"cost":          structpb.NewNumberValue(a.Cost),
			"preconditions": structpb.NewStructValue(pre),
			"effects":       structpb.NewStructValue(eff),
		}}))
	}

	fields := map[string]*structpb.Value{
		"actions": structpb.NewListValue(&structpb.ListValue{Values: actions}),
		"current": structpb.NewStructValue(current),
		"goal":    structpb.NewStructValue(goal),
	}
	if p.Name != "" {
		fields["name"] = structpb.NewStringValue(p.Name)
	}
	return &structpb.Struct{Fields: fields}, nil
}

func encodeState(s *goap.State) (*structpb.Struct, error) {
	fields := make(map[string]*structpb.Value, s.Len())
	for k, v := range s.All() {
		val, err := structpb.NewValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w: value of %q: %v", ErrInvalidRequest, k, err)
		}
		if _, ok := scalarOf(val); !ok {
			return nil, fmt.Errorf("%w: value of %q is not a scalar", ErrInvalidRequest, k)
		}
		fields[k] = val
	}
	return &structpb.Struct{Fields: fields}, nil
}

// DecodeProblem validates a Plan request. Struct fields are unordered on the
// wire, so state keys come back sorted; action order is kept. An action
// without cost costs goap.DefaultCost.
func DecodeProblem(s *structpb.Struct) (goap.Problem, error) {
	p := goap.Problem{Current: goap.NewState(), Goal: goap.NewState()}

	for _, key := range sortedKeys(s.GetFields()) {
		v := s.Fields[key]

		var err error
		switch key {
		case "name":
			p.Name, err = stringOf(v, "name")
		case "current":
			p.Current, err = decodeState(v, "current")
		case "goal":
			p.Goal, err = decodeState(v, "goal")
		case "actions":
			p.Actions, err = decodeActions(v)
		default:
			err = fmt.Errorf("%w: unknown field %q", ErrInvalidRequest, key)
		}
		if err != nil {
			return goap.Problem{}, err
		}
	}

	return p, nil
}

func decodeActions(v *structpb.Value) ([]*goap.Action, error) {
	if isNull(v) {
		return nil, nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil, fmt.Errorf("%w: actions must be a list", ErrInvalidRequest)
	}

	actions := make([]*goap.Action, 0, len(list.Values))
	for i, item := range list.Values {
		a, err := decodeAction(item)
		if err != nil {
			return nil, fmt.Errorf("action %d: %w", i, err)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func decodeAction(v *structpb.Value) (*goap.Action, error) {
	st := v.GetStructValue()
	if st == nil {
		return nil, fmt.Errorf("%w: action must be an object", ErrInvalidRequest)
	}

	a := goap.NewAction("")
	for _, key := range sortedKeys(st.Fields) {
		val := st.Fields[key]

		var err error
		switch key {
		case "name":
			a.Name, err = stringOf(val, "name")
		case "cost":
			n, ok := val.GetKind().(*structpb.Value_NumberValue)
			switch {
			case !ok:
				err = fmt.Errorf("%w: cost must be a number", ErrInvalidRequest)
			case n.NumberValue < 0:
				err = fmt.Errorf("%w: cost must not be negative, got %v", ErrInvalidRequest, n.NumberValue)
			default:
				a.Cost = n.NumberValue
			}
		case "preconditions":
			a.Preconditions, err = decodeState(val, "preconditions")
		case "effects":
			a.Effects, err = decodeState(val, "effects")
		default:
			err = fmt.Errorf("%w: unknown action field %q", ErrInvalidRequest, key)
		}
		if err != nil {
			return nil, err
		}
	}

	if a.Name == "" {
		return nil, fmt.Errorf("%w: action name is required", ErrInvalidRequest)
	}
	return a, nil
}

func decodeState(v *structpb.Value, field string) (*goap.State, error) {
	s := goap.NewState()
	if isNull(v) {
		return s, nil
	}
	st := v.GetStructValue()
	if st == nil {
		return nil, fmt.Errorf("%w: %s must be an object", ErrInvalidRequest, field)
	}

	for _, key := range sortedKeys(st.Fields) {
		val, ok := scalarOf(st.Fields[key])
		if !ok {
			return nil, fmt.Errorf("%w: %s: value of %q must be a scalar", ErrInvalidRequest, field, key)
		}
		s.Set(key, val)
	}
	return s, nil
}

// EncodeResult converts a planning result into a Plan response.
func EncodeResult(r *goap.Result) *structpb.Struct {
	names := make([]*structpb.Value, len(r.Actions))
	for i, a := range r.Actions {
		names[i] = structpb.NewStringValue(a.Name)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"run_id":    structpb.NewStringValue(r.RunID),
		"found":     structpb.NewBoolValue(r.Found),
		"cost":      structpb.NewNumberValue(r.Cost),
		"actions":   structpb.NewListValue(&structpb.ListValue{Values: names}),
		"nodes":     structpb.NewNumberValue(float64(r.Nodes)),
		"truncated": structpb.NewBoolValue(r.Truncated),
	}}
}

// DecodeResult reads a Plan response. Missing fields keep their zero value.
func DecodeResult(s *structpb.Struct) (*PlanResponse, error) {
	f := s.GetFields()
	resp := &PlanResponse{
		RunID:     f["run_id"].GetStringValue(),
		Found:     f["found"].GetBoolValue(),
		Cost:      f["cost"].GetNumberValue(),
		Nodes:     int(f["nodes"].GetNumberValue()),
		Truncated: f["truncated"].GetBoolValue(),
		Actions:   []string{},
	}

	for i, v := range f["actions"].GetListValue().GetValues() {
		name, ok := v.GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, fmt.Errorf("%w: action %d is not a string", ErrInvalidResponse, i)
		}
		resp.Actions = append(resp.Actions, name.StringValue)
	}
	return resp, nil
}

func scalarOf(v *structpb.Value) (any, bool) {
	switch k := v.GetKind().(type) {
	case *structpb.Value_NullValue:
		return nil, true
	case *structpb.Value_BoolValue:
		return k.BoolValue, true
	case *structpb.Value_NumberValue:
		return k.NumberValue, true
	case *structpb.Value_StringValue:
		return k.StringValue, true
	default:
		return nil, false
	}
}

func stringOf(v *structpb.Value, field string) (string, error) {
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrInvalidRequest, field)
	}
	return s.StringValue, nil
}

func isNull(v *structpb.Value) bool {
	_, ok := v.GetKind().(*structpb.Value_NullValue)
	return ok || v == nil
}

func sortedKeys(fields map[string]*structpb.Value) []string {
	return slices.Sorted(maps.Keys(fields))
}
