package rpc_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"connectrpc.com/connect"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/tailored-agentic-units/goap/goap"
	"github.com/tailored-agentic-units/goap/rpc"
)

func newTestServer(t *testing.T, cfg goap.Config) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(rpc.NewHandler(goap.NewWithObserver(cfg, nil)))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func woodProblem() goap.Problem {
	return goap.Problem{
		Name: "wood",
		Actions: []*goap.Action{
			goap.NewAction("A").AddEffect("hasAxe", true).WithCost(5),
			goap.NewAction("B").AddEffect("hasWood", true),
			goap.NewAction("C").AddPrecondition("hasWood", true).AddEffect("hasAxe", true),
		},
		Current: goap.NewState(),
		Goal:    goap.StateOf("hasAxe", true),
	}
}

func TestClient_Plan(t *testing.T) {
	srv := newTestServer(t, goap.Config{})
	client := rpc.NewClient(srv.Client(), srv.URL+"/")

	resp, err := client.Plan(context.Background(), woodProblem())
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if !resp.Found || resp.Cost != 2 || resp.Nodes != 5 || resp.Truncated {
		t.Errorf("response = %+v", resp)
	}
	if !slices.Equal(resp.Actions, []string{"B", "C"}) {
		t.Errorf("actions = %v, want [B C]", resp.Actions)
	}
	if resp.RunID == "" {
		t.Error("RunID is empty")
	}
}

func TestClient_Plan_NotFound(t *testing.T) {
	srv := newTestServer(t, goap.Config{})
	client := rpc.NewClient(srv.Client(), srv.URL)

	p := woodProblem()
	p.Goal = goap.StateOf("hasGold", true)

	resp, err := client.Plan(context.Background(), p)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if resp.Found || len(resp.Actions) != 0 {
		t.Errorf("response = %+v, want no plan", resp)
	}
}

func TestClient_Plan_NodeLimit(t *testing.T) {
	srv := newTestServer(t, goap.Config{MaxNodes: 3})
	client := rpc.NewClient(srv.Client(), srv.URL)

	resp, err := client.Plan(context.Background(), woodProblem())
	if connect.CodeOf(err) != connect.CodeResourceExhausted {
		t.Fatalf("Plan() error = %v, want ResourceExhausted", err)
	}
	if resp == nil {
		t.Fatal("partial result missing from error details")
	}
	if !resp.Truncated || !slices.Equal(resp.Actions, []string{"B", "C"}) || resp.Nodes != 3 {
		t.Errorf("partial response = %+v", resp)
	}
}

func TestClient_Plan_EncodeError(t *testing.T) {
	client := rpc.NewClient(http.DefaultClient, "http://127.0.0.1:0")

	p := woodProblem()
	p.Goal = goap.StateOf("inv", []any{"axe"})

	if _, err := client.Plan(context.Background(), p); !errors.Is(err, rpc.ErrInvalidRequest) {
		t.Errorf("Plan() error = %v, want ErrInvalidRequest", err)
	}
}

func TestHandler_InvalidArgument(t *testing.T) {
	srv := newTestServer(t, goap.Config{})
	raw := connect.NewClient[structpb.Struct, structpb.Struct](srv.Client(), srv.URL+rpc.PlannerServicePlanProcedure)

	msg, err := structpb.NewStruct(map[string]any{"actions": "chop"})
	if err != nil {
		t.Fatalf("NewStruct() error = %v", err)
	}

	_, err = raw.CallUnary(context.Background(), connect.NewRequest(msg))
	if connect.CodeOf(err) != connect.CodeInvalidArgument {
		t.Errorf("CallUnary() error = %v, want InvalidArgument", err)
	}
}

func TestHandler_UnknownPath(t *testing.T) {
	srv := newTestServer(t, goap.Config{})

	resp, err := srv.Client().Post(srv.URL+"/"+rpc.PlannerServiceName+"/Solve", "application/json", nil)
	if err != nil {
		t.Fatalf("Post() error = %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := rpc.DefaultConfig()
	if cfg.Addr != ":8080" || cfg.MetricsPath != "/metrics" || cfg.MaxNodes != rpc.DefaultMaxNodes {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}

	cfg.Merge(&rpc.Config{})
	if cfg.Addr != ":8080" || cfg.MaxNodes != rpc.DefaultMaxNodes {
		t.Errorf("zero merge changed the config: %+v", cfg)
	}

	cfg.Merge(&rpc.Config{Addr: "127.0.0.1:9000", MetricsPath: "/stats", MaxNodes: 500})
	if cfg.Addr != "127.0.0.1:9000" || cfg.MetricsPath != "/stats" || cfg.MaxNodes != 500 {
		t.Errorf("merged = %+v", cfg)
	}
}
