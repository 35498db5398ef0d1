package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tailored-agentic-units/goap/goap"
	"github.com/tailored-agentic-units/goap/rpc"
)

const firewoodYAML = `
name: firewood
current: {hasAxe: false}
goal: {hasFirewood: true}
actions:
  - name: getAxe
    cost: 2
    preconditions: {hasAxe: false}
    effects: {hasAxe: true}
  - name: chopLog
    cost: 4
    preconditions: {hasAxe: true}
    effects: {hasLogs: true}
  - name: collectBranches
    cost: 8
    effects: {hasLogs: true}
  - name: split
    preconditions: {hasLogs: true}
    effects: {hasFirewood: true}
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestPlanCmd(t *testing.T) {
	path := writeFile(t, t.TempDir(), "firewood.yaml", firewoodYAML)

	out, err := execute(t, "plan", path)
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}

	want := "firewood:\n  1. getAxe (2)\n  2. chopLog (4)\n  3. split (1)\n  cost 7,"
	if !strings.HasPrefix(out, want) {
		t.Errorf("output = %q, want prefix %q", out, want)
	}
}

func TestPlanCmd_Limits(t *testing.T) {
	path := writeFile(t, t.TempDir(), "firewood.yaml", firewoodYAML)

	out, err := execute(t, "plan", path, "--max-depth", "2")
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	if !strings.Contains(out, "1. collectBranches (8)") {
		t.Errorf("depth 2 should fall back to collectBranches, got:\n%s", out)
	}

	out, err = execute(t, "plan", path, "--max-nodes", "2")
	if err == nil {
		t.Fatal("expected node limit error, got nil")
	}
	if !strings.Contains(out, "no plan found") || !strings.Contains(out, "search stopped early") {
		t.Errorf("output = %q", out)
	}
}

func TestPlanCmd_NoPlan(t *testing.T) {
	path := writeFile(t, t.TempDir(), "gold.yaml", "goal: {hasGold: true}\n")

	out, err := execute(t, "plan", path)
	if err != nil {
		t.Fatalf("no plan should not be an error, got %v", err)
	}
	if !strings.Contains(out, "no plan found") {
		t.Errorf("output = %q", out)
	}
}

func TestPlanCmd_Remote(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(rpc.NewHandler(goap.NewWithObserver(goap.Config{}, nil)))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	path := writeFile(t, t.TempDir(), "firewood.yaml", firewoodYAML)

	out, err := execute(t, "plan", path, "--server", srv.URL)
	if err != nil {
		t.Fatalf("plan error = %v", err)
	}
	if !strings.Contains(out, "1. getAxe\n  2. chopLog\n  3. split\n") {
		t.Errorf("output = %q", out)
	}
}

func TestPlanCmd_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := writeFile(t, dir, "bad.yaml", "goals: {}\n")

	tests := []struct {
		name string
		args []string
	}{
		{name: "missing file", args: []string{"plan", filepath.Join(dir, "nope.yaml")}},
		{name: "invalid problem", args: []string{"plan", bad}},
		{name: "no args", args: []string{"plan"}},
		{name: "bad config", args: []string{"--config", filepath.Join(dir, "nope.json"), "plan", bad}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLibraryCmds(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "firewood.yaml", firewoodYAML)
	writeFile(t, dir, "camp.yml", "goal: {fire: true}\nactions:\n  - name: light\n    effects: {fire: true}\n")

	out, err := execute(t, "list", "--library", dir)
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if out != "camp\nfirewood\n" {
		t.Errorf("list output = %q", out)
	}

	out, err = execute(t, "solve", "--library", dir, "firewood", "camp")
	if err != nil {
		t.Fatalf("solve error = %v", err)
	}
	if !strings.Contains(out, "firewood:\n  1. getAxe") || !strings.Contains(out, "camp:\n  1. light (1)") {
		t.Errorf("solve output = %q", out)
	}
	if strings.Index(out, "firewood:") > strings.Index(out, "camp:") {
		t.Errorf("results should follow argument order:\n%s", out)
	}
}

func TestLibraryCmds_Config(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "camp.yml", "goal: {fire: true}\nactions:\n  - name: light\n    effects: {fire: true}\n")
	config := writeFile(t, t.TempDir(), "config.json", `{"planner": {"observer": "noop"}, "library": {"path": "`+filepath.ToSlash(dir)+`"}}`)

	out, err := execute(t, "--config", config, "list")
	if err != nil {
		t.Fatalf("list error = %v", err)
	}
	if out != "camp\n" {
		t.Errorf("list output = %q", out)
	}
}

func TestLibraryCmds_NoLibrary(t *testing.T) {
	if _, err := execute(t, "list"); err == nil {
		t.Error("list without a library should fail")
	}
	if _, err := execute(t, "solve", "camp"); err == nil {
		t.Error("solve without a library should fail")
	}
}
