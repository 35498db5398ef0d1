package library_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/tailored-agentic-units/goap/goap"
	"github.com/tailored-agentic-units/goap/library"
	"github.com/tailored-agentic-units/goap/observability"
)

func newTestLibrary(t *testing.T) (*library.Library, string, *observability.Recorder) {
	t.Helper()
	root := t.TempDir()
	rec := &observability.Recorder{}
	return library.New(library.NewFileStore(root), rec), root, rec
}

func TestLibrary_Names(t *testing.T) {
	lib, root, _ := newTestLibrary(t)
	writeTestFile(t, root, "firewood.yaml", firewoodYAML)
	writeTestFile(t, root, "firewood.json", "{}")
	writeTestFile(t, root, "forest/camp.yml", "goal: {fire: true}\n")
	writeTestFile(t, root, "README.md", "not a problem")

	names, err := lib.Names(context.Background())
	if err != nil {
		t.Fatalf("Names() error = %v", err)
	}

	want := []string{"firewood", "forest/camp"}
	if !slices.Equal(names, want) {
		t.Errorf("Names() = %v, want %v", names, want)
	}
}

func TestLibrary_Problem(t *testing.T) {
	lib, root, rec := newTestLibrary(t)
	writeTestFile(t, root, "forest/camp.yml", "goal: {fire: true}\nactions:\n  - name: light\n    effects: {fire: true}\n")
	ctx := context.Background()

	p, err := lib.Problem(ctx, "forest/camp")
	if err != nil {
		t.Fatalf("Problem() error = %v", err)
	}
	if p.Name != "forest/camp" {
		t.Errorf("Name = %q, want library name", p.Name)
	}

	again, err := lib.Problem(ctx, "forest/camp")
	if err != nil {
		t.Fatalf("Problem() second call error = %v", err)
	}
	if again.Actions[0] != p.Actions[0] {
		t.Error("second lookup should come from the cache")
	}
	if n := len(rec.OfType(library.EventLoad)); n != 1 {
		t.Errorf("load events = %d, want 1", n)
	}
}

func TestLibrary_Problem_Errors(t *testing.T) {
	lib, root, _ := newTestLibrary(t)
	writeTestFile(t, root, "broken.yaml", "goal: [\n")
	ctx := context.Background()

	if _, err := lib.Problem(ctx, "missing"); !errors.Is(err, library.ErrProblemNotFound) {
		t.Errorf("missing: error = %v, want ErrProblemNotFound", err)
	}
	if _, err := lib.Problem(ctx, "broken"); !errors.Is(err, library.ErrInvalidProblem) {
		t.Errorf("broken: error = %v, want ErrInvalidProblem", err)
	}
	if _, err := lib.Problems(ctx, "broken", "missing"); err == nil {
		t.Error("Problems() should fail on the first bad name")
	}
}

func TestLibrary_PutRemove(t *testing.T) {
	lib, root, rec := newTestLibrary(t)
	ctx := context.Background()

	light := goap.NewAction("light").AddEffect("fire", true)
	camp := goap.Problem{
		Actions: []*goap.Action{light},
		Current: goap.NewState(),
		Goal:    goap.StateOf("fire", true),
	}

	if err := lib.Put(ctx, "camp", camp); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "camp.yaml")); err != nil {
		t.Fatalf("Put() should write camp.yaml: %v", err)
	}

	loaded, err := lib.Problem(ctx, "camp")
	if err != nil {
		t.Fatalf("Problem() error = %v", err)
	}
	if plan := loaded.Plan(); len(plan) != 1 || plan[0].Name != "light" {
		t.Errorf("plan = %v, want [light]", plan)
	}

	camp.Goal = goap.StateOf("fire", true, "warm", true)
	if err := lib.Put(ctx, "camp", camp); err != nil {
		t.Fatalf("Put() overwrite error = %v", err)
	}
	reloaded, err := lib.Problem(ctx, "camp")
	if err != nil {
		t.Fatalf("Problem() after overwrite error = %v", err)
	}
	if reloaded.Goal.Len() != 2 {
		t.Errorf("Put should invalidate the cached problem, goal = %v", reloaded.Goal)
	}

	if err := lib.Remove(ctx, "camp"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := lib.Problem(ctx, "camp"); !errors.Is(err, library.ErrProblemNotFound) {
		t.Errorf("after Remove: error = %v, want ErrProblemNotFound", err)
	}

	if len(rec.OfType(library.EventSave)) != 2 || len(rec.OfType(library.EventRemove)) != 1 {
		t.Errorf("events = %+v", rec.Events())
	}
}

func TestLibrary_Put_InvalidProblem(t *testing.T) {
	lib, _, _ := newTestLibrary(t)

	p := goap.Problem{Goal: goap.StateOf("inv", map[string]int{"axe": 1})}
	if err := lib.Put(context.Background(), "bad", p); !errors.Is(err, library.ErrSaveFailed) {
		t.Errorf("Put() error = %v, want ErrSaveFailed", err)
	}
}

func TestNewLibrary(t *testing.T) {
	lib, err := library.NewLibrary(&library.Config{}, nil)
	if err != nil || lib != nil {
		t.Errorf("empty path: lib = %v, err = %v", lib, err)
	}

	lib, err = library.NewLibrary(&library.Config{Path: t.TempDir()}, nil)
	if err != nil || lib == nil {
		t.Fatalf("NewLibrary() = %v, %v", lib, err)
	}
	names, err := lib.Names(context.Background())
	if err != nil || len(names) != 0 {
		t.Errorf("Names() = %v, %v", names, err)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := library.DefaultConfig()
	cfg.Merge(&library.Config{})
	if cfg.Path != "" {
		t.Errorf("empty merge changed Path to %q", cfg.Path)
	}
	cfg.Merge(&library.Config{Path: "problems"})
	if cfg.Path != "problems" {
		t.Errorf("Path = %q", cfg.Path)
	}
}

func TestLibrary_RejectsEscapingNames(t *testing.T) {
	base := t.TempDir()
	root := filepath.Join(base, "problems")
	writeTestFile(t, base, "secret.yaml", "goal: {leaked: true}\n")
	lib := library.New(library.NewFileStore(root), nil)
	ctx := context.Background()

	camp := goap.Problem{Goal: goap.StateOf("fire", true)}

	for _, name := range []string{"../secret", "forest/../../secret", filepath.Join(base, "secret")} {
		t.Run(name, func(t *testing.T) {
			if _, err := lib.Problem(ctx, name); !errors.Is(err, library.ErrInvalidKey) {
				t.Errorf("Problem() error = %v, want ErrInvalidKey", err)
			}
			if err := lib.Put(ctx, name, camp); !errors.Is(err, library.ErrInvalidKey) {
				t.Errorf("Put() error = %v, want ErrInvalidKey", err)
			}
			if err := lib.Remove(ctx, name); !errors.Is(err, library.ErrInvalidKey) {
				t.Errorf("Remove() error = %v, want ErrInvalidKey", err)
			}
		})
	}

	data, err := os.ReadFile(filepath.Join(base, "secret.yaml"))
	if err != nil || string(data) != "goal: {leaked: true}\n" {
		t.Errorf("secret.yaml should be untouched: %q, %v", data, err)
	}
}
