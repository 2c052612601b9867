package cli

import (
	"context"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

type fakeSim struct {
	mu    sync.Mutex
	calls []string
	moves []layout.Point
}

func (f *fakeSim) record(call string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
}

func (f *fakeSim) Compute(ctx context.Context, p layout.Params, s simgraph.Snapshot) (layout.Update, error) {
	f.record("compute")
	u := layout.Update{Layout: layout.Positions{}}
	for i, n := range s.Nodes {
		u.Layout[n.Key] = layout.Point{X: float64(i) * 100, Y: float64(i) * 50}
	}
	return u, nil
}

func (f *fakeSim) StartDrag(ctx context.Context) error {
	f.record("start")
	return nil
}

func (f *fakeSim) Move(ctx context.Context, id string, p layout.Point) error {
	f.record("move " + id)
	f.mu.Lock()
	f.moves = append(f.moves, p)
	f.mu.Unlock()
	return nil
}

func (f *fakeSim) EndDrag(ctx context.Context, id string) error {
	f.record("end " + id)
	return nil
}

func newTestSim(t *testing.T) (simModel, *fakeSim) {
	t.Helper()
	g := simgraph.New()
	for _, id := range []string{"a", "b", "c"} {
		if err := g.AddNode(id, nil); err != nil {
			t.Fatal(err)
		}
	}
	_ = g.AddEdge("a", "b", nil)
	_ = g.AddEdge("b", "c", nil)

	sim := &fakeSim{}
	m := newSimModel(context.Background(), sim, g, layout.NewSpringParams())
	next, _ := m.Update(m.Init()())
	return next.(simModel), sim
}

func press(t *testing.T, m simModel, keys ...string) simModel {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		case "space":
			msg = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, cmd := m.Update(msg)
		m = next.(simModel)
		if cmd != nil {
			if res := cmd(); res != nil {
				if e, ok := res.(simErrMsg); ok {
					t.Fatalf("key %q: %v", k, e.err)
				}
			}
		}
	}
	return m
}

func TestSimModelComputesOnInit(t *testing.T) {
	m, sim := newTestSim(t)
	if len(m.pos) != 3 {
		t.Fatalf("positions = %v, want 3", m.pos)
	}
	if sim.calls[0] != "compute" {
		t.Errorf("calls = %v", sim.calls)
	}
}

func TestSimModelTicks(t *testing.T) {
	m, _ := newTestSim(t)
	next, _ := m.Update(tickMsg(layout.Update{Layout: layout.Positions{"a": {X: -5, Y: -5}}}))
	m = next.(simModel)
	if m.ticks != 1 || m.pos["a"] != (layout.Point{X: -5, Y: -5}) {
		t.Errorf("ticks = %d, a = %v", m.ticks, m.pos["a"])
	}
	if m.pos["b"] == (layout.Point{}) {
		t.Error("a partial tick must keep other positions")
	}
}

func TestSimModelDrag(t *testing.T) {
	m, sim := newTestSim(t)
	m = press(t, m, "tab", "l", "l", "j", "space")

	want := []string{"compute", "start", "move b", "move b", "move b", "end b"}
	if strings.Join(sim.calls, ",") != strings.Join(want, ",") {
		t.Errorf("calls = %v, want %v", sim.calls, want)
	}
	last := sim.moves[len(sim.moves)-1]
	if last != (layout.Point{X: 100 + 2*dragStep, Y: 50 + dragStep}) {
		t.Errorf("last move = %v", last)
	}
	if m.dragging {
		t.Error("space should release the node")
	}
}

func TestSimModelTabReleases(t *testing.T) {
	m, sim := newTestSim(t)
	m = press(t, m, "k", "tab")
	if m.selected != 1 || m.dragging {
		t.Errorf("selected = %d, dragging = %v", m.selected, m.dragging)
	}
	if got := sim.calls[len(sim.calls)-1]; got != "end a" {
		t.Errorf("last call = %q, want end a", got)
	}
}

func TestSimModelView(t *testing.T) {
	m, _ := newTestSim(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 40, Height: 12})
	view := next.(simModel).View()
	for _, want := range []string{"Spring simulation", "3 nodes", "●a", "●c"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestSimModelQuit(t *testing.T) {
	m, _ := newTestSim(t)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should return tea.Quit")
	}
}
