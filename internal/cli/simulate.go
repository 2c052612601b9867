package cli

import (
	"context"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/graphlayout/pkg/convert"
	errs "github.com/matzehuels/graphlayout/pkg/errors"
	"github.com/matzehuels/graphlayout/pkg/host"
	"github.com/matzehuels/graphlayout/pkg/layout"
	"github.com/matzehuels/graphlayout/pkg/simgraph"
)

// simulateCommand creates the simulate command.
func (c *CLI) simulateCommand() *cobra.Command {
	var paramsFile, logFile string

	cmd := &cobra.Command{
		Use:   "simulate [graph.json]",
		Short: "Run a live spring simulation in the terminal",
		Long: `Run a live spring simulation in the terminal.

The graph is laid out with the spring strategy on a layout host and every
simulation tick is redrawn. Select a node with tab, drag it with the arrow
keys (or h/j/k/l) and release it with space. q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSimulate(cmd, args[0], paramsFile, logFile)
		},
	}

	cmd.Flags().StringVarP(&paramsFile, "params", "p", "", "spring parameter file (.json, .toml, .yaml)")
	cmd.Flags().StringVar(&logFile, "log-file", "", "write host logs to this file")

	return cmd
}

func (c *CLI) runSimulate(cmd *cobra.Command, input, paramsFile, logFile string) error {
	ctx := cmd.Context()
	decl, err := readGraph(cmd, input)
	if err != nil {
		return err
	}
	g, err := convert.Parse(decl)
	if err != nil {
		return err
	}
	params := layout.Params(layout.NewSpringParams())
	if paramsFile != "" {
		if params, err = c.resolveParams(paramsFile, ""); err != nil {
			return err
		}
		if params.LayoutName() != layout.NameSpring {
			return errs.New(errs.ErrCodeInvalidParams, "simulate needs spring params, got %s", params.LayoutName())
		}
	}

	// The TUI owns the terminal, so host logs go to a file or nowhere.
	var logw io.Writer = io.Discard
	if logFile != "" {
		f, err := openLogFile(logFile)
		if err != nil {
			return err
		}
		defer f.Close()
		logw = f
	}
	hostLog := newLogger(logw, c.Logger.GetLevel()).WithPrefix("host")

	var p *tea.Program
	h := host.New(func(u layout.Update) { p.Send(tickMsg(u)) }, host.WithLogger(hostLog))
	defer h.Close()

	m := newSimModel(ctx, h, g, params)
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	_ = h.Cleanup(context.Background())
	if err != nil {
		return err
	}
	fm := final.(simModel)
	if fm.err != nil {
		return fm.err
	}
	loggerFromContext(ctx).Info("simulation stopped", "ticks", fm.ticks)
	return nil
}

// =============================================================================
// Model
// =============================================================================

// simulator is the part of host.Host the model drives.
type simulator interface {
	Compute(ctx context.Context, p layout.Params, s simgraph.Snapshot) (layout.Update, error)
	StartDrag(ctx context.Context) error
	Move(ctx context.Context, id string, p layout.Point) error
	EndDrag(ctx context.Context, id string) error
}

type (
	tickMsg     layout.Update
	computedMsg struct {
		update layout.Update
		err    error
	}
	simErrMsg struct{ err error }
)

// simModel draws the live positions of a spring simulation.
type simModel struct {
	ctx    context.Context
	sim    simulator
	params layout.Params
	snap   simgraph.Snapshot

	ids   []string
	edges [][2]string
	pos   layout.Positions

	selected int
	dragging bool
	ticks    int
	width    int
	height   int
	err      error
}

func newSimModel(ctx context.Context, sim simulator, g *simgraph.Graph, params layout.Params) simModel {
	m := simModel{
		ctx:    ctx,
		sim:    sim,
		params: params,
		snap:   g.Export(),
		ids:    g.Nodes(),
		pos:    layout.Positions{},
		width:  80,
		height: 24,
	}
	for _, e := range g.Edges() {
		m.edges = append(m.edges, [2]string{e.Source, e.Target})
	}
	return m
}

func (m simModel) Init() tea.Cmd {
	return func() tea.Msg {
		u, err := m.sim.Compute(m.ctx, m.params, m.snap)
		return computedMsg{update: u, err: err}
	}
}

func (m simModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case computedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, tea.Quit
		}
		m.apply(msg.update)
	case tickMsg:
		m.ticks++
		m.apply(layout.Update(msg))
	case simErrMsg:
		m.err = msg.err
		return m, tea.Quit
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case tea.KeyMsg:
		return m.key(msg.String())
	}
	return m, nil
}

func (m *simModel) apply(u layout.Update) {
	for id, p := range u.Layout {
		m.pos[id] = p
	}
}

func (m simModel) key(k string) (tea.Model, tea.Cmd) {
	if len(m.ids) == 0 {
		if k == "q" || k == "ctrl+c" || k == "esc" {
			return m, tea.Quit
		}
		return m, nil
	}
	id := m.ids[m.selected]
	switch k {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "tab":
		cmd := m.release(id)
		m.selected = (m.selected + 1) % len(m.ids)
		return m, cmd
	case "shift+tab":
		cmd := m.release(id)
		m.selected = (m.selected + len(m.ids) - 1) % len(m.ids)
		return m, cmd
	case " ", "enter":
		return m, m.release(id)
	case "up", "k":
		return m.drag(id, 0, -1)
	case "down", "j":
		return m.drag(id, 0, 1)
	case "left", "h":
		return m.drag(id, -1, 0)
	case "right", "l":
		return m.drag(id, 1, 0)
	}
	return m, nil
}

// dragStep is the distance one key press moves a node, in layout units.
const dragStep = 20.0

func (m simModel) drag(id string, dx, dy float64) (tea.Model, tea.Cmd) {
	p := m.pos[id]
	p.X += dx * dragStep
	p.Y += dy * dragStep
	m.pos[id] = p

	start := !m.dragging
	m.dragging = true
	sim, ctx := m.sim, m.ctx
	return m, func() tea.Msg {
		if start {
			if err := sim.StartDrag(ctx); err != nil {
				return simErrMsg{err}
			}
		}
		if err := sim.Move(ctx, id, p); err != nil {
			return simErrMsg{err}
		}
		return nil
	}
}

func (m *simModel) release(id string) tea.Cmd {
	if !m.dragging {
		return nil
	}
	m.dragging = false
	sim, ctx := m.sim, m.ctx
	return func() tea.Msg {
		if err := sim.EndDrag(ctx, id); err != nil {
			return simErrMsg{err}
		}
		return nil
	}
}

// =============================================================================
// View
// =============================================================================

var (
	simNodeStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	simSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorGreen)
	simEdgeStyle     = lipgloss.NewStyle().Foreground(colorDim)
)

type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellEdge
	cellNode
	cellSelected
)

func (m simModel) View() string {
	var b strings.Builder
	status := "released"
	if m.dragging {
		status = "dragging"
	}
	sel := ""
	if len(m.ids) > 0 {
		sel = m.ids[m.selected]
	}
	b.WriteString(StyleTitle.Render("Spring simulation"))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d nodes · %d ticks · %s %s", len(m.ids), m.ticks, sel, status)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("tab select  ←↑↓→ drag  space release  q quit"))
	b.WriteString("\n\n")
	b.WriteString(m.canvas(m.width, max(m.height-4, 4)))
	return b.String()
}

// canvas rasterises the current positions into a w×h character grid.
func (m simModel) canvas(w, h int) string {
	if w <= 0 || h <= 0 || len(m.pos) == 0 {
		return StyleDim.Render("waiting for layout...")
	}
	runes := make([][]rune, h)
	kinds := make([][]cellKind, h)
	for y := range runes {
		runes[y] = []rune(strings.Repeat(" ", w))
		kinds[y] = make([]cellKind, w)
	}

	project := m.projection(w, h)
	for _, e := range m.edges {
		a, okA := m.pos[e[0]]
		b, okB := m.pos[e[1]]
		if !okA || !okB {
			continue
		}
		ax, ay := project(a)
		bx, by := project(b)
		steps := max(abs(bx-ax), abs(by-ay))
		for s := 1; s < steps; s++ {
			x := ax + (bx-ax)*s/steps
			y := ay + (by-ay)*s/steps
			if kinds[y][x] == cellEmpty {
				runes[y][x] = '·'
				kinds[y][x] = cellEdge
			}
		}
	}
	for i, id := range m.ids {
		p, ok := m.pos[id]
		if !ok {
			continue
		}
		x, y := project(p)
		kind := cellNode
		if i == m.selected {
			kind = cellSelected
		}
		for j, r := range []rune("●" + id) {
			if x+j >= w {
				break
			}
			runes[y][x+j] = r
			kinds[y][x+j] = kind
		}
	}

	var b strings.Builder
	for y := range runes {
		writeRuns(&b, runes[y], kinds[y])
		if y < h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// projection maps layout coordinates onto grid cells, preserving aspect
// ratio with terminal cells roughly twice as tall as wide.
func (m simModel) projection(w, h int) func(layout.Point) (int, int) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range m.pos {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	spanX := math.Max(maxX-minX, 1)
	spanY := math.Max(maxY-minY, 1)
	scale := math.Min(float64(w-1)/spanX, float64(h-1)*2/spanY)
	return func(p layout.Point) (int, int) {
		x := int(math.Round((p.X - minX) * scale))
		y := int(math.Round((p.Y - minY) * scale / 2))
		return min(max(x, 0), w-1), min(max(y, 0), h-1)
	}
}

func writeRuns(b *strings.Builder, row []rune, kinds []cellKind) {
	start := 0
	for i := 1; i <= len(row); i++ {
		if i < len(row) && kinds[i] == kinds[start] {
			continue
		}
		seg := string(row[start:i])
		switch kinds[start] {
		case cellEdge:
			seg = simEdgeStyle.Render(seg)
		case cellNode:
			seg = simNodeStyle.Render(seg)
		case cellSelected:
			seg = simSelectedStyle.Render(seg)
		}
		b.WriteString(seg)
		start = i
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// openLogFile opens path for appending host logs.
func openLogFile(path string) (io.WriteCloser, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidPath, err, "open log file")
	}
	return f, nil
}
