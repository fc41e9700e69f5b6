package viz

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rdsim/internal/export"
	"github.com/san-kum/rdsim/internal/grayscott"
	"github.com/san-kum/rdsim/internal/metrics"
)

const (
	panelWidth      = 44
	historyCapacity = 600
	frameInterval   = time.Second / 30

	rateStep = 0.002

	clickRadiusV = 8
	clickRadiusU = 12
	dragRadiusV  = 5
	dragRadiusU  = 8
)

type TickMsg time.Time

// Options configure the viewer.
type Options struct {
	StepsPerFrame int
	Colormap      string
	// Scale is the pixel size of saved screenshots and GIF frames.
	Scale int
	// OutDir receives screenshots and recordings.
	OutDir string
}

// Model is the Bubble Tea model of the viewer. The engine is owned by the
// model for the lifetime of the program.
type Model struct {
	eng          *grayscott.Engine
	opts         Options
	canvas       *Canvas
	cmName       string
	cm           *export.Colormap
	running      bool
	frame        int
	meanHistory  []float64
	coverHistory []float64
	recorder     *export.GIFRecorder
	recording    bool
	showHelp     bool
	flash        string
	lastErr      error
}

// NewModel builds a viewer around eng. Unknown colormaps fall back to
// classic.
func NewModel(eng *grayscott.Engine, opts Options) Model {
	if opts.StepsPerFrame < 1 {
		opts.StepsPerFrame = 1
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	if opts.OutDir == "" {
		opts.OutDir = "."
	}
	cm, err := export.Lookup(opts.Colormap)
	if err != nil {
		cm = export.MustLookup("classic")
	}

	w, h := eng.Size()
	return Model{
		eng:          eng,
		opts:         opts,
		canvas:       NewCanvas(min(w, 80), max(min(h/2, 40), 1), cm),
		cmName:       cm.Name,
		cm:           cm,
		running:      true,
		meanHistory:  make([]float64, 0, historyCapacity),
		coverHistory: make([]float64, 0, historyCapacity),
	}
}

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and advances the engine on every tick.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.canvas.Resize(msg.Width-panelWidth, msg.Height)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case tea.MouseMsg:
		m.handleMouse(msg)
	case TickMsg:
		if m.running {
			m.advance()
		}
		return m, tick()
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	p := m.eng.Params()
	switch key := msg.String(); key {
	case "q", "esc", "ctrl+c":
		if m.recording {
			m.stopRecording()
		}
		return m, tea.Quit
	case " ":
		m.running = !m.running
	case "r":
		m.eng.Reset()
		m.clearHistory()
	case "c":
		m.eng.ClearWithSeeds()
		m.clearHistory()
	case "m":
		m.setColormap(export.Next(m.cmName))
	case "up":
		m.eng.SetFeed(p.F + rateStep)
	case "down":
		m.eng.SetFeed(p.F - rateStep)
	case "right":
		m.eng.SetKill(p.K + rateStep)
	case "left":
		m.eng.SetKill(p.K - rateStep)
	case "1", "2", "3", "4", "5":
		id := int(key[0] - '0')
		m.eng.ApplyPreset(id)
		if pr, ok := grayscott.LookupPreset(id); ok {
			m.flash = pr.Label
		}
	case "s":
		m.screenshot()
	case "g":
		if m.recording {
			m.stopRecording()
		} else {
			m.recording = true
			m.recorder = export.NewGIFRecorder(m.cm, m.opts.Scale, 3)
			m.flash = "recording"
		}
	case "?":
		m.showHelp = !m.showHelp
	}
	return m, nil
}

func (m *Model) handleMouse(msg tea.MouseMsg) {
	var radius int
	var c grayscott.Chemical
	switch {
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		radius, c = clickRadiusV, grayscott.V
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonRight:
		radius, c = clickRadiusU, grayscott.U
	case msg.Action == tea.MouseActionMotion && msg.Button == tea.MouseButtonLeft:
		radius, c = dragRadiusV, grayscott.V
	case msg.Action == tea.MouseActionMotion && msg.Button == tea.MouseButtonRight:
		radius, c = dragRadiusU, grayscott.U
	default:
		return
	}

	w, h := m.eng.Size()
	x, y, ok := m.canvas.GridPos(msg.X, msg.Y, w, h)
	if !ok {
		return
	}
	if err := m.eng.AddChemical(x, y, radius, c, 1); err != nil {
		m.lastErr = err
	}
}

func (m *Model) advance() {
	m.eng.StepN(m.opts.StepsPerFrame)
	m.frame++

	v := m.eng.V()
	m.meanHistory = appendCapped(m.meanHistory, metrics.Mean(v))
	m.coverHistory = appendCapped(m.coverHistory, metrics.Coverage(v, metrics.DefaultCoverageThreshold))

	if m.recording {
		m.recorder.Capture(v)
	}
}

func appendCapped(s []float64, v float64) []float64 {
	s = append(s, v)
	if len(s) > historyCapacity {
		s = s[1:]
	}
	return s
}

func (m *Model) clearHistory() {
	m.meanHistory = m.meanHistory[:0]
	m.coverHistory = m.coverHistory[:0]
}

func (m *Model) setColormap(name string) {
	cm, err := export.Lookup(name)
	if err != nil {
		m.lastErr = err
		return
	}
	m.cm, m.cmName = cm, name
	m.canvas.SetColormap(cm)
	if m.recorder != nil {
		m.recorder.SetColormap(cm)
	}
	m.flash = "colormap " + name
}

func (m *Model) screenshot() {
	path := filepath.Join(m.opts.OutDir, export.ScreenshotName(m.frame))
	if err := export.SavePNG(path, m.eng.V(), m.cm, m.opts.Scale); err != nil {
		m.lastErr = err
		return
	}
	m.flash = "saved " + filepath.Base(path)
}

func (m *Model) stopRecording() {
	m.recording = false
	if m.recorder == nil || m.recorder.Len() == 0 {
		m.flash = "recording discarded"
		return
	}
	path := filepath.Join(m.opts.OutDir, fmt.Sprintf("reaction_diffusion_%06d.gif", m.frame))
	if err := m.recorder.Save(path); err != nil {
		m.lastErr = err
		return
	}
	m.recorder = nil
	m.flash = "saved " + filepath.Base(path)
}

// View renders the field next to the stats panel.
func (m Model) View() string {
	field := m.canvas.Render(m.eng.V())
	main := lipgloss.JoinHorizontal(lipgloss.Top, field, panelStyle.Render(m.panel()))
	if m.showHelp {
		return helpText + "\n" + main
	}
	return main
}

func (m Model) panel() string {
	p := m.eng.Params()
	w, h := m.eng.Size()

	var s strings.Builder
	s.WriteString(titleStyle.Render("GRAY-SCOTT") + "\n")

	switch {
	case m.recording:
		s.WriteString(statusRecording.Render(fmt.Sprintf("● REC %d", m.recorder.Len())))
	case m.running:
		s.WriteString(statusRunning.Render("RUNNING"))
	default:
		s.WriteString(statusPaused.Render("PAUSED"))
	}
	s.WriteString("\n\n")

	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Preset", presetLabel(p))
	row("Feed", fmt.Sprintf("%.3f %s", p.F, rateBar(p.F, grayscott.MinRate, grayscott.MaxRate, 12)))
	row("Kill", fmt.Sprintf("%.3f %s", p.K, rateBar(p.K, grayscott.MinRate, grayscott.MaxRate, 12)))
	row("Grid", fmt.Sprintf("%dx%d", w, h))
	row("Steps", fmt.Sprintf("%d (x%d/frame)", m.eng.Steps(), m.opts.StepsPerFrame))
	row("Colormap", m.cmName)
	if n := len(m.meanHistory); n > 0 {
		row("Mean V", fmt.Sprintf("%.4f", m.meanHistory[n-1]))
		row("Coverage", fmt.Sprintf("%.1f%%", 100*m.coverHistory[n-1]))
	}

	if len(m.meanHistory) > 1 {
		chart := asciigraph.Plot(m.meanHistory,
			asciigraph.Height(5),
			asciigraph.Width(panelWidth-14),
			asciigraph.Caption("mean V"),
		)
		s.WriteString("\n" + graphStyle.Render(chart) + "\n")
		s.WriteString(sparkline(m.coverHistory, panelWidth-8) + "\n")
	}

	if m.lastErr != nil {
		s.WriteString("\n" + statusRecording.Render(m.lastErr.Error()) + "\n")
	} else if m.flash != "" {
		s.WriteString("\n" + flashStyle.Render(m.flash) + "\n")
	}

	s.WriteString(hintStyle.Render("\nSP:pause R:reset C:clear M:colors\n↑↓:feed ←→:kill 1-5:presets\nS:png G:gif ?:help Q:quit"))
	return s.String()
}

func presetLabel(p grayscott.Params) string {
	for _, pr := range grayscott.Presets() {
		if pr.F == p.F && pr.K == p.K {
			return fmt.Sprintf("%d %s", pr.ID, pr.Label)
		}
	}
	return "custom"
}

const helpText = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space      - Pause/Resume           ║
║  R          - Reset (5 seeds)        ║
║  C          - Clear, random seeds    ║
║  M          - Next colormap          ║
║  Up/Down    - Feed +/- 0.002         ║
║  Left/Right - Kill -/+ 0.002         ║
║  1-5        - Presets                ║
║  S          - Save PNG               ║
║  G          - Toggle GIF recording   ║
║  Q/Esc      - Quit                   ║
║  Left click - Add V (drag: paint)    ║
║  Right click- Add U (drag: erase)    ║
╚══════════════════════════════════════╝`

// Run starts the viewer and blocks until the user quits.
func Run(eng *grayscott.Engine, opts Options) error {
	p := tea.NewProgram(NewModel(eng, opts), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err := p.Run()
	return err
}
