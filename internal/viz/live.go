package viz

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/logger"
	"github.com/san-kum/clothsim/internal/sim"
	"go.uber.org/zap"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600
	frameRate       = 30
	maxTicksFrame   = 64
)

// Builder creates a fresh simulator. The live view calls it again on reset.
type Builder func() (*sim.Simulator, error)

type TickMsg time.Time

// Model is the bubbletea live view of one running cloth.
type Model struct {
	scene string
	build Builder
	sim   *sim.Simulator

	width, height int
	canvas        *Canvas
	camera        *Camera
	obstacles     *Wireframe
	ticksPerFrame int

	params        map[string]float64
	initialParams map[string]float64
	paramKeys     []string
	selected      int

	energyHistory []float64
	strainHistory []float64
	unstable      bool

	recording bool
	frames    []*image.Paletted
	GIFPath   string

	showHelp bool
	err      error
}

func NewModel(scene string, build Builder) (Model, error) {
	s, err := build()
	if err != nil {
		return Model{}, err
	}
	m := Model{
		scene:         scene,
		build:         build,
		width:         width,
		height:        height,
		canvas:        NewCanvas(width, height),
		camera:        NewCamera(),
		ticksPerFrame: 1,
		GIFPath:       "clothsim.gif",
	}
	m.attach(s)
	return m, nil
}

func (m *Model) attach(s *sim.Simulator) {
	m.sim = s
	m.obstacles = NewWireframe()
	for _, c := range s.Colliders() {
		m.obstacles.AddCollider(c)
	}

	m.params = s.Cloth().GetParams()
	m.initialParams = make(map[string]float64, len(m.params))
	m.paramKeys = m.paramKeys[:0]
	for k, v := range m.params {
		m.paramKeys = append(m.paramKeys, k)
		m.initialParams[k] = v
	}
	sort.Strings(m.paramKeys)
	if m.selected >= len(m.paramKeys) {
		m.selected = 0
	}

	m.camera.Frame(s.Cloth().Bounds())
	m.energyHistory = make([]float64, 0, historyCapacity)
	m.strainHistory = make([]float64, 0, historyCapacity)
	m.unstable = false
	m.record()
}

func (m Model) Simulator() *sim.Simulator { return m.sim }

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

// Update handles input events and steps the simulation.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.err = nil
		switch msg.String() {
		case "q", "ctrl+c":
			if m.recording {
				m.err = m.saveGIF()
			}
			return m, tea.Quit
		case " ":
			m.sim.Toggle()
		case ".":
			m.stepOnce()
		case "r":
			m.reset()
		case "tab":
			m.cycleParam()
		case "up", "k":
			m.adjustParam(1.05)
		case "down", "j":
			m.adjustParam(0.95)
		case "i":
			m.swapIntegrator()
		case ">":
			m.ticksPerFrame = min(m.ticksPerFrame*2, maxTicksFrame)
		case "<":
			m.ticksPerFrame = max(m.ticksPerFrame/2, 1)
		case "left", "h":
			m.camera.RotateYaw(-0.1)
		case "right", "l":
			m.camera.RotateYaw(0.1)
		case "x":
			m.camera.RotatePitch(0.1)
		case "X":
			m.camera.RotatePitch(-0.1)
		case "+", "=":
			m.camera.ZoomIn()
		case "-", "_":
			m.camera.ZoomOut()
		case "f":
			m.camera.Frame(m.sim.Cloth().Bounds())
		case "g":
			m.toggleRecording()
		case "t":
			NextTheme()
		case "?":
			m.showHelp = !m.showHelp
		}
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case TickMsg:
		if m.sim.State() == sim.Running {
			m.advance()
		}
		m.draw()
		if m.recording {
			m.captureFrame()
		}
		return m, tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	cw, ch := max(w-54, 20), max(h-4, 8)
	if cw == m.width && ch == m.height {
		return
	}
	m.width, m.height = cw, ch
	m.canvas = NewCanvas(cw, ch)
	m.frames = nil
}

func (m *Model) advance() {
	for i := 0; i < m.ticksPerFrame; i++ {
		if !m.sim.Advance() {
			return
		}
		if !m.record() {
			return
		}
	}
}

func (m *Model) stepOnce() {
	if m.sim.State() == sim.Running {
		return
	}
	m.sim.Resume()
	m.sim.Advance()
	m.sim.Pause()
	m.record()
}

// record appends the current energy and peak strain. A non-finite energy
// pauses the run.
func (m *Model) record() bool {
	c := m.sim.Cloth()
	e := c.Energy()

	peak := 0.0
	for i := range c.Structural {
		peak = math.Max(peak, math.Abs(c.Structural[i].Strain()))
	}

	m.energyHistory = appendCapped(m.energyHistory, e)
	m.strainHistory = appendCapped(m.strainHistory, peak)

	if math.IsNaN(e) || math.IsInf(e, 0) {
		m.unstable = true
		m.sim.Pause()
		logger.Warn("live view paused on non-finite energy",
			zap.String("scene", m.scene), zap.Int("tick", m.sim.Ticks()))
		return false
	}
	return true
}

func appendCapped(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

func (m *Model) reset() {
	s, err := m.build()
	if err != nil {
		m.err = err
		return
	}
	if m.sim.State() == sim.Paused {
		s.Pause()
	}
	m.attach(s)
}

func (m *Model) cycleParam() {
	if len(m.paramKeys) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.paramKeys)
}

func (m *Model) adjustParam(factor float64) {
	if len(m.paramKeys) == 0 {
		return
	}
	key := m.paramKeys[m.selected]
	val := m.params[key] * factor
	if val == 0 && factor > 1 {
		val = 0.01
	}
	if err := m.sim.Cloth().SetParam(key, val); err != nil {
		m.err = err
		return
	}
	m.params[key] = val
}

func (m *Model) swapIntegrator() {
	name := "symplectic"
	if m.sim.Integrator().Name() == name {
		name = "explicit"
	}
	integ, err := integrators.ByName(name)
	if err != nil {
		m.err = err
		return
	}
	m.sim.SetIntegrator(integ)
}

func (m *Model) draw() {
	m.canvas.Clear()
	c := m.sim.Cloth()

	w := NewWireframe()
	w.Append(m.obstacles)
	w.AddSprings(c.Nodes, c.Structural)
	Render3D(m.canvas, w, m.camera)
}

func (m *Model) status() string {
	switch {
	case m.unstable:
		return "UNSTABLE"
	case m.sim.State() == sim.Paused:
		return "PAUSED"
	}
	return fmt.Sprintf("RUNNING x%d", m.ticksPerFrame)
}

// View renders the canvas and the side panel.
func (m Model) View() string {
	canvasView := canvasStyle.Render(m.canvas.Render(CurrentTheme))

	var s strings.Builder
	s.WriteString(headerStyle().Render(strings.ToUpper(m.scene)) + "\n")
	status := m.status()
	if m.recording {
		status += "  REC"
	}
	s.WriteString(statusStyle(status).Render(status) + "\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	c := m.sim.Cloth()
	row := func(label, value string) {
		s.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	row("Time", fmt.Sprintf("%.2fs", m.sim.Time()))
	row("Ticks", fmt.Sprintf("%d", m.sim.Ticks()))
	if n := len(m.energyHistory); n > 0 {
		row("Energy", fmt.Sprintf("%.3f", m.energyHistory[n-1]))
	}
	row("Strain", Sparkline(m.strainHistory, 20))
	row("Nodes", fmt.Sprintf("%d (%d fixed)", len(c.Nodes), c.FixedCount()))
	row("Springs", fmt.Sprintf("%d + %d", len(c.Structural), len(c.Bending)))
	row("Scheme", fmt.Sprintf("%s / %d", m.sim.Integrator().Name(), m.sim.Options().Substeps))
	for _, a := range m.sim.Anchors() {
		row("Anchor", fmt.Sprintf("%s %d @ %.2f m/s", a.Name, len(a.Nodes()), a.Velocity().Len()))
	}

	s.WriteString("\nPARAMETERS\n")
	for i, k := range m.paramKeys {
		val := m.params[k]
		line := fmt.Sprintf("%-18s %s %.3g", k, ParamBar(val, m.initialParams[k], 10), val)
		if i == m.selected {
			s.WriteString(activeParamStyle().Render("> "+line) + "\n")
		} else {
			s.WriteString("  " + line + "\n")
		}
	}
	if m.err != nil {
		s.WriteString("\n" + lipgloss.NewStyle().Foreground(CurrentTheme.Error).Render(m.err.Error()) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause .:Step R:Reset Q:Quit\nTab/↑↓:Tune I:Scheme </>:Speed\nH/L X:Orbit +/-:Zoom G:GIF ?:Help"))

	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, panelStyle.Render(s.String()))
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║           KEYBOARD SHORTCUTS         ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume             ║
║  .        - Single tick when paused  ║
║  R        - Rebuild the scene        ║
║  Tab      - Cycle parameters         ║
║  Up/K     - Increase parameter (+5%) ║
║  Down/J   - Decrease parameter (-5%) ║
║  I        - Explicit / symplectic    ║
║  < >      - Ticks per frame          ║
║  H/L X/x  - Orbit camera             ║
║  + -      - Zoom                     ║
║  F        - Frame the cloth          ║
║  G        - Toggle GIF recording     ║
║  T        - Cycle themes             ║
║  Q        - Quit                     ║
╚══════════════════════════════════════╝`

func (m *Model) toggleRecording() {
	if !m.recording {
		m.recording = true
		m.frames = make([]*image.Paletted, 0)
		return
	}
	m.err = m.saveGIF()
	m.recording = false
	m.frames = nil
}

func (m *Model) captureFrame() {
	const dotW, dotH = 4, 4
	sw, sh := m.canvas.SubSize()
	palette := color.Palette{color.Black, color.White}
	img := image.NewPaletted(image.Rect(0, 0, sw*dotW, sh*dotH), palette)
	for y := 0; y < sh; y++ {
		for x := 0; x < sw; x++ {
			if !m.canvas.Lit(x, y) {
				continue
			}
			for py := 0; py < dotH-1; py++ {
				for px := 0; px < dotW-1; px++ {
					img.SetColorIndex(x*dotW+px, y*dotH+py, 1)
				}
			}
		}
	}
	m.frames = append(m.frames, img)
}

func (m *Model) saveGIF() error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 100/frameRate)
	}
	f, err := os.Create(m.GIFPath)
	if err != nil {
		return err
	}
	if err := gif.EncodeAll(f, &anim); err != nil {
		f.Close()
		return err
	}
	logger.Info("gif saved", zap.String("path", m.GIFPath), zap.Int("frames", len(m.frames)))
	return f.Close()
}

// RunLive opens the live view full screen until the user quits.
func RunLive(scene string, build Builder) error {
	m, err := NewModel(scene, build)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
