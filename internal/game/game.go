package game

import (
	"fmt"
	"image/color"
	"math"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/basicfont"

	"github.com/Garsondee/Rescue-Sense/internal/layout"
)

// borderWidth is the pixel gap between the window edge and the playfield.
const borderWidth = 24

// winBannerFrames is how long the win banner stays up before the window
// closes (~3s at 60TPS).
const winBannerFrames = 180

// statusFrames is how long a one-line status message is shown.
const statusFrames = 120

var (
	colBackground = color.RGBA{R: 12, G: 14, B: 12, A: 255}
	colGround     = color.RGBA{R: 38, G: 46, B: 38, A: 255}
	colGridLine   = color.RGBA{R: 52, G: 62, B: 52, A: 255}
	colBuilding   = color.RGBA{R: 92, G: 88, B: 80, A: 255}
	colBuildingEd = color.RGBA{R: 130, G: 124, B: 112, A: 255}
	colHospital   = color.RGBA{R: 230, G: 232, B: 236, A: 255}
	colCross      = color.RGBA{R: 210, G: 40, B: 40, A: 255}
	colVictim     = color.RGBA{R: 255, G: 170, B: 40, A: 255}
	colVictimDim  = color.RGBA{R: 150, G: 100, B: 30, A: 255}
	colPlayer     = color.RGBA{R: 240, G: 210, B: 60, A: 255}
	colRescuer    = color.RGBA{R: 70, G: 160, B: 230, A: 255}
	colPath       = color.RGBA{R: 120, G: 200, B: 255, A: 140}
	colBanner     = color.RGBA{R: 8, G: 30, B: 12, A: 230}
)

// Game is the Ebiten front-end. All simulation state lives in the Sim;
// Game only turns keyboard input into the player intent and draws views.
type Game struct {
	width      int
	height     int
	gameWidth  int // playfield width (log panel takes the rest)
	gameHeight int
	offX       int
	offY       int

	sim        *Sim
	logger     *log.Logger
	thoughtLog *ThoughtLog
	reporter   *SimReporter
	hudFace    *text.GoXFace

	showHUD   bool
	showPaths bool
	prevKeys  map[ebiten.Key]bool

	// Simulation speed control.
	simSpeed  float64 // multiplier: 0=paused, 0.5, 1, 2, 4
	tickAccum float64

	frame     int
	won       bool
	winFrames int

	status       string
	statusFrames int
}

// New builds a game for l. Extra options are applied after the layout, so
// callers can override the mode or seed.
func New(l *layout.Layout, logger *log.Logger, opts ...SimOption) *Game {
	if logger == nil {
		logger = log.Default()
	}
	tl := NewThoughtLog()
	base := []SimOption{WithLayout(l), WithLogger(logger), WithThoughtLog(tl)}
	sim := NewSim(append(base, opts...)...)

	size := sim.Grid().WorldSize()
	gw, gh := int(size.X), int(size.Y)
	g := &Game{
		width:      borderWidth + gw + borderWidth + logPanelWidth,
		height:     max(borderWidth+gh+borderWidth, 320),
		gameWidth:  gw,
		gameHeight: gh,
		offX:       borderWidth,
		offY:       borderWidth,
		sim:        sim,
		logger:     logger,
		thoughtLog: tl,
		reporter:   NewSimReporter(reportWindowTicks, true),
		hudFace:    text.NewGoXFace(basicfont.Face7x13),
		showHUD:    true,
		showPaths:  true,
		prevKeys:   make(map[ebiten.Key]bool),
		simSpeed:   1.0,
	}
	logger.Info("simulation ready",
		"session", sim.ID, "layout", l.Name, "mode", sim.Mode,
		"victims", sim.Registry().Total(), "rescuers", len(sim.Rescuers()))
	return g
}

// Sim exposes the running simulation.
func (g *Game) Sim() *Sim { return g.sim }

func (g *Game) Update() error {
	g.frame++
	if g.statusFrames > 0 {
		g.statusFrames--
	}
	intent := g.handleInput()

	if g.won {
		g.winFrames--
		if g.winFrames <= 0 {
			return ebiten.Termination
		}
		return nil
	}
	if g.simSpeed <= 0 {
		return nil
	}

	// For speeds > 1 run multiple sim ticks per frame.
	// For speeds < 1 accumulate fractions.
	g.tickAccum += g.simSpeed
	for g.tickAccum >= 1.0 {
		g.tickAccum -= 1.0
		g.simTick(intent)
		if g.won {
			break
		}
	}
	return nil
}

func (g *Game) simTick(intent Vec2) {
	g.sim.Tick(intent)
	if g.sim.CurrentTick()%60 == 0 {
		g.reporter.Collect(g.sim)
	}
	if g.sim.Done() {
		g.won = true
		g.winFrames = winBannerFrames
		g.reporter.Collect(g.sim)
		g.logger.Info("all victims rescued",
			"session", g.sim.ID, "tick", g.sim.CurrentTick(), "victims", g.sim.Registry().Total())
	}
}

// pressed reports an edge-triggered key press and records it for the next
// frame.
func (g *Game) pressed(cur map[ebiten.Key]bool, k ebiten.Key) bool {
	cur[k] = ebiten.IsKeyPressed(k)
	return cur[k] && !g.prevKeys[k]
}

// handleInput processes toggles (edge-triggered) and returns the player's
// movement intent from the held arrow/WASD keys.
func (g *Game) handleInput() Vec2 {
	currentKeys := map[ebiten.Key]bool{}

	if g.pressed(currentKeys, ebiten.KeyH) {
		g.showHUD = !g.showHUD
	}
	if g.pressed(currentKeys, ebiten.KeyTab) {
		g.showPaths = !g.showPaths
	}
	if g.pressed(currentKeys, ebiten.KeyC) {
		g.copyReport()
	}

	// Sim speed controls: P=pause/resume, ,=slower, .=faster.
	speeds := []float64{0, 0.5, 1, 2, 4}
	if g.pressed(currentKeys, ebiten.KeyP) {
		if g.simSpeed > 0 {
			g.simSpeed = 0
		} else {
			g.simSpeed = 1
		}
	}
	if g.pressed(currentKeys, ebiten.KeyComma) {
		for i, s := range speeds {
			if s >= g.simSpeed && i > 0 {
				g.simSpeed = speeds[i-1]
				break
			}
		}
	}
	if g.pressed(currentKeys, ebiten.KeyPeriod) {
		for i, s := range speeds {
			if s <= g.simSpeed && i < len(speeds)-1 && speeds[i+1] > g.simSpeed {
				g.simSpeed = speeds[i+1]
				break
			}
		}
	}
	g.prevKeys = currentKeys

	var intent Vec2
	if ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		intent.Y--
	}
	if ebiten.IsKeyPressed(ebiten.KeyS) || ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		intent.Y++
	}
	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		intent.X--
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		intent.X++
	}
	return intent
}

func (g *Game) copyReport() {
	report := g.sim.Report().Format() + g.reporter.WindowSummary().Format()
	if err := clipboard.WriteAll(report); err != nil {
		g.logger.Warn("copy report failed", "err", err)
		g.setStatus("clipboard unavailable")
		return
	}
	g.setStatus("report copied")
}

func (g *Game) setStatus(msg string) {
	g.status = msg
	g.statusFrames = statusFrames
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colBackground)

	ox, oy := float32(g.offX), float32(g.offY)
	gw, gh := float32(g.gameWidth), float32(g.gameHeight)
	vector.FillRect(screen, ox, oy, gw, gh, colGround, false)
	drawGridOffset(screen, g.offX, g.offY, g.gameWidth, g.gameHeight, int(g.sim.Tuning.CellSize), colGridLine)

	objects := g.sim.Objects()
	for _, o := range objects {
		switch o.Kind {
		case ObjectObstacle:
			g.drawObstacle(screen, o)
		case ObjectHospital:
			g.drawHospital(screen, o)
		}
	}
	for _, o := range objects {
		if o.Kind == ObjectVictim && o.Active {
			g.drawVictim(screen, o)
		}
	}

	agents := g.sim.Agents()
	if g.showPaths {
		for _, a := range agents {
			g.drawPath(screen, a)
		}
	}
	for _, a := range agents {
		g.drawAgent(screen, a)
	}

	vector.StrokeRect(screen, ox-1, oy-1, gw+2, gh+2, 2.0, color.RGBA{R: 65, G: 90, B: 65, A: 255}, false)

	logX := g.offX + g.gameWidth + g.offX
	g.thoughtLog.Draw(screen, g.hudFace, logX, g.height)

	g.drawCounter(screen)
	if g.showHUD {
		g.drawHUD(screen)
	}
	if g.won {
		g.drawBanner(screen)
	}
}

// toScreen converts world coordinates to screen coordinates.
func (g *Game) toScreen(p Vec2) (float32, float32) {
	return float32(g.offX) + float32(p.X), float32(g.offY) + float32(p.Y)
}

func (g *Game) drawObstacle(screen *ebiten.Image, o ObjectView) {
	x, y := g.toScreen(o.Pos.Sub(o.Half))
	w, h := float32(o.Half.X*2), float32(o.Half.Y*2)
	vector.FillRect(screen, x, y, w, h, colBuilding, false)
	vector.StrokeRect(screen, x, y, w, h, 1.0, colBuildingEd, false)
}

func (g *Game) drawHospital(screen *ebiten.Image, o ObjectView) {
	x, y := g.toScreen(o.Pos.Sub(o.Half))
	w, h := float32(o.Half.X*2), float32(o.Half.Y*2)
	vector.FillRect(screen, x+2, y+2, w-4, h-4, colHospital, false)

	cx, cy := g.toScreen(o.Pos)
	arm, bar := w*0.3, w*0.1
	vector.FillRect(screen, cx-arm, cy-bar, arm*2, bar*2, colCross, false)
	vector.FillRect(screen, cx-bar, cy-arm, bar*2, arm*2, colCross, false)
}

func (g *Game) drawVictim(screen *ebiten.Image, o ObjectView) {
	cx, cy := g.toScreen(o.Pos)
	col := colVictim
	if (g.frame/20)%2 == 1 {
		col = colVictimDim
	}
	vector.DrawFilledCircle(screen, cx, cy, float32(o.Half.X), col, true)
	vector.StrokeCircle(screen, cx, cy, float32(o.Half.X)+2, 1.0, color.RGBA{R: 255, G: 230, B: 160, A: 160}, true)
}

func (g *Game) drawAgent(screen *ebiten.Image, a AgentView) {
	cx, cy := g.toScreen(a.Pos)
	r := float32(a.Radius)
	col := colRescuer
	if a.Kind == AgentPlayer {
		col = colPlayer
	}
	vector.DrawFilledCircle(screen, cx, cy, r, col, true)
	vector.StrokeCircle(screen, cx, cy, r, 1.5, color.RGBA{R: 10, G: 10, B: 10, A: 220}, true)

	if h := a.Vel.Normalize(); !h.IsZero() {
		vector.StrokeLine(screen, cx, cy, cx+float32(h.X)*r, cy+float32(h.Y)*r, 2.0, color.RGBA{R: 20, G: 20, B: 20, A: 255}, true)
	}
	if a.Carrying {
		vector.DrawFilledCircle(screen, cx+r*0.7, cy-r*0.7, r*0.45, colVictim, true)
	}
	ebitenutil.DebugPrintAt(screen, a.Label, int(cx)-4, int(cy+r)+1)
}

func (g *Game) drawPath(screen *ebiten.Image, a AgentView) {
	if len(a.Path) == 0 {
		return
	}
	px, py := g.toScreen(a.Pos)
	for _, wp := range a.Path {
		x, y := g.toScreen(wp)
		vector.StrokeLine(screen, px, py, x, y, 1.5, colPath, true)
		vector.DrawFilledCircle(screen, x, y, 2.5, colPath, true)
		px, py = x, y
	}
}

// drawCounter renders the rescue counter at the top of the playfield.
func (g *Game) drawCounter(screen *ebiten.Image) {
	reg := g.sim.Registry()
	g.drawText(screen, fmt.Sprintf("Rescued: %d/%d", reg.Rescued(), reg.Total()),
		float64(g.offX+6), float64(g.offY+4), color.White)
	if g.statusFrames > 0 {
		g.drawText(screen, g.status, float64(g.offX+6), float64(g.offY+20), color.RGBA{R: 180, G: 230, B: 180, A: 255})
	}
}

func (g *Game) drawText(screen *ebiten.Image, s string, x, y float64, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, g.hudFace, op)
}

func (g *Game) drawHUD(screen *ebiten.Image) {
	speedStr := "1x"
	switch {
	case g.simSpeed == 0:
		speedStr = "PAUSED"
	case g.simSpeed != 1:
		speedStr = fmt.Sprintf("%gx", g.simSpeed)
	}

	lines := []string{
		fmt.Sprintf("T=%d  mode=%s  %s", g.sim.CurrentTick(), g.sim.Mode, speedStr),
		"WASD/arrows=move  P=pause  ,/.=speed",
		"Tab=paths  C=copy report  H=hide",
	}

	const lineH = 12
	const charW = 6
	const pad = 4
	maxLen := 0
	for _, l := range lines {
		maxLen = max(maxLen, len(l))
	}
	boxW := float32(maxLen*charW + pad*2)
	boxH := float32(len(lines)*lineH + pad*2)
	bx := float32(g.offX + 4)
	by := float32(g.offY+g.gameHeight) - boxH - 4

	vector.FillRect(screen, bx, by, boxW, boxH, color.RGBA{R: 6, G: 10, B: 6, A: 210}, false)
	vector.StrokeRect(screen, bx, by, boxW, boxH, 1.0, color.RGBA{R: 60, G: 100, B: 60, A: 180}, false)
	for i, line := range lines {
		ebitenutil.DebugPrintAt(screen, line, int(bx)+pad, int(by)+pad+i*lineH)
	}
}

func (g *Game) drawBanner(screen *ebiten.Image) {
	const msg = "All Victims Rescued!"
	w, h := text.Measure(msg, g.hudFace, 0)
	scale := 3.0
	bw, bh := float32(w*scale)+40, float32(h*scale)+24
	cx := float32(g.offX) + float32(g.gameWidth)/2
	cy := float32(g.offY) + float32(g.gameHeight)/2
	vector.FillRect(screen, cx-bw/2, cy-bh/2, bw, bh, colBanner, false)
	vector.StrokeRect(screen, cx-bw/2, cy-bh/2, bw, bh, 2.0, color.RGBA{R: 90, G: 200, B: 110, A: 255}, false)

	op := &text.DrawOptions{}
	op.GeoM.Scale(scale, scale)
	op.GeoM.Translate(float64(cx)-w*scale/2, float64(cy)-h*scale/2)
	fade := math.Min(1, float64(g.winFrames)/30)
	op.ColorScale.ScaleWithColor(color.White)
	op.ColorScale.ScaleAlpha(float32(fade))
	text.Draw(screen, msg, g.hudFace, op)
}

func drawGridOffset(screen *ebiten.Image, offX, offY, w, h, spacing int, c color.Color) {
	if spacing <= 0 {
		return
	}
	ox, oy := float32(offX), float32(offY)
	for x := 0; x <= w; x += spacing {
		xf := ox + float32(x)
		vector.StrokeLine(screen, xf, oy, xf, oy+float32(h), 1.0, c, false)
	}
	for y := 0; y <= h; y += spacing {
		yf := oy + float32(y)
		vector.StrokeLine(screen, ox, yf, ox+float32(w), yf, 1.0, c, false)
	}
}

func (g *Game) Layout(_, _ int) (int, int) {
	return g.width, g.height
}

// GameWidth returns the playfield width (excluding log panel).
func (g *Game) GameWidth() int {
	return g.gameWidth
}
