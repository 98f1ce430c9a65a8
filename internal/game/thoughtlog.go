package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	logPanelWidth = 320
	logMaxEntries = 60
	logLineHeight = 14
	logTitleH     = 18
	logHighlight  = 3
)

var (
	colLogPanel = color.RGBA{R: 10, G: 12, B: 10, A: 248}
	colLogTitle = color.RGBA{R: 20, G: 30, B: 20, A: 255}
	colLogEdge  = color.RGBA{R: 50, G: 75, B: 50, A: 255}
	colLogFresh = color.RGBA{R: 30, G: 40, B: 30, A: 160}
)

// ThoughtEntry is one mission event shown in the side panel.
type ThoughtEntry struct {
	Tick    int
	Label   string // "P" or "R0", "R1", ...
	Kind    AgentKind
	Message string
}

// ThoughtLog keeps the newest logMaxEntries mission events.
type ThoughtLog struct {
	entries [logMaxEntries]ThoughtEntry
	next    int
	count   int
}

func NewThoughtLog() *ThoughtLog {
	return &ThoughtLog{}
}

// Add records an event, overwriting the oldest one once full.
func (tl *ThoughtLog) Add(tick int, label string, kind AgentKind, msg string) {
	tl.entries[tl.next] = ThoughtEntry{Tick: tick, Label: label, Kind: kind, Message: msg}
	tl.next = (tl.next + 1) % logMaxEntries
	tl.count = min(tl.count+1, logMaxEntries)
}

// Recent returns the held entries oldest first.
func (tl *ThoughtLog) Recent() []ThoughtEntry {
	out := make([]ThoughtEntry, 0, tl.count)
	start := (tl.next - tl.count + logMaxEntries) % logMaxEntries
	for i := range tl.count {
		out = append(out, tl.entries[(start+i)%logMaxEntries])
	}
	return out
}

func (tl *ThoughtLog) Len() int { return tl.count }

// Draw renders the panel at panelX, newest entry at the bottom. Entries
// older than the visible window are skipped.
func (tl *ThoughtLog) Draw(screen *ebiten.Image, face text.Face, panelX, panelH int) {
	x := float32(panelX)
	vector.FillRect(screen, x, 0, logPanelWidth, float32(panelH), colLogPanel, false)
	vector.FillRect(screen, x, 0, logPanelWidth, logTitleH, colLogTitle, false)
	vector.StrokeLine(screen, x, 0, x, float32(panelH), 1, colLogEdge, false)
	vector.StrokeLine(screen, x, logTitleH, x+logPanelWidth, logTitleH, 1, colLogEdge, false)
	tl.drawLine(screen, face, "MISSION LOG", panelX+8, 2, colorOf(colLogEdge).brighten())

	entries := tl.Recent()
	if fit := (panelH - logTitleH - 6) / logLineHeight; len(entries) > fit {
		entries = entries[len(entries)-fit:]
	}

	y := logTitleH + 4
	for i, e := range entries {
		if i >= len(entries)-logHighlight {
			vector.FillRect(screen, x+2, float32(y), logPanelWidth-4, logLineHeight, colLogFresh, false)
		}
		dot := colPlayer
		if e.Kind == AgentRescuer {
			dot = colRescuer
		}
		vector.FillRect(screen, x+5, float32(y+4), 3, 6, dot, false)

		line := fmt.Sprintf("%4d %-3s %s", e.Tick, e.Label, e.Message)
		tl.drawLine(screen, face, line, panelX+12, y, rgb{0.85, 0.9, 0.85})
		y += logLineHeight
	}
}

type rgb struct{ r, g, b float32 }

func colorOf(c color.RGBA) rgb {
	return rgb{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

func (c rgb) brighten() rgb {
	return rgb{min(c.r*2, 1), min(c.g*2, 1), min(c.b*2, 1)}
}

func (tl *ThoughtLog) drawLine(screen *ebiten.Image, face text.Face, s string, px, py int, c rgb) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(px), float64(py))
	op.ColorScale.Scale(c.r, c.g, c.b, 1)
	text.Draw(screen, s, face, op)
}
