// Package layout describes the static world a rescue simulation starts from:
// grid dimensions, buildings, victims, hospitals, spawn points and the
// behaviour tuning applied to every agent.
package layout

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidLayout is returned (wrapped) by Validate and the loaders when a
// layout cannot be used to build a simulation.
var ErrInvalidLayout = errors.New("invalid layout")

// Mode selects how autonomous agents navigate.
type Mode string

const (
	// ModeGrid plans BFS paths over the occupancy grid and commits moves
	// cell by cell.
	ModeGrid Mode = "grid"
	// ModeContinuous steers straight at targets, relying on obstacle
	// avoidance and stuck recovery.
	ModeContinuous Mode = "continuous"
)

// ParseMode converts a flag or file value into a Mode.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeGrid, "":
		return ModeGrid, nil
	case ModeContinuous:
		return ModeContinuous, nil
	default:
		return "", fmt.Errorf("%w: unknown mode %q (want grid or continuous)", ErrInvalidLayout, s)
	}
}

// Cell is an integer grid coordinate. In YAML it may be written either as a
// two element sequence ([x, y]) or as a mapping ({x: 1, y: 2}).
type Cell struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// UnmarshalYAML accepts both the flow-sequence and mapping forms.
func (c *Cell) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xy []int
		if err := value.Decode(&xy); err != nil {
			return err
		}
		if len(xy) != 2 {
			return fmt.Errorf("line %d: cell needs 2 coordinates, got %d", value.Line, len(xy))
		}
		c.X, c.Y = xy[0], xy[1]
		return nil
	case yaml.MappingNode:
		type plain Cell
		var p plain
		if err := value.Decode(&p); err != nil {
			return err
		}
		*c = Cell(p)
		return nil
	default:
		return fmt.Errorf("line %d: cell must be [x, y] or {x, y}", value.Line)
	}
}

// Rect is a free-form obstacle in world units (top-left corner plus size).
type Rect struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	W float64 `yaml:"w"`
	H float64 `yaml:"h"`
}

// Layout is the immutable world setup input.
type Layout struct {
	Name      string `yaml:"name"`
	Cols      int    `yaml:"cols"`
	Rows      int    `yaml:"rows"`
	Mode      Mode   `yaml:"mode"`
	Buildings []Cell `yaml:"buildings"`
	Obstacles []Rect `yaml:"obstacles,omitempty"`
	Victims   []Cell `yaml:"victims"`
	Hospitals []Cell `yaml:"hospitals"`
	Player    *Cell  `yaml:"player,omitempty"`
	Rescuers  []Cell `yaml:"rescuers,omitempty"`
	Tuning    Tuning `yaml:"tuning"`
}

// Default returns the fixed maze the simulation has always shipped with:
// a 20x15 grid of 40px cells, three horizontal wall rows split by a broken
// vertical wall, six victims, a hospital in each corner, the player on the
// west side and one rescuer on the east side.
func Default() *Layout {
	l := &Layout{
		Name: "default",
		Cols: 20,
		Rows: 15,
		Mode: ModeGrid,
		Victims: []Cell{
			{3, 4}, {12, 4}, {3, 10}, {12, 10},
			{14, 5}, {5, 5},
		},
		Hospitals: []Cell{{1, 1}, {17, 1}, {1, 13}, {17, 13}},
		Player:    &Cell{2, 5},
		Rescuers:  []Cell{{13, 5}},
		Tuning:    DefaultTuning(),
	}
	// Horizontal walls.
	for _, row := range []int{2, 7} {
		for x := 2; x <= 6; x++ {
			l.Buildings = append(l.Buildings, Cell{x, row})
		}
		for x := 10; x <= 14; x++ {
			l.Buildings = append(l.Buildings, Cell{x, row})
		}
	}
	for x := 2; x <= 6; x++ {
		l.Buildings = append(l.Buildings, Cell{x, 12})
	}
	// Vertical wall with a gap through the middle rows.
	for y := 1; y <= 5; y++ {
		l.Buildings = append(l.Buildings, Cell{8, y})
	}
	for y := 9; y <= 13; y++ {
		l.Buildings = append(l.Buildings, Cell{8, y})
	}
	return l
}

// Parse decodes a YAML layout. Fields that are omitted keep their default
// values, so a file may override just a handful of tuning constants.
func Parse(data []byte) (*Layout, error) {
	l := &Layout{Mode: ModeGrid, Tuning: DefaultTuning()}
	if err := yaml.Unmarshal(data, l); err != nil {
		return nil, fmt.Errorf("decode layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return l, nil
}

// Load reads and parses a YAML layout file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read layout %s: %w", path, err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("layout %s: %w", path, err)
	}
	return l, nil
}

// LoadWithMode is what the commands use: the file at path, or Default when
// path is empty, with the navigation mode overridden when mode is set.
func LoadWithMode(path, mode string) (*Layout, error) {
	l := Default()
	if path != "" {
		var err error
		if l, err = Load(path); err != nil {
			return nil, err
		}
	}
	if mode != "" {
		m, err := ParseMode(mode)
		if err != nil {
			return nil, err
		}
		l.Mode = m
	}
	return l, nil
}

// Marshal encodes the layout back to YAML.
func (l *Layout) Marshal() ([]byte, error) {
	return yaml.Marshal(l)
}

// InBounds reports whether c lies on the layout's grid.
func (l *Layout) InBounds(c Cell) bool {
	return c.X >= 0 && c.Y >= 0 && c.X < l.Cols && c.Y < l.Rows
}

// Validate checks the layout for problems that would make the simulation
// meaningless. All problems are reported together.
func (l *Layout) Validate() error {
	var errs []error
	fail := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidLayout}, args...)...))
	}

	if l.Cols <= 0 || l.Rows <= 0 {
		fail("grid must be at least 1x1, got %dx%d", l.Cols, l.Rows)
		return errors.Join(errs...)
	}
	if _, err := ParseMode(string(l.Mode)); err != nil {
		errs = append(errs, err)
	}
	if len(l.Hospitals) == 0 {
		fail("at least one hospital is required")
	}

	blocked := make(map[Cell]bool, len(l.Buildings))
	for _, b := range l.Buildings {
		if !l.InBounds(b) {
			fail("building %v is outside the %dx%d grid", b, l.Cols, l.Rows)
			continue
		}
		blocked[b] = true
	}
	check := func(kind string, c Cell) {
		switch {
		case !l.InBounds(c):
			fail("%s %v is outside the %dx%d grid", kind, c, l.Cols, l.Rows)
		case blocked[c]:
			fail("%s %v sits on a building", kind, c)
		}
	}
	for _, v := range l.Victims {
		check("victim", v)
	}
	for _, h := range l.Hospitals {
		check("hospital", h)
	}
	if l.Player != nil {
		check("player", *l.Player)
	}
	for _, r := range l.Rescuers {
		check("rescuer", r)
	}
	for i, o := range l.Obstacles {
		if o.W <= 0 || o.H <= 0 {
			fail("obstacle %d has non-positive size %.0fx%.0f", i, o.W, o.H)
		}
	}
	if err := l.Tuning.Validate(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
