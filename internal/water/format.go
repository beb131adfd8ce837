package water

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/udisondev/shipregions/internal/tile"
)

// ErrBadMap is returned for malformed map text.
var ErrBadMap = errors.New("water: bad map")

// Map text symbols. The first row is y = 0. Lines starting with ';' are comments.
var symbols = map[rune]Tile{
	'.': {Kind: KindLand},
	'~': {Kind: KindWater, Class: ClassSea},
	'=': {Kind: KindWater, Class: ClassCanal},
	'n': {Kind: KindWater, Slope: SlopeN},
	'e': {Kind: KindWater, Slope: SlopeE},
	's': {Kind: KindWater, Slope: SlopeS},
	'w': {Kind: KindWater, Slope: SlopeW},
	'^': {Kind: KindWater, Slope: SlopeSteep},
	'L': {Kind: KindLock, Class: ClassCanal},
	'x': {Kind: KindDepot, Axis: AxisX},
	'y': {Kind: KindDepot, Axis: AxisY},
	'D': {Kind: KindDock},
	'B': {Kind: KindBuoy},
	'O': {Kind: KindOilRig},
}

// Symbol returns the map text character for content.
func Symbol(content Tile) rune {
	for r, s := range symbols {
		if s == content {
			return r
		}
	}
	switch content.Kind {
	case KindWater:
		return '~'
	case KindLock:
		return 'L'
	case KindDepot:
		return 'x'
	case KindDock:
		return 'D'
	case KindBuoy:
		return 'B'
	case KindOilRig:
		return 'O'
	}
	return '.'
}

// Parse reads a grid from map text.
func Parse(r io.Reader) (*Grid, error) {
	var rows [][]Tile
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimRight(sc.Text(), " \t\r")
		if text == "" || strings.HasPrefix(text, ";") {
			continue
		}
		row := make([]Tile, 0, len(text))
		for col, ch := range []rune(text) {
			content, ok := symbols[ch]
			if !ok {
				return nil, fmt.Errorf("%w: line %d col %d: unknown symbol %q", ErrBadMap, line, col+1, ch)
			}
			row = append(row, content)
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%w: line %d: width %d, expected %d", ErrBadMap, line, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading map: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: empty map", ErrBadMap)
	}

	g := NewGrid(uint32(len(rows[0])), uint32(len(rows)))
	for y, row := range rows {
		for x, content := range row {
			g.Load(g.tm.XY(uint32(x), uint32(y)), content)
		}
	}
	return g, nil
}

// ParseString is Parse over a string.
func ParseString(s string) (*Grid, error) {
	return Parse(strings.NewReader(s))
}

// LoadFile reads a grid from a map text file.
func LoadFile(path string) (*Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening map %s: %w", path, err)
	}
	defer f.Close()

	g, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing map %s: %w", path, err)
	}
	return g, nil
}

// Render writes the grid as map text. overlay may replace the symbol of any tile.
func (g *Grid) Render(w io.Writer, overlay func(t tile.Index) (rune, bool)) error {
	bw := bufio.NewWriter(w)
	for y := range g.tm.SizeY {
		for x := range g.tm.SizeX {
			t := g.tm.XY(x, y)
			ch := Symbol(g.cells[t].Tile)
			if overlay != nil {
				if o, ok := overlay(t); ok {
					ch = o
				}
			}
			if _, err := bw.WriteRune(ch); err != nil {
				return fmt.Errorf("rendering map: %w", err)
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("rendering map: %w", err)
		}
	}
	return bw.Flush()
}
