package testutil

import (
	"strings"
	"testing"

	"github.com/udisondev/shipregions/internal/region"
	"github.com/udisondev/shipregions/internal/water"
)

// Harbour is a small map with a breakwater, a canal with a lock, a depot and a dock.
const Harbour = `
; harbour fixture
~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
~~~~~~~~B~~~~~~~~~~~~~~~~~~~~~
~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~
~~~~~~~~~~~~~~.~~~~~~~~~~~~~~~
~~~~~~~~~~~~~~.~~~~~~~~~~~~~~~
~~~~~~~~~~~~~~.~~~~~~~~~~~~~~~
~~~~~~~~~~~~~~.~~~~~~~~~~~~~~~
~~~~~~~~~~~~~~.~~~~~~~~~~~~~~~
~~~~~~~~~~~~~~.~~~~~~~~~~~~~~~
~~~~~~~~~~~~~~.......~~~~~~~~~
~~~~~~~~~~~~~~~~~~~.y.~~~~~~~~
....~~~~~~~~~~~~~~~~~~~~~D~~~~
...=L=============~~~~~~~~~~~~
....~~~~~~~~~~~~~~~~~~~~~~~~~~
`

// WaterGrid parses map text, failing the test on error.
func WaterGrid(tb testing.TB, text ...string) *water.Grid {
	tb.Helper()
	g, err := water.ParseString(strings.Join(text, "\n"))
	if err != nil {
		tb.Fatalf("parsing test map: %v", err)
	}
	return g
}

// BuiltManager returns a manager over g with regions built from scratch and
// hooked to g's edits.
func BuiltManager(tb testing.TB, g *water.Grid) *region.Manager {
	tb.Helper()
	m := region.NewManager("water", g, region.DefaultLimits())
	if err := m.Build(); err != nil {
		tb.Fatalf("building regions: %v", err)
	}
	g.SetHook(m)
	return m
}
