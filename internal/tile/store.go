package tile

// Store is a sparse set of tiles backed by a bitmap over a growable window
// [left, left+sizeX) x [bottom, bottom+sizeY). The window only grows, and only
// on the side a new tile falls outside of, so memory follows the footprint of
// the stored tiles rather than the map.
type Store struct {
	m      Map
	left   uint32
	bottom uint32
	sizeX  uint32
	sizeY  uint32
	rows   [][]bool // rows[y-bottom][x-left]
	count  int
}

// NewStore returns an empty store for tiles of m.
func NewStore(m Map) *Store {
	return &Store{m: m}
}

// Init clears the store and allocates a sizeX by sizeY window centered on middle
// where the map edge allows it.
func (s *Store) Init(sizeX, sizeY uint32, middle Index) {
	s.Clear()

	x, y := s.m.X(middle), s.m.Y(middle)
	s.left = 0
	if x >= sizeX/2 {
		s.left = x - sizeX/2
	}
	s.bottom = 0
	if y >= sizeY/2 {
		s.bottom = y - sizeY/2
	}
	s.sizeX = sizeX
	s.sizeY = sizeY

	s.rows = make([][]bool, sizeY)
	for i := range s.rows {
		s.rows[i] = make([]bool, sizeX)
	}
}

// Clear removes every tile and drops the window.
func (s *Store) Clear() {
	s.left, s.bottom = 0, 0
	s.sizeX, s.sizeY = 0, 0
	s.rows = nil
	s.count = 0
}

// Has reports whether t is in the store.
func (s *Store) Has(t Index) bool {
	if !s.contains(t) {
		return false
	}
	return s.get(t)
}

// Add inserts t, growing the window if needed.
func (s *Store) Add(t Index) {
	if !s.contains(t) {
		s.resizeToContain(t)
	}
	if !s.get(t) {
		s.count++
	}
	s.set(t, true)
}

// Remove deletes t. t must be present.
func (s *Store) Remove(t Index) {
	if !s.Has(t) {
		panic("tile: Remove of a tile not in the store")
	}
	s.set(t, false)
	s.count--
}

// Len returns the number of stored tiles.
func (s *Store) Len() int {
	return s.count
}

// Tiles returns the stored tiles in row-major order.
func (s *Store) Tiles() []Index {
	tiles := make([]Index, 0, s.count)
	for y, row := range s.rows {
		for x, ok := range row {
			if ok {
				tiles = append(tiles, s.m.XY(s.left+uint32(x), s.bottom+uint32(y)))
			}
		}
	}
	return tiles
}

// WidthX returns the X span of the tight bounding box of stored tiles.
func (s *Store) WidthX() uint32 {
	lo, hi, ok := uint32(0), uint32(0), false
	for _, row := range s.rows {
		for x, set := range row {
			if !set {
				continue
			}
			ux := uint32(x)
			if !ok {
				lo, hi, ok = ux, ux, true
				continue
			}
			lo = min(lo, ux)
			hi = max(hi, ux)
		}
	}
	if !ok {
		return 0
	}
	return hi - lo + 1
}

// HeightY returns the Y span of the tight bounding box of stored tiles.
func (s *Store) HeightY() uint32 {
	lo, hi, ok := uint32(0), uint32(0), false
	for y, row := range s.rows {
		for _, set := range row {
			if !set {
				continue
			}
			if !ok {
				lo, ok = uint32(y), true
			}
			hi = uint32(y)
			break
		}
	}
	if !ok {
		return 0
	}
	return hi - lo + 1
}

func (s *Store) contains(t Index) bool {
	x, y := s.m.X(t), s.m.Y(t)
	return x >= s.left && x < s.left+s.sizeX && y >= s.bottom && y < s.bottom+s.sizeY
}

func (s *Store) get(t Index) bool {
	return s.rows[s.m.Y(t)-s.bottom][s.m.X(t)-s.left]
}

func (s *Store) set(t Index, v bool) {
	s.rows[s.m.Y(t)-s.bottom][s.m.X(t)-s.left] = v
}

// resizeToContain extends the window on each side t falls outside of, by
// exactly the missing amount.
func (s *Store) resizeToContain(t Index) {
	x, y := s.m.X(t), s.m.Y(t)

	if s.sizeX == 0 || s.sizeY == 0 {
		s.left, s.bottom = x, y
		s.sizeX, s.sizeY = 1, 1
		s.rows = [][]bool{{false}}
		return
	}

	if y >= s.bottom+s.sizeY {
		extra := y - (s.bottom + s.sizeY) + 1
		for range extra {
			s.rows = append(s.rows, make([]bool, s.sizeX))
		}
		s.sizeY += extra
	}
	if y < s.bottom {
		extra := s.bottom - y
		grown := make([][]bool, 0, s.sizeY+extra)
		for range extra {
			grown = append(grown, make([]bool, s.sizeX))
		}
		s.rows = append(grown, s.rows...)
		s.sizeY += extra
		s.bottom = y
	}
	if x >= s.left+s.sizeX {
		extra := x - (s.left + s.sizeX) + 1
		for i := range s.rows {
			s.rows[i] = append(s.rows[i], make([]bool, extra)...)
		}
		s.sizeX += extra
	}
	if x < s.left {
		extra := s.left - x
		for i := range s.rows {
			s.rows[i] = append(make([]bool, extra, uint32(len(s.rows[i]))+extra), s.rows[i]...)
		}
		s.sizeX += extra
		s.left = x
	}
}
