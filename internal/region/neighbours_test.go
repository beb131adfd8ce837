package region

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestRegions(t *testing.T, n int) (*Manager, []*Region) {
	t.Helper()
	m := NewManager("test", newTerrain(t, "~"), DefaultLimits())
	out := make([]*Region, n)
	for i := range out {
		r := m.newRegion()
		h := m.arena.alloc(r)
		r.id, r.gen = h.ID, h.Gen
		out[i] = r
	}
	return m, out
}

func TestNeighboursSymmetric(t *testing.T) {
	_, rs := newTestRegions(t, 3)
	a, b, c := rs[0], rs[1], rs[2]

	a.Neighbours().Add(b)
	assert.True(t, a.Neighbours().Has(b))
	assert.True(t, b.Neighbours().Has(a))

	a.Neighbours().Add(b)
	assert.Equal(t, 1, a.Neighbours().Len(), "adding twice is a no-op")

	c.Neighbours().Add(a)
	assert.Equal(t, []*Region{b, c}, a.Neighbours().Regions())

	b.Neighbours().Remove(a)
	assert.False(t, a.Neighbours().Has(b))
	assert.False(t, b.Neighbours().Has(a))
	assert.True(t, b.Neighbours().Empty())
}

func TestNeighboursDestroyConnections(t *testing.T) {
	_, rs := newTestRegions(t, 4)
	hub := rs[0]
	for _, r := range rs[1:] {
		hub.Neighbours().Add(r)
	}
	rs[1].Neighbours().Add(rs[2])

	hub.Neighbours().DestroyConnections()

	assert.True(t, hub.Neighbours().Empty())
	for _, r := range rs[1:] {
		assert.False(t, r.Neighbours().Has(hub))
	}
	assert.True(t, rs[1].Neighbours().Has(rs[2]), "unrelated edges survive")
}

func TestNeighboursStaleHandlePanics(t *testing.T) {
	m, rs := newTestRegions(t, 2)
	rs[0].neighbours.set[rs[1].id] = rs[1].gen
	m.arena.release(rs[1].id)

	assert.Panics(t, func() { rs[0].Neighbours().Regions() })
}
