package water

import (
	"encoding/binary"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint hashes the landscape content of every tile. Region ids are not
// included, so a stored decomposition can be checked against the map it was
// computed for.
func (g *Grid) Fingerprint() [32]byte {
	buf := make([]byte, 8, 8+len(g.cells)*4)
	binary.LittleEndian.PutUint32(buf[0:4], g.tm.SizeX)
	binary.LittleEndian.PutUint32(buf[4:8], g.tm.SizeY)
	for _, c := range g.cells {
		buf = append(buf, byte(c.Kind), byte(c.Slope), byte(c.Axis), byte(c.Class))
	}
	return blake2b.Sum256(buf)
}
