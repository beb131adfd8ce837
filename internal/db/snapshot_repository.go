package db

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/shipregions/internal/region"
	"github.com/udisondev/shipregions/internal/tile"
)

var (
	// ErrSnapshotNotFound is returned when no snapshot exists for a domain.
	ErrSnapshotNotFound = errors.New("region snapshot not found")
	// ErrFingerprintMismatch is returned when the stored snapshot was taken
	// on a different terrain layout.
	ErrFingerprintMismatch = errors.New("region snapshot does not match terrain")
)

// Terrain is a region terrain that can fingerprint its layout.
type Terrain interface {
	region.Terrain
	Fingerprint() [32]byte
}

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	Domain  string
	SizeX   uint32
	SizeY   uint32
	Regions int
	Tiles   int
	SavedAt time.Time
}

// SnapshotRepository persists the per-tile region ids of a domain, which is
// all RebuildRegionsFromTiles needs to restore a decomposition.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository.
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Save replaces the snapshot of domain with the ids currently stored in t.
func (r *SnapshotRepository) Save(ctx context.Context, domain string, m *region.Manager, t Terrain) error {
	start := time.Now()
	tm := t.Map()
	fp := t.Fingerprint()

	var rows [][]any
	for i := range tm.Size() {
		ti := tile.Index(i)
		if id := t.RegionID(ti); id != region.NoRegion {
			rows = append(rows, []any{domain, int32(ti), int32(id)})
		}
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning snapshot tx for %s: %w", domain, err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err := tx.Exec(ctx, `DELETE FROM region_snapshots WHERE domain = $1`, domain); err != nil {
		return fmt.Errorf("deleting old snapshot of %s: %w", domain, err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO region_snapshots (domain, size_x, size_y, fingerprint, regions)
		 VALUES ($1, $2, $3, $4, $5)`,
		domain, int32(tm.SizeX), int32(tm.SizeY), fp[:], m.Count(),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot header of %s: %w", domain, err)
	}

	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"region_snapshot_tiles"},
		[]string{"domain", "tile", "region_id"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copying snapshot tiles of %s: %w", domain, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing snapshot of %s: %w", domain, err)
	}

	slog.Info("region snapshot saved",
		"domain", domain,
		"regions", m.Count(),
		"tiles", n,
		"elapsed", time.Since(start))
	return nil
}

// Load writes the stored ids of domain into t and rebuilds m from them.
// The snapshot must have been taken on a terrain with the same fingerprint.
func (r *SnapshotRepository) Load(ctx context.Context, domain string, m *region.Manager, t Terrain) error {
	start := time.Now()
	tm := t.Map()

	var sizeX, sizeY int32
	var fp []byte
	err := r.pool.QueryRow(ctx,
		`SELECT size_x, size_y, fingerprint FROM region_snapshots WHERE domain = $1`, domain,
	).Scan(&sizeX, &sizeY, &fp)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("loading snapshot of %s: %w", domain, ErrSnapshotNotFound)
		}
		return fmt.Errorf("querying snapshot of %s: %w", domain, err)
	}

	want := t.Fingerprint()
	if uint32(sizeX) != tm.SizeX || uint32(sizeY) != tm.SizeY || !bytes.Equal(fp, want[:]) {
		return fmt.Errorf("loading snapshot of %s: %w", domain, ErrFingerprintMismatch)
	}

	rows, err := r.pool.Query(ctx,
		`SELECT tile, region_id FROM region_snapshot_tiles WHERE domain = $1 ORDER BY tile`, domain)
	if err != nil {
		return fmt.Errorf("querying snapshot tiles of %s: %w", domain, err)
	}
	defer rows.Close()

	var stored []tileRow
	for rows.Next() {
		var ti, id int32
		if err := rows.Scan(&ti, &id); err != nil {
			return fmt.Errorf("scanning snapshot tile of %s: %w", domain, err)
		}
		if !tm.Contains(tile.Index(ti)) {
			return fmt.Errorf("loading snapshot of %s: tile %d outside map: %w", domain, ti, ErrFingerprintMismatch)
		}
		stored = append(stored, tileRow{tile: tile.Index(ti), id: region.ID(id)})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating snapshot tiles of %s: %w", domain, err)
	}

	if err := applySnapshot(m, t, stored); err != nil {
		return fmt.Errorf("restoring regions of %s: %w", domain, err)
	}

	count := len(stored)
	slog.Info("region snapshot loaded",
		"domain", domain,
		"regions", m.Count(),
		"tiles", count,
		"elapsed", time.Since(start))
	return nil
}

type tileRow struct {
	tile tile.Index
	id   region.ID
}

// applySnapshot replaces every id in t with stored and rebuilds m. When the
// rebuild fails the previous ids and regions are put back.
func applySnapshot(m *region.Manager, t Terrain, stored []tileRow) error {
	size := t.Map().Size()
	prev := make([]region.ID, size)
	for i := range size {
		prev[i] = t.RegionID(tile.Index(i))
		t.SetRegionID(tile.Index(i), region.NoRegion)
	}
	wasActive := m.Active()

	for _, row := range stored {
		t.SetRegionID(row.tile, row.id)
	}
	err := m.Restore()
	if err == nil {
		return nil
	}

	for i, id := range prev {
		t.SetRegionID(tile.Index(i), id)
	}
	if rerr := m.Restore(); rerr != nil {
		return errors.Join(err, fmt.Errorf("rolling back: %w", rerr))
	}
	if !wasActive {
		m.Deactivate()
	}
	return err
}

// Info returns the header of the stored snapshot of domain.
func (r *SnapshotRepository) Info(ctx context.Context, domain string) (SnapshotInfo, error) {
	info := SnapshotInfo{Domain: domain}
	var sizeX, sizeY int32
	err := r.pool.QueryRow(ctx,
		`SELECT s.size_x, s.size_y, s.regions, s.saved_at,
		        (SELECT count(*) FROM region_snapshot_tiles t WHERE t.domain = s.domain)
		 FROM region_snapshots s WHERE s.domain = $1`, domain,
	).Scan(&sizeX, &sizeY, &info.Regions, &info.SavedAt, &info.Tiles)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return info, fmt.Errorf("snapshot info of %s: %w", domain, ErrSnapshotNotFound)
		}
		return info, fmt.Errorf("querying snapshot info of %s: %w", domain, err)
	}
	info.SizeX, info.SizeY = uint32(sizeX), uint32(sizeY)
	return info, nil
}

// Delete removes the snapshot of domain. Deleting a missing snapshot is not an error.
func (r *SnapshotRepository) Delete(ctx context.Context, domain string) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM region_snapshots WHERE domain = $1`, domain); err != nil {
		return fmt.Errorf("deleting snapshot of %s: %w", domain, err)
	}
	return nil
}
