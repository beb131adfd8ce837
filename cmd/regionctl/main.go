package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/udisondev/shipregions/internal/config"
	"github.com/udisondev/shipregions/internal/db"
	"github.com/udisondev/shipregions/internal/region"
	"github.com/udisondev/shipregions/internal/ship"
	"github.com/udisondev/shipregions/internal/tile"
	"github.com/udisondev/shipregions/internal/water"
)

type options struct {
	configPath string
	mapPath    string
	from       string
	to         string
	maxSteps   int
	render     bool
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	var opts options
	flag.StringVar(&opts.configPath, "config", config.Path(), "config file")
	flag.StringVar(&opts.mapPath, "map", "", "map file, overrides map_path")
	flag.StringVar(&opts.from, "from", "", "route start as x,y")
	flag.StringVar(&opts.to, "to", "", "route destination as x,y")
	flag.IntVar(&opts.maxSteps, "steps", 1000, "maximum ship moves for a route query")
	flag.BoolVar(&opts.render, "render", false, "print the map with the route overlaid")
	flag.Parse()

	if err := run(ctx, opts, os.Stdout); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, out io.Writer) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	level, _ := cfg.Level()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	if opts.mapPath != "" {
		cfg.MapPath = opts.mapPath
	}
	grid, err := water.LoadFile(cfg.MapPath)
	if err != nil {
		return fmt.Errorf("loading map: %w", err)
	}
	slog.Info("map loaded", "path", cfg.MapPath, "size_x", grid.Map().SizeX, "size_y", grid.Map().SizeY)

	limits := region.Limits{
		MaxTilesPerRegion: cfg.Regions.MaxTilesPerRegion,
		MinRegionSize:     cfg.Regions.MinRegionSize,
		MaxRegions:        cfg.Regions.MaxRegions,
	}
	reg := region.NewRegistry()
	manager := region.NewManager(cfg.Snapshot.Domain, grid, limits)
	if err := reg.Register(manager); err != nil {
		return err
	}

	if err := prepareRegions(ctx, cfg, reg, manager, grid); err != nil {
		return err
	}
	grid.SetHook(manager)

	if err := manager.Validate(); err != nil {
		return fmt.Errorf("region decomposition is inconsistent: %w", err)
	}
	s := manager.Stats()
	slog.Info("regions ready",
		"domain", manager.Name(),
		"regions", s.Regions,
		"tiles", s.Tiles,
		"min", s.MinTiles,
		"max", s.MaxTiles,
		"avg", fmt.Sprintf("%.1f", s.AvgTiles()),
		"degenerate", s.Degenerate,
		"isolated", s.Isolated,
		"edges", s.Edges)

	if opts.from == "" || opts.to == "" {
		return nil
	}
	return queryRoute(cfg, opts, grid, manager, out)
}

// prepareRegions restores regions from a snapshot when one matches the map,
// and otherwise builds them from scratch and stores a fresh snapshot.
func prepareRegions(ctx context.Context, cfg config.Config, reg *region.Registry, m *region.Manager, grid *water.Grid) error {
	if !cfg.Snapshot.Enabled {
		return reg.BuildAll(ctx)
	}

	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer database.Close()
	slog.Info("database connected")

	if err := db.RunMigrations(ctx, cfg.Database.DSN()); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	repo := database.Snapshots()
	err = repo.Load(ctx, m.Name(), m, grid)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, db.ErrSnapshotNotFound), errors.Is(err, db.ErrFingerprintMismatch):
		slog.Info("rebuilding regions", "domain", m.Name(), "reason", err)
	default:
		return err
	}

	if err := reg.BuildAll(ctx); err != nil {
		return err
	}
	return repo.Save(ctx, m.Name(), m, grid)
}

func queryRoute(cfg config.Config, opts options, grid *water.Grid, m *region.Manager, out io.Writer) error {
	tm := grid.Map()
	from, err := parseTile(tm, opts.from)
	if err != nil {
		return fmt.Errorf("parsing -from: %w", err)
	}
	to, err := parseTile(tm, opts.to)
	if err != nil {
		return fmt.Errorf("parsing -to: %w", err)
	}

	router := region.NewRouter(m, cfg.Search.MaxNodes)
	nav := ship.NewNavigator(grid, router, cfg.Search.RegionsAhead, cfg.Search.MaxNodes)
	vessel := &ship.Ship{ID: 1, MaxNodes: cfg.Search.MaxNodes}

	waypoints, notFound := router.ChooseIntermediateDestinations(vessel, from, to, cfg.Search.RegionsAhead)
	path, reached := nav.Route(vessel, from, to, opts.maxSteps)
	slog.Info("route",
		"from", opts.from,
		"to", opts.to,
		"region_path_found", !notFound,
		"first_waypoints", len(waypoints),
		"steps", len(path)-1,
		"reached", reached)

	if !opts.render {
		return nil
	}
	onPath := make(map[tile.Index]bool, len(path))
	for _, t := range path {
		onPath[t] = true
	}
	return grid.Render(out, func(t tile.Index) (rune, bool) {
		switch {
		case t == from:
			return 'S', true
		case t == to:
			return 'E', true
		case onPath[t]:
			return '*', true
		}
		return 0, false
	})
}

func parseTile(tm tile.Map, s string) (tile.Index, error) {
	var x, y uint32
	if _, err := fmt.Sscanf(s, "%d,%d", &x, &y); err != nil {
		return tile.Invalid, fmt.Errorf("%q is not x,y: %w", s, err)
	}
	if x >= tm.SizeX || y >= tm.SizeY {
		return tile.Invalid, fmt.Errorf("%q is outside the %dx%d map", s, tm.SizeX, tm.SizeY)
	}
	return tm.XY(x, y), nil
}
