// aspenbench fills a scene with sprites and runs the visibility query
// headless, reporting per-frame timings. It is useful for picking a grid
// depth for a given world size and sprite density.
//
// Usage:
//
//	aspenbench -config scene.toml -sprites 50000 -frames 600
//	aspenbench -atlas atlas.json -sequences anims.yaml
package main

import (
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/phanxgames/aspen"
	"go.uber.org/zap"
)

func main() {
	var (
		cfgPath   = flag.String("config", "", "TOML scene config")
		atlasPath = flag.String("atlas", "", "TexturePacker JSON atlas (default: synthetic)")
		seqPath   = flag.String("sequences", "", "YAML sequence definitions")
		sprites   = flag.Int("sprites", 10000, "sprites to spawn")
		frames    = flag.Int("frames", 300, "frames to simulate")
		viewW     = flag.Float64("view-w", 1280, "camera viewport width")
		viewH     = flag.Float64("view-h", 720, "camera viewport height")
		seed      = flag.Uint64("seed", 1, "random seed")
	)
	flag.Parse()

	if err := run(*cfgPath, *atlasPath, *seqPath, *sprites, *frames, *viewW, *viewH, *seed); err != nil {
		fmt.Fprintln(os.Stderr, "aspenbench:", err)
		os.Exit(1)
	}
}

func run(cfgPath, atlasPath, seqPath string, sprites, frames int, viewW, viewH float64, seed uint64) error {
	cfg := aspen.DefaultConfig()
	if cfgPath != "" {
		loaded, err := aspen.LoadConfig(cfgPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}

	logger, err := aspen.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	atlas, err := loadAtlas(atlasPath)
	if err != nil {
		return err
	}
	names := atlas.Names()
	if len(names) == 0 {
		return fmt.Errorf("atlas has no frames")
	}

	scene, err := aspen.NewSceneFromConfig(cfg, atlas)
	if err != nil {
		return err
	}
	scene.SetLogger(logger)
	defer scene.Dispose()

	var seqNames []string
	if seqPath != "" {
		table, err := aspen.LoadSequencesFile(seqPath, atlas)
		if err != nil {
			return err
		}
		scene.SetAnimationTable(table)
		seqNames = table.Names()
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	world := cfg.World.Size
	spawned := 0
	for i := 0; i < sprites; i++ {
		pos := aspen.Vec2{X: rng.Float64() * world, Y: rng.Float64() * world}
		id, err := scene.AddSprite(pos, names[i%len(names)])
		if err != nil {
			// Sprites hanging over the world edge are skipped.
			continue
		}
		spawned++
		if len(seqNames) > 0 {
			_ = scene.Play(id, seqNames[i%len(seqNames)])
		}
	}
	logger.Info("scene ready",
		zap.Float64("world", world),
		zap.Int("depth", cfg.World.Depth),
		zap.Int("cells", scene.CellsPerAxis()*scene.CellsPerAxis()),
		zap.Int("sprites", spawned),
	)

	cam := aspen.NewCamera(aspen.Rect{Width: viewW, Height: viewH})
	cam.SetBounds(aspen.Rect{Width: world, Height: world})
	cam.ClampToBounds()
	cam.ScrollTo(world-viewW/2, world-viewH/2, float32(frames)/60, nil)

	var total, worst time.Duration
	quads := 0
	for f := 0; f < frames; f++ {
		start := time.Now()
		b, err := scene.Update(cam, 1.0/60)
		if err != nil {
			return fmt.Errorf("frame %d: %w", f, err)
		}
		d := time.Since(start)
		total += d
		worst = max(worst, d)
		quads += b.Quads
	}
	if frames > 0 {
		logger.Info("done",
			zap.Int("frames", frames),
			zap.Duration("avg", total/time.Duration(frames)),
			zap.Duration("worst", worst),
			zap.Int("avg_quads", quads/frames),
		)
	}
	return nil
}

func loadAtlas(path string) (*aspen.Atlas, error) {
	if path == "" {
		atlas := aspen.NewAtlas()
		for i := 0; i < 16; i++ {
			atlas.Add(fmt.Sprintf("tile%02d", i), aspen.Frame{
				X: uint16(i%4) * 32, Y: uint16(i/4) * 32, Width: 32, Height: 32,
			})
		}
		return atlas, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read atlas: %w", err)
	}
	return aspen.LoadAtlas(data)
}
