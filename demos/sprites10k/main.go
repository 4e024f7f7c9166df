// sprites10k spawns 10,000 sprites that drift, spin, and bounce around a
// large world while the camera scrolls between its corners. Only the cells
// under the camera are visited each frame. A stress test for the aspen
// visibility query.
package main

import (
	"flag"
	"image/color"
	"log"
	"math"
	"math/rand/v2"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/aspen"
	"github.com/phanxgames/aspen/ebitenhost"
	"github.com/tanema/gween/ease"
	"go.uber.org/zap"
)

const (
	screenW = 1280
	screenH = 720
	count   = 10_000
	tile    = 32
)

type mover struct {
	id       aspen.SpriteID
	dx, dy   float64
	rotSpeed float64
}

func main() {
	cfgPath := flag.String("config", "", "optional TOML config")
	flag.Parse()

	cfg := aspen.DefaultConfig()
	cfg.World.Size = 8192
	cfg.World.Depth = 6
	cfg.Render.AutoPad = true
	if *cfgPath != "" {
		loaded, err := aspen.LoadConfig(*cfgPath)
		if err != nil {
			log.Fatal(err)
		}
		cfg = *loaded
	}

	logger, err := aspen.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	// One page with four coloured tiles.
	page := ebiten.NewImage(tile*4, tile)
	atlas := aspen.NewAtlas()
	tints := []color.RGBA{
		{0xe0, 0x6c, 0x75, 0xff},
		{0x98, 0xc3, 0x79, 0xff},
		{0x61, 0xaf, 0xef, 0xff},
		{0xe5, 0xc0, 0x7b, 0xff},
	}
	names := make([]string, len(tints))
	for i, c := range tints {
		sub := ebiten.NewImage(tile, tile)
		sub.Fill(c)
		var op ebiten.DrawImageOptions
		op.GeoM.Translate(float64(i*tile), 0)
		page.DrawImage(sub, &op)

		names[i] = "tile" + string(rune('a'+i))
		atlas.Add(names[i], aspen.Frame{X: uint16(i * tile), Width: tile, Height: tile})
	}

	scene, err := aspen.NewSceneFromConfig(cfg, atlas)
	if err != nil {
		log.Fatal(err)
	}
	scene.SetLogger(logger)

	seqs := aspen.NewSequenceTable()
	frames := make([]aspen.Frame, len(names))
	for i, n := range names {
		frames[i], _, _ = atlas.Lookup(n)
	}
	if err := seqs.Define("cycle", frames, 4, true, ease.Linear); err != nil {
		log.Fatal(err)
	}
	scene.SetAnimationTable(seqs)

	world := cfg.World.Size
	movers := make([]mover, 0, count)
	for i := 0; i < count; i++ {
		pos := aspen.Vec2{X: rand.Float64() * (world - 2*tile), Y: rand.Float64() * (world - 2*tile)}
		id, err := scene.AddSprite(pos, names[i%len(names)])
		if err != nil {
			log.Fatal(err)
		}
		_ = scene.CenterOrigin(id)
		if i%8 == 0 {
			_ = scene.Play(id, "cycle")
		}
		movers = append(movers, mover{
			id:       id,
			dx:       (rand.Float64() - 0.5) * 4,
			dy:       (rand.Float64() - 0.5) * 4,
			rotSpeed: (rand.Float64() - 0.5) * 0.08,
		})
	}
	logger.Info("spawned", zap.Int("sprites", scene.Len()), zap.Float64("world", world))

	cam := aspen.NewCamera(aspen.Rect{Width: screenW, Height: screenH})
	cam.SetBounds(aspen.Rect{Width: world, Height: world})
	corners := []aspen.Vec2{
		{X: screenW / 2, Y: screenH / 2},
		{X: world - screenW/2, Y: screenH / 2},
		{X: world - screenW/2, Y: world - screenH/2},
		{X: screenW / 2, Y: world - screenH/2},
	}
	next := 1

	renderer := ebitenhost.NewRenderer()
	renderer.RegisterPage(0, page)

	game := ebitenhost.NewGame(scene, cam, renderer, ebitenhost.RunConfig{
		Title:      "aspen: 10k sprites",
		Width:      screenW,
		Height:     screenH,
		Background: color.RGBA{0x10, 0x10, 0x18, 0xff},
		Logger:     logger,
	})
	game.OnUpdate = func() error {
		if !cam.Scrolling() {
			c := corners[next]
			cam.ScrollTo(c.X, c.Y, 8, ease.InOutSine)
			next = (next + 1) % len(corners)
		}
		for i := range movers {
			m := &movers[i]
			if err := scene.OffsetPosition(m.id, m.dx, m.dy); err != nil {
				// Hit a world edge: bounce.
				m.dx, m.dy = -m.dx, -m.dy
			}
			_ = scene.Rotate(m.id, m.rotSpeed)
			if math.Abs(m.rotSpeed) < 1e-3 {
				m.rotSpeed = 0.01
			}
		}
		return nil
	}

	if err := ebitenhost.Run(game); err != nil {
		log.Fatal(err)
	}
}
