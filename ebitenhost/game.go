package ebitenhost

import (
	"errors"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/phanxgames/aspen"
	"go.uber.org/zap"
)

// RunConfig holds the window and logging options of a Game.
type RunConfig struct {
	// Title sets the window title.
	Title string
	// Width and Height set the window and logical screen size.
	Width, Height int
	// Background fills the screen before the batch is drawn. Nil leaves the
	// screen cleared to transparent black.
	Background color.Color
	// Logger receives frame errors. Nil disables logging.
	Logger *zap.Logger
}

// Game adapts a Scene to ebiten.Game. Update runs the scene's visibility
// query once per tick and Draw submits the resulting batch.
type Game struct {
	Scene    *aspen.Scene
	Camera   *aspen.Camera
	Renderer *Renderer

	// OnUpdate, when set, runs before the scene update each tick. Returning
	// an error (e.g. ebiten.Termination) stops the game.
	OnUpdate func() error

	cfg   RunConfig
	log   *zap.Logger
	batch aspen.Batch
}

// NewGame wires a scene, camera and renderer into a Game.
func NewGame(scene *aspen.Scene, cam *aspen.Camera, r *Renderer, cfg RunConfig) *Game {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Game{Scene: scene, Camera: cam, Renderer: r, cfg: cfg, log: log}
}

// Update implements ebiten.Game.
func (g *Game) Update() error {
	if g.OnUpdate != nil {
		if err := g.OnUpdate(); err != nil {
			return err
		}
	}
	dt := 1.0 / float64(ebiten.TPS())
	b, err := g.Scene.Update(g.Camera, dt)
	if err != nil {
		// A camera outside the world shows nothing this frame.
		g.log.Debug("scene update", zap.Error(err))
		g.batch = aspen.Batch{}
		return nil
	}
	g.batch = b
	return nil
}

// Draw implements ebiten.Game.
func (g *Game) Draw(screen *ebiten.Image) {
	if g.cfg.Background != nil {
		screen.Fill(g.cfg.Background)
	}
	if err := g.Renderer.Draw(screen, g.batch, g.Camera); err != nil {
		g.log.Warn("draw", zap.Error(err))
	}
}

// Layout implements ebiten.Game.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.cfg.Width > 0 && g.cfg.Height > 0 {
		return g.cfg.Width, g.cfg.Height
	}
	return outsideWidth, outsideHeight
}

// Run opens a window and runs g until it terminates. ebiten.Termination is
// treated as a normal exit.
func Run(g *Game) error {
	if g.cfg.Title != "" {
		ebiten.SetWindowTitle(g.cfg.Title)
	}
	if g.cfg.Width > 0 && g.cfg.Height > 0 {
		ebiten.SetWindowSize(g.cfg.Width, g.cfg.Height)
	}
	err := ebiten.RunGame(g)
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
