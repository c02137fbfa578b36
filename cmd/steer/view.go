package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/steering/ecs/entity"
	"github.com/milk9111/steering/ecs/render"
	"github.com/milk9111/steering/internal/config"
	"github.com/milk9111/steering/prefabs"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
	"gopkg.in/yaml.v3"
)

const statusFrames = 180

func newViewCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Open a window that draws agents and their gradients",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			g, err := newViewer(a.cfg, a.logger)
			if err != nil {
				return err
			}
			defer g.Close()

			ebiten.SetWindowSize(a.cfg.Viewer.Width, a.cfg.Viewer.Height)
			ebiten.SetWindowTitle("steer: " + g.sim.Scene.Name)
			ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
			ebiten.SetTPS(a.cfg.Viewer.TPS)
			if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
				return err
			}
			return nil
		},
	}
	cmd.Flags().Float64("scale", 1, "world to screen scale")
	cmd.Flags().Bool("watch", true, "reload when prefab files change")
	return cmd
}

type viewer struct {
	cfg      *config.Config
	logger   *zap.Logger
	sim      *entity.Sim
	renderer *render.DebugRenderer
	pauseUI  *ebitenui.UI
	watcher  *prefabs.Watcher

	paused    bool
	quit      bool
	reload    bool
	clipboard bool

	status     string
	statusLeft int
}

func newViewer(cfg *config.Config, logger *zap.Logger) (*viewer, error) {
	g := &viewer{
		cfg:      cfg,
		logger:   logger.Named("viewer"),
		renderer: render.NewDebugRenderer(cfg.Viewer.Scale),
	}
	if err := g.loadScene(); err != nil {
		return nil, err
	}
	g.pauseUI = render.NewPauseUI(cfg.Viewer.Width, cfg.Viewer.Height, render.PauseActions{
		Resume: func() { g.paused = false },
		Reload: func() { g.reload = true },
		Quit:   func() { g.quit = true },
	})

	if err := clipboard.Init(); err != nil {
		g.logger.Warn("clipboard unavailable", zap.Error(err))
	} else {
		g.clipboard = true
	}

	if cfg.Viewer.Watch && cfg.Viewer.Dir != "" {
		w, err := prefabs.NewWatcher(100*time.Millisecond, cfg.Viewer.Dir)
		if err != nil {
			g.logger.Warn("prefab watcher disabled", zap.String("dir", cfg.Viewer.Dir), zap.Error(err))
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func (g *viewer) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
}

func (g *viewer) loadScene() error {
	spec, err := prefabs.LoadSceneSpec(g.cfg.Sim.Scene)
	if err != nil {
		return err
	}
	sim, err := entity.NewSim(spec, entity.Options{
		Logger:   g.logger,
		DT:       g.cfg.Sim.DT,
		LogEvery: g.cfg.Sim.LogEvery,
	})
	if err != nil {
		return err
	}
	g.sim = sim
	return nil
}

func (g *viewer) setStatus(msg string) {
	g.status = msg
	g.statusLeft = statusFrames
}

func (g *viewer) pollWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case ch, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			g.logger.Info("prefab changed", zap.String("path", ch.Path))
			if ch.Kind == prefabs.ScriptChange {
				g.sim.ReloadScripts()
				g.setStatus("scripts reloaded")
				continue
			}
			g.reload = true
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.logger.Warn("prefab watcher error", zap.Error(err))
			}
		default:
			return
		}
	}
}

func (g *viewer) copySnapshot() {
	if !g.clipboard {
		g.setStatus("clipboard unavailable")
		return
	}
	data, err := yaml.Marshal(g.sim.Snapshot())
	if err != nil {
		g.logger.Error("encode snapshot", zap.Error(err))
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.setStatus(fmt.Sprintf("copied frame %d", g.sim.Frame()))
}

func (g *viewer) Update() error {
	if g.quit {
		return ebiten.Termination
	}

	g.pollWatcher()

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) || inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.paused = !g.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.reload = true
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyC) {
		g.copySnapshot()
	}
	if g.reload {
		g.reload = false
		if err := g.loadScene(); err != nil {
			// keep the running scene
			g.logger.Error("reload failed", zap.Error(err))
			g.setStatus("reload failed: " + err.Error())
		} else {
			g.setStatus("scene reloaded")
		}
	}
	if g.statusLeft > 0 {
		g.statusLeft--
	}

	if g.paused {
		g.pauseUI.Update()
		return nil
	}
	g.sim.Step()
	return nil
}

func (g *viewer) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)

	hud := []string{
		fmt.Sprintf("%s  frame %d  fps %.0f", g.sim.Scene.Name, g.sim.Frame(), ebiten.ActualFPS()),
		"space pause  r reload  c copy gradients",
	}
	if g.statusLeft > 0 {
		hud = append(hud, g.status)
	}
	for _, p := range g.sim.Peaks() {
		hud = append(hud, p.String())
	}
	g.renderer.Draw(screen, g.sim.World, hud...)

	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.cfg.Viewer.Width, g.cfg.Viewer.Height
}
