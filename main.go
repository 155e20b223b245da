package main

import (
	"flag"
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

const (
	// Closures queued for the game loop before background posters block
	dispatcherQueueSize = 256

	// Keyboard pan step in screen pixels
	panStep = 50.0
)

// Game adapts the viewing session to the ebiten game loop. It owns the
// interactive thread: Update drains the dispatcher, so every session call
// and every posted callback runs here.
type Game struct {
	session    *Session
	dispatcher *Dispatcher
	canvas     *FrameCanvas

	renderer            *Renderer
	inputHandler        *InputHandler
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager

	config       Config
	configStatus ConfigLoadResult
	configPath   string

	target  string
	started bool
	exiting bool

	fullscreen bool
	savedWinW  int
	savedWinH  int
	screenW    int
	screenH    int

	showHelp         bool
	showInfo         bool
	angleInputMode   bool
	angleInputBuffer string

	title        string
	needsRedraw  bool
	lastSnapshot *RenderStateSnapshot
}

// NewGame builds the session and the input and render layers. target is
// opened on the first Update.
func NewGame(result ConfigLoadResult, configPath, target string, probe MemoryProbe) (*Game, error) {
	g := &Game{
		config:       result.Config,
		configStatus: result,
		configPath:   configPath,
		target:       target,
		fullscreen:   result.Config.Fullscreen,
		needsRedraw:  true,
		dispatcher:   NewDispatcher(dispatcherQueueSize),
		canvas:       &FrameCanvas{},
	}

	g.session = NewSession(g.config, SessionDeps{
		Dispatcher: g.dispatcher,
		Sink:       g.canvas,
		Probe:      probe,
	})

	renderer, err := NewRenderer(g)
	if err != nil {
		g.session.Close()
		g.dispatcher.Close()
		return nil, err
	}
	g.renderer = renderer

	g.keybindingManager = NewKeybindingManager(g.config.Keybindings)
	g.mousebindingManager = NewMousebindingManager(g.config.Mousebindings, g.config.Mouse)
	g.inputHandler = NewInputHandler(g, g, g.keybindingManager, g.mousebindingManager)
	return g, nil
}

func (g *Game) Update() error {
	if g.exiting {
		return ebiten.Termination
	}

	g.session.Resize(g.screenW, g.screenH)
	if !g.started {
		g.started = true
		if err := g.session.OpenFile(g.target); err != nil {
			Log.Warnw("Initial open failed", "target", g.target, "error", err)
		}
	}

	g.dispatcher.Drain()

	if g.inputHandler.HandleInput() {
		g.needsRedraw = true
	}
	if ebiten.IsWindowBeingClosed() {
		g.Exit()
	}
	if g.exiting {
		g.shutdown()
		return ebiten.Termination
	}

	if title := g.session.Title(); title != g.title {
		ebiten.SetWindowTitle(title)
		g.title = title
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	snapshot := NewRenderStateSnapshot(g, screen.Bounds().Dx(), screen.Bounds().Dy())
	if !g.needsRedraw && snapshot.Equals(g.lastSnapshot) {
		return
	}

	g.renderer.Draw(screen)
	g.lastSnapshot = snapshot
	g.needsRedraw = false
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.screenW, g.screenH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// shutdown stops background work and persists the window size.
func (g *Game) shutdown() {
	g.saveCurrentWindowSize()
	g.session.Close()
	g.dispatcher.Close()
	Log.Info("Exiting")
}

func (g *Game) saveCurrentWindowSize() {
	w, h := ebiten.WindowSize()
	if g.fullscreen {
		// Save the size from before fullscreen
		w, h = g.savedWinW, g.savedWinH
	}
	if w <= 0 || h <= 0 {
		return
	}
	saveWindowSize(g.configPath, w, h)
}

// RenderState implementation

func (g *Game) IsFullscreen() bool {
	return g.fullscreen
}

func (g *Game) GetFrame() *ebiten.Image {
	return g.canvas.Image()
}

func (g *Game) GetFrameVersion() uint64 {
	return g.canvas.Version()
}

func (g *Game) GetBackgroundColor() color.RGBA {
	return g.session.BackgroundColor()
}

// GetMissingImageName reports the selected image when it was rendered but
// produced no frame.
func (g *Game) GetMissingImageName() (string, bool) {
	if g.canvas.Version() == 0 || g.canvas.Image() != nil {
		return "", false
	}
	if g.screenW < MinViewportSize || g.screenH < MinViewportSize {
		return "", false
	}
	return g.session.CurrentName()
}

func (g *Game) IsShowingHelp() bool {
	return g.showHelp
}

func (g *Game) IsShowingInfo() bool {
	return g.showInfo
}

func (g *Game) IsInAngleInputMode() bool {
	return g.angleInputMode
}

func (g *Game) GetAngleInputBuffer() string {
	return g.angleInputBuffer
}

func (g *Game) GetOverlayMessage() string {
	return g.session.GetOverlayMessage()
}

func (g *Game) GetOverlayMessageTime() time.Time {
	return g.session.GetOverlayMessageTime()
}

func (g *Game) IsLoading() bool {
	return g.session.IsLoading()
}

func (g *Game) GetProgress() LoadProgress {
	return g.session.Progress()
}

func (g *Game) GetStatusText() string {
	count := g.session.Count()
	if count == 0 {
		return "0 / 0"
	}
	status := fmt.Sprintf("%d / %d", g.session.Index()+1, count)
	if zoom := g.session.Viewport().Zoom; zoom > 1 {
		status += fmt.Sprintf("  %.0f%%", zoom*100)
	}
	if g.session.IsPlaying() {
		status += "  [playing]"
	}
	return status
}

func (g *Game) GetInfoLines() []string {
	return g.session.InfoLines()
}

func (g *Game) GetFontSize() float64 {
	return g.config.HelpFontSize
}

func (g *Game) GetConfigStatus() ConfigLoadResult {
	return g.configStatus
}

func (g *Game) GetKeybindings() map[string][]string {
	return g.keybindingManager.GetKeybindings()
}

func (g *Game) GetMousebindings() map[string][]string {
	return g.mousebindingManager.GetMousebindings()
}

func main() {
	logLevel := flag.String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [options] [directory|archive|image]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := InitLogger("info", "console"); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	configPath := getConfigPath()
	result := loadConfigFromPath(configPath)
	config := result.Config

	level := config.LogLevel
	if *logLevel != "" {
		level = *logLevel
	}
	if err := InitLogger(level, config.LogFormat); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer SyncLogger()

	target := "."
	if flag.NArg() > 0 {
		target = flag.Arg(0)
	}

	Log.Infow("Starting", "config", configPath, "config_status", result.Status, "target", target)

	g, err := NewGame(result, configPath, target, SystemMemoryProbe{})
	if err != nil {
		Log.Fatalw("Cannot start viewer", "error", err)
	}

	ebiten.SetWindowTitle("pview")
	ebiten.SetWindowSize(config.WindowWidth, config.WindowHeight)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowClosingHandled(true)
	ebiten.SetScreenClearedEveryFrame(false)
	if config.Fullscreen {
		g.savedWinW, g.savedWinH = config.WindowWidth, config.WindowHeight
		ebiten.SetFullscreen(true)
	}

	if err := ebiten.RunGame(g); err != nil {
		Log.Fatalw("Game loop failed", "error", err)
	}
}
