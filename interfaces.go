package main

import (
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// RenderState provides read-only access to viewer state for the renderer
type RenderState interface {
	IsFullscreen() bool

	// Rendering data
	GetFrame() *ebiten.Image
	GetFrameVersion() uint64
	GetBackgroundColor() color.RGBA
	GetMissingImageName() (string, bool)

	// UI state
	IsShowingHelp() bool
	IsShowingInfo() bool
	IsInAngleInputMode() bool
	GetAngleInputBuffer() string
	GetOverlayMessage() string
	GetOverlayMessageTime() time.Time

	// Loading state
	IsLoading() bool
	GetProgress() LoadProgress

	// Display data
	GetStatusText() string
	GetInfoLines() []string
	GetFontSize() float64
	GetConfigStatus() ConfigLoadResult
	GetKeybindings() map[string][]string
	GetMousebindings() map[string][]string
}

// RenderStateSnapshot captures the state that can change without input,
// so an unchanged screen is not redrawn.
type RenderStateSnapshot struct {
	FrameVersion uint64
	Background   color.RGBA

	Loading bool
	Loaded  int

	// Overlay message state (auto-expires after 2 seconds)
	OverlayMessage     string
	OverlayMessageTime time.Time

	// Window dimensions for resize detection
	WindowWidth  int
	WindowHeight int
}

func NewRenderStateSnapshot(state RenderState, windowWidth, windowHeight int) *RenderStateSnapshot {
	return &RenderStateSnapshot{
		FrameVersion:       state.GetFrameVersion(),
		Background:         state.GetBackgroundColor(),
		Loading:            state.IsLoading(),
		Loaded:             state.GetProgress().Loaded,
		OverlayMessage:     state.GetOverlayMessage(),
		OverlayMessageTime: state.GetOverlayMessageTime(),
		WindowWidth:        windowWidth,
		WindowHeight:       windowHeight,
	}
}

func isOverlayActive(message string, messageTime time.Time) bool {
	return message != "" && time.Since(messageTime) < overlayMessageDuration
}

// Equals checks if two snapshots would produce the same screen
func (s *RenderStateSnapshot) Equals(other *RenderStateSnapshot) bool {
	if other == nil {
		return false
	}

	sActive := isOverlayActive(s.OverlayMessage, s.OverlayMessageTime)
	otherActive := isOverlayActive(other.OverlayMessage, other.OverlayMessageTime)
	if sActive != otherActive {
		return false
	}
	if sActive && (s.OverlayMessage != other.OverlayMessage || !s.OverlayMessageTime.Equal(other.OverlayMessageTime)) {
		return false
	}

	return s.FrameVersion == other.FrameVersion &&
		s.Background == other.Background &&
		s.Loading == other.Loading &&
		s.Loaded == other.Loaded &&
		s.WindowWidth == other.WindowWidth &&
		s.WindowHeight == other.WindowHeight
}

// InputActions provides action methods for the input handler
type InputActions interface {
	// Application control
	Exit()

	// Display toggles
	ToggleHelp()
	ToggleInfo()
	ToggleFullscreen()

	// Custom angle input
	EnterAngleInputMode()
	ExitAngleInputMode()
	ProcessAngleInput()
	UpdateAngleInputBuffer(buffer string)

	// Settings
	CycleSortMethod()
	CancelLoading()

	// Navigation. StartNavigate/StopNavigate follow a held key.
	StartNavigate(dir int)
	StopNavigate(dir int)
	NavigateNext()
	NavigatePrevious()
	NavigateFirst()
	NavigateLast()
	TogglePlay()
	StopPlayback()

	// Transformations
	RotateLeft()
	RotateRight()
	Rotate180()
	FlipHorizontal()
	FlipVertical()

	// Zoom and pan
	ZoomIn()
	ZoomOut()
	ZoomReset()
	ZoomAt(x, y float64, zoomIn bool)
	PanUp()
	PanDown()
	PanLeft()
	PanRight()
	BeginDrag(x, y float64)
	DragTo(x, y float64)
	EndDrag()

	ShowOverlayMessage(message string)
	GetTotalImagesCount() int
}

// InputState provides read-only access to input-related state
type InputState interface {
	IsInAngleInputMode() bool
	GetAngleInputBuffer() string
	IsDragging() bool
}
