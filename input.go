package main

import (
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Key-driven actions handled by the executor, grouped by concern.
var (
	appActions       = []string{"exit", "help", "info", "fullscreen", "cycle_sort", "cancel_loading", "rotate_custom"}
	playbackActions  = []string{"jump_first", "jump_last", "play", "stop"}
	transformActions = []string{"rotate_left", "rotate_right", "rotate_180", "flip_horizontal", "flip_vertical"}
	viewActions      = []string{"zoom_in", "zoom_out", "zoom_reset", "pan_up", "pan_down", "pan_left", "pan_right"}
)

// navigationKeys maps the held-key actions to their step direction.
var navigationKeys = []struct {
	action string
	dir    int
}{
	{"next", 1},
	{"previous", -1},
}

// dragTracker turns left-button motion into drag calls once the pointer
// has moved past the threshold.
type dragTracker struct {
	pressed        bool
	started        bool
	pressX, pressY float64
}

// InputHandler handles all keyboard and mouse input processing
type InputHandler struct {
	inputActions        InputActions
	inputState          InputState
	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager
	drag                dragTracker
}

func NewInputHandler(inputActions InputActions, inputState InputState, keybindingManager *KeybindingManager, mousebindingManager *MousebindingManager) *InputHandler {
	return &InputHandler{
		inputActions:        inputActions,
		inputState:          inputState,
		keybindingManager:   keybindingManager,
		mousebindingManager: mousebindingManager,
	}
}

// HandleInput processes all input for the current frame
// Returns true if any input was processed, false otherwise
func (h *InputHandler) HandleInput() bool {
	if h.inputState.IsInAngleInputMode() {
		return h.handleAngleInputMode()
	}

	inputProcessed := false
	inputProcessed = h.executeKeys(appActions) || inputProcessed
	if h.inputState.IsInAngleInputMode() {
		return true
	}

	if h.inputActions.GetTotalImagesCount() == 0 {
		return inputProcessed
	}

	inputProcessed = h.handleNavigationKeys() || inputProcessed
	inputProcessed = h.executeKeys(playbackActions) || inputProcessed
	inputProcessed = h.executeKeys(transformActions) || inputProcessed
	inputProcessed = h.executeKeys(viewActions) || inputProcessed
	inputProcessed = h.handleMouse() || inputProcessed

	return inputProcessed
}

func (h *InputHandler) executeKeys(actions []string) bool {
	inputProcessed := false
	for _, action := range actions {
		if h.keybindingManager.ExecuteAction(action, h.inputActions, h.inputState) {
			inputProcessed = true
		}
	}
	return inputProcessed
}

// handleNavigationKeys starts stepping on key press and stops on release,
// so holding a key repeats with acceleration.
func (h *InputHandler) handleNavigationKeys() bool {
	inputProcessed := false
	for _, nav := range navigationKeys {
		if h.keybindingManager.CheckAction(nav.action) {
			h.inputActions.StartNavigate(nav.dir)
			inputProcessed = true
		}
		if h.keybindingManager.CheckActionReleased(nav.action) {
			h.inputActions.StopNavigate(nav.dir)
			inputProcessed = true
		}
	}
	return inputProcessed
}

func (h *InputHandler) handleAngleInputMode() bool {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		h.inputActions.ExitAngleInputMode()
		return true
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) || inpututil.IsKeyJustPressed(ebiten.KeyNumpadEnter) {
		h.inputActions.ProcessAngleInput()
		h.inputActions.ExitAngleInputMode()
		return true
	}

	buffer := h.inputState.GetAngleInputBuffer()
	if inpututil.IsKeyJustPressed(ebiten.KeyBackspace) {
		if len(buffer) > 0 {
			h.inputActions.UpdateAngleInputBuffer(buffer[:len(buffer)-1])
		}
		return true
	}

	var ch rune
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyMinus), inpututil.IsKeyJustPressed(ebiten.KeyNumpadSubtract):
		ch = '-'
	case inpututil.IsKeyJustPressed(ebiten.KeyPeriod), inpututil.IsKeyJustPressed(ebiten.KeyNumpadDecimal):
		ch = '.'
	default:
		ch = h.checkDigitKeys(ebiten.Key0, ebiten.Key9)
		if ch == 0 {
			ch = h.checkDigitKeys(ebiten.KeyNumpad0, ebiten.KeyNumpad9)
		}
	}
	if ch == 0 {
		return false
	}

	if next, ok := appendAngleChar(buffer, ch); ok {
		h.inputActions.UpdateAngleInputBuffer(next)
	}
	return true
}

func (h *InputHandler) checkDigitKeys(startKey, endKey ebiten.Key) rune {
	for key := startKey; key <= endKey; key++ {
		if inpututil.IsKeyJustPressed(key) {
			return '0' + rune(key-startKey)
		}
	}
	return 0
}

// appendAngleChar extends an angle buffer with ch if the result is still a
// valid partial decimal number.
func appendAngleChar(buffer string, ch rune) (string, bool) {
	const maxAngleLen = 8

	switch {
	case len(buffer) >= maxAngleLen:
		return buffer, false
	case ch == '-':
		if buffer != "" {
			return buffer, false
		}
	case ch == '.':
		if strings.Contains(buffer, ".") {
			return buffer, false
		}
	case ch < '0' || ch > '9':
		return buffer, false
	}
	return buffer + string(ch), true
}

func (h *InputHandler) handleMouse() bool {
	mm := h.mousebindingManager
	if !mm.GetSettings().EnableMouse {
		return false
	}

	inputProcessed := h.handleDrag()

	cx, cy := ebiten.CursorPosition()
	for action := range cursorActions {
		if mm.CheckAction(action) {
			h.inputActions.ZoomAt(float64(cx), float64(cy), action == "zoom_in")
			inputProcessed = true
		}
	}

	for _, action := range GetActionNames() {
		if cursorActions[action] {
			continue
		}
		if mm.ExecuteAction(action, h.inputActions, h.inputState) {
			inputProcessed = true
		}
	}
	return inputProcessed
}

func (h *InputHandler) handleDrag() bool {
	settings := h.mousebindingManager.GetSettings()
	if !settings.EnableDragPan {
		return false
	}

	x, y := ebiten.CursorPosition()
	fx, fy := float64(x), float64(y)

	switch {
	case inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft):
		if modifiersMatch(false, false, false) {
			h.drag = dragTracker{pressed: true, pressX: fx, pressY: fy}
		}
		return false

	case inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft):
		started := h.drag.started
		h.drag = dragTracker{}
		if started {
			h.inputActions.EndDrag()
		}
		return started

	case h.drag.pressed && ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft):
		if !h.drag.started {
			if math.Hypot(fx-h.drag.pressX, fy-h.drag.pressY) < float64(settings.DragThreshold) {
				return false
			}
			h.drag.started = true
			h.inputActions.BeginDrag(h.drag.pressX, h.drag.pressY)
			if !h.inputState.IsDragging() {
				h.drag = dragTracker{}
				return false
			}
		}
		s := settings.DragSensitivity
		h.inputActions.DragTo(h.drag.pressX+(fx-h.drag.pressX)*s, h.drag.pressY+(fy-h.drag.pressY)*s)
		return true
	}
	return false
}
