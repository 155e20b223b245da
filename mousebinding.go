package main

import (
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// MouseSettings contains mouse-specific configuration
type MouseSettings struct {
	WheelSensitivity float64 `mapstructure:"wheel_sensitivity"`
	DoubleClickTime  int     `mapstructure:"double_click_time"` // milliseconds
	DragThreshold    int     `mapstructure:"drag_threshold"`    // pixels
	EnableMouse      bool    `mapstructure:"enable_mouse"`
	WheelInverted    bool    `mapstructure:"wheel_inverted"`
	EnableDragPan    bool    `mapstructure:"enable_drag_pan"`
	DragSensitivity  float64 `mapstructure:"drag_sensitivity"`
}

// DoubleClickTracker tracks double-click state
type DoubleClickTracker struct {
	lastClickTime   time.Time
	lastClickButton ebiten.MouseButton
	clickCount      int
}

// MouseCombination represents a mouse action with optional modifiers
type MouseCombination struct {
	Button        ebiten.MouseButton
	IsWheel       bool
	WheelDeltaX   float64
	WheelDeltaY   float64
	IsDoubleClick bool
	Shift         bool
	Ctrl          bool
	Alt           bool
}

// MousebindingManager handles dynamic mouse binding processing
type MousebindingManager struct {
	mousebindings      map[string][]string
	mouseMapping       map[string]ebiten.MouseButton
	combinations       map[string][]MouseCombination
	settings           MouseSettings
	doubleClickTracker DoubleClickTracker
}

func NewMousebindingManager(mousebindings map[string][]string, settings MouseSettings) *MousebindingManager {
	mm := &MousebindingManager{
		mouseMapping:       getMouseMapping(),
		settings:           settings,
		doubleClickTracker: DoubleClickTracker{lastClickTime: time.Now()},
	}
	mm.UpdateMousebindings(mousebindings)
	return mm
}

// getMouseMapping returns a mapping from string mouse actions to Ebiten mouse buttons
func getMouseMapping() map[string]ebiten.MouseButton {
	return map[string]ebiten.MouseButton{
		"LeftClick":   ebiten.MouseButtonLeft,
		"RightClick":  ebiten.MouseButtonRight,
		"MiddleClick": ebiten.MouseButtonMiddle,
		"Back":        ebiten.MouseButton3,
		"Forward":     ebiten.MouseButton4,
	}
}

var wheelDirections = map[string][2]float64{
	"WheelUp":    {0, 1},
	"WheelDown":  {0, -1},
	"WheelLeft":  {-1, 0},
	"WheelRight": {1, 0},
}

// parseMouseString parses a mouse string like "Shift+LeftClick" or "WheelUp" into a MouseCombination
func (mm *MousebindingManager) parseMouseString(mouseStr string) (MouseCombination, bool) {
	parts := strings.Split(mouseStr, "+")
	name := parts[len(parts)-1]

	var combination MouseCombination
	switch {
	case strings.HasPrefix(name, "Wheel"):
		delta, ok := wheelDirections[name]
		if !ok {
			return combination, false
		}
		combination.IsWheel = true
		combination.WheelDeltaX, combination.WheelDeltaY = delta[0], delta[1]
	case strings.HasPrefix(name, "Double"):
		button, ok := mm.mouseMapping[strings.TrimPrefix(name, "Double")]
		if !ok {
			return combination, false
		}
		combination.IsDoubleClick = true
		combination.Button = button
	default:
		button, ok := mm.mouseMapping[name]
		if !ok {
			return combination, false
		}
		combination.Button = button
	}

	combination.Shift, combination.Ctrl, combination.Alt = parseModifiers(parts[:len(parts)-1])
	return combination, true
}

// wheel returns this frame's wheel movement with sensitivity and inversion applied
func (mm *MousebindingManager) wheel() (float64, float64) {
	x, y := ebiten.Wheel()
	if mm.settings.WheelInverted {
		y = -y
	}
	return x * mm.settings.WheelSensitivity, y * mm.settings.WheelSensitivity
}

// isMouseActionTriggered checks if a mouse combination is triggered this frame
func (mm *MousebindingManager) isMouseActionTriggered(c MouseCombination) bool {
	if !mm.settings.EnableMouse || !modifiersMatch(c.Shift, c.Ctrl, c.Alt) {
		return false
	}

	switch {
	case c.IsWheel:
		x, y := mm.wheel()
		return c.WheelDeltaX*x > 0 || c.WheelDeltaY*y > 0
	case c.IsDoubleClick:
		return mm.checkDoubleClick(c.Button)
	default:
		return inpututil.IsMouseButtonJustPressed(c.Button)
	}
}

// checkDoubleClick checks if a double-click occurred for the given button
func (mm *MousebindingManager) checkDoubleClick(button ebiten.MouseButton) bool {
	if !inpututil.IsMouseButtonJustPressed(button) {
		return false
	}

	now := time.Now()
	tracker := &mm.doubleClickTracker
	window := time.Duration(mm.settings.DoubleClickTime) * time.Millisecond

	if tracker.lastClickButton == button && now.Sub(tracker.lastClickTime) <= window {
		tracker.clickCount++
	} else {
		tracker.clickCount = 1
		tracker.lastClickButton = button
	}
	tracker.lastClickTime = now

	if tracker.clickCount == 2 {
		tracker.clickCount = 0
		return true
	}
	return false
}

// CheckAction checks if any mouse binding for the given action is triggered
func (mm *MousebindingManager) CheckAction(action string) bool {
	for _, c := range mm.combinations[action] {
		if mm.isMouseActionTriggered(c) {
			return true
		}
	}
	return false
}

// ExecuteAction executes the given action using the InputActions interface
func (mm *MousebindingManager) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	if !mm.CheckAction(action) {
		return false
	}

	return globalActionExecutor.ExecuteAction(action, inputActions, inputState)
}

// GetMousebindings returns the current mouse bindings map (for display purposes)
func (mm *MousebindingManager) GetMousebindings() map[string][]string {
	return mm.mousebindings
}

// UpdateMousebindings replaces the bindings. Unknown actions are skipped.
func (mm *MousebindingManager) UpdateMousebindings(mousebindings map[string][]string) {
	mm.mousebindings = mousebindings
	mm.combinations = make(map[string][]MouseCombination, len(mousebindings))
	for action, mouseStrings := range mousebindings {
		for _, mouseStr := range mouseStrings {
			if c, ok := mm.parseMouseString(mouseStr); ok {
				mm.combinations[action] = append(mm.combinations[action], c)
			} else {
				debugLog("Ignoring unknown mouse action %q for action %s", mouseStr, action)
			}
		}
	}
}

func (mm *MousebindingManager) GetSettings() MouseSettings {
	return mm.settings
}

// GetDefaultMouseSettings returns the default mouse settings
func GetDefaultMouseSettings() MouseSettings {
	return MouseSettings{
		WheelSensitivity: 1.0,
		DoubleClickTime:  300,
		DragThreshold:    3,
		EnableMouse:      true,
		WheelInverted:    false,
		EnableDragPan:    true,
		DragSensitivity:  1.0,
	}
}
