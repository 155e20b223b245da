package main

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
}

// actionDefinitions contains all action definitions with default keybindings, mouse bindings, and descriptions
var actionDefinitions = []ActionDefinition{
	{"exit", []string{"KeyQ"}, []string{}, "Quit application"},
	{"help", []string{"Shift+Slash"}, []string{"Alt+RightClick"}, "Show/hide help"},
	{"info", []string{"KeyI"}, []string{}, "Show/hide image info"},
	{"next", []string{"ArrowRight"}, []string{"Forward"}, "Next image (hold to repeat)"},
	{"previous", []string{"ArrowLeft"}, []string{"Back"}, "Previous image (hold to repeat)"},
	{"jump_first", []string{"Home"}, []string{}, "Jump to first image"},
	{"jump_last", []string{"End"}, []string{}, "Jump to last image"},
	{"play", []string{"Space"}, []string{"MiddleClick"}, "Play/pause auto-play"},
	{"stop", []string{"KeyS"}, []string{}, "Stop auto-play and rewind"},
	{"cancel_loading", []string{"Escape"}, []string{}, "Cancel bulk loading"},
	{"fullscreen", []string{"Enter", "KeyF"}, []string{"DoubleLeftClick"}, "Toggle fullscreen"},
	{"cycle_sort", []string{"Shift+KeyS"}, []string{"Alt+MiddleClick"}, "Cycle sort method (Natural/Simple/Entry)"},

	// Transformations
	{"rotate_left", []string{"KeyL"}, []string{}, "Rotate 90 degrees counterclockwise"},
	{"rotate_right", []string{"KeyR"}, []string{}, "Rotate 90 degrees clockwise"},
	{"rotate_180", []string{"Shift+KeyR"}, []string{}, "Rotate 180 degrees"},
	{"rotate_custom", []string{"KeyA"}, []string{"Ctrl+LeftClick"}, "Rotate by a custom angle"},
	{"flip_horizontal", []string{"KeyH"}, []string{}, "Flip horizontally"},
	{"flip_vertical", []string{"KeyV"}, []string{}, "Flip vertically"},

	// Zoom and pan
	{"zoom_in", []string{"Equal", "Shift+Equal"}, []string{"WheelUp"}, "Zoom in (at cursor with the wheel)"},
	{"zoom_out", []string{"Minus"}, []string{"WheelDown"}, "Zoom out (at cursor with the wheel)"},
	{"zoom_reset", []string{"Key0"}, []string{"RightClick"}, "Show the whole image"},
	{"pan_up", []string{"ArrowUp"}, []string{}, "Pan up"},
	{"pan_down", []string{"ArrowDown"}, []string{}, "Pan down"},
	{"pan_left", []string{"Shift+ArrowLeft"}, []string{}, "Pan left"},
	{"pan_right", []string{"Shift+ArrowRight"}, []string{}, "Pan right"},
}

// cursorActions are mouse actions that act at the cursor position and are
// dispatched by the input handler instead of the executor.
var cursorActions = map[string]bool{
	"zoom_in":  true,
	"zoom_out": true,
}

// ActionExecutor maps action names to InputActions calls for both the
// keyboard and the mouse
type ActionExecutor struct{}

func NewActionExecutor() *ActionExecutor {
	return &ActionExecutor{}
}

// ExecuteAction executes the given action using the InputActions interface
func (ae *ActionExecutor) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	switch action {
	case "exit":
		inputActions.Exit()
	case "help":
		inputActions.ToggleHelp()
	case "info":
		inputActions.ToggleInfo()
	case "next":
		inputActions.NavigateNext()
	case "previous":
		inputActions.NavigatePrevious()
	case "jump_first":
		inputActions.NavigateFirst()
	case "jump_last":
		inputActions.NavigateLast()
	case "play":
		inputActions.TogglePlay()
	case "stop":
		inputActions.StopPlayback()
	case "cancel_loading":
		inputActions.CancelLoading()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "cycle_sort":
		inputActions.CycleSortMethod()

	case "rotate_left":
		inputActions.RotateLeft()
	case "rotate_right":
		inputActions.RotateRight()
	case "rotate_180":
		inputActions.Rotate180()
	case "rotate_custom":
		if !inputState.IsInAngleInputMode() {
			inputActions.EnterAngleInputMode()
		}
	case "flip_horizontal":
		inputActions.FlipHorizontal()
	case "flip_vertical":
		inputActions.FlipVertical()

	case "zoom_in":
		inputActions.ZoomIn()
	case "zoom_out":
		inputActions.ZoomOut()
	case "zoom_reset":
		inputActions.ZoomReset()
	case "pan_up":
		inputActions.PanUp()
	case "pan_down":
		inputActions.PanDown()
	case "pan_left":
		inputActions.PanLeft()
	case "pan_right":
		inputActions.PanRight()

	default:
		return false
	}

	return true
}

// globalActionExecutor is shared by the keyboard and mouse binding managers
var globalActionExecutor = NewActionExecutor()

// GetActionNames returns every action name in table order
func GetActionNames() []string {
	names := make([]string, 0, len(actionDefinitions))
	for _, action := range actionDefinitions {
		names = append(names, action.Name)
	}
	return names
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = action.Keys
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = action.MouseActions
	}
	return mousebindings
}
