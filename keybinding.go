package main

import (
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// KeybindingManager resolves key strings like "Shift+KeyR" and checks them
// against the current frame's keyboard state
type KeybindingManager struct {
	keybindings  map[string][]string
	keyMapping   map[string]ebiten.Key
	combinations map[string][]KeyCombination
}

func NewKeybindingManager(keybindings map[string][]string) *KeybindingManager {
	km := &KeybindingManager{keyMapping: getKeyMapping()}
	km.UpdateKeybindings(keybindings)
	return km
}

// getKeyMapping returns a mapping from string keys to Ebiten keys
func getKeyMapping() map[string]ebiten.Key {
	keys := map[string]ebiten.Key{
		"Space":      ebiten.KeySpace,
		"Backspace":  ebiten.KeyBackspace,
		"Enter":      ebiten.KeyEnter,
		"Escape":     ebiten.KeyEscape,
		"Tab":        ebiten.KeyTab,
		"Home":       ebiten.KeyHome,
		"End":        ebiten.KeyEnd,
		"PageUp":     ebiten.KeyPageUp,
		"PageDown":   ebiten.KeyPageDown,
		"ArrowUp":    ebiten.KeyArrowUp,
		"ArrowDown":  ebiten.KeyArrowDown,
		"ArrowLeft":  ebiten.KeyArrowLeft,
		"ArrowRight": ebiten.KeyArrowRight,

		"Comma":     ebiten.KeyComma,
		"Period":    ebiten.KeyPeriod,
		"Slash":     ebiten.KeySlash,
		"Semicolon": ebiten.KeySemicolon,
		"Quote":     ebiten.KeyQuote,
		"Minus":     ebiten.KeyMinus,
		"Equal":     ebiten.KeyEqual,

		"NumpadEnter":    ebiten.KeyNumpadEnter,
		"NumpadAdd":      ebiten.KeyNumpadAdd,
		"NumpadSubtract": ebiten.KeyNumpadSubtract,
	}

	for i := 0; i < 26; i++ {
		keys["Key"+string(rune('A'+i))] = ebiten.KeyA + ebiten.Key(i)
	}
	for i := 0; i < 10; i++ {
		keys["Key"+string(rune('0'+i))] = ebiten.Key0 + ebiten.Key(i)
		keys["Numpad"+string(rune('0'+i))] = ebiten.KeyNumpad0 + ebiten.Key(i)
	}
	return keys
}

// KeyCombination represents a key with optional modifiers
type KeyCombination struct {
	Key   ebiten.Key
	Shift bool
	Ctrl  bool
	Alt   bool
}

// parseModifiers applies "Shift", "Ctrl" and "Alt" prefixes.
func parseModifiers(parts []string) (shift, ctrl, alt bool) {
	for _, part := range parts {
		switch strings.ToLower(part) {
		case "shift":
			shift = true
		case "ctrl":
			ctrl = true
		case "alt":
			alt = true
		}
	}
	return shift, ctrl, alt
}

// modifiersMatch requires exactly the wanted modifiers to be held.
func modifiersMatch(shift, ctrl, alt bool) bool {
	return shift == ebiten.IsKeyPressed(ebiten.KeyShift) &&
		ctrl == ebiten.IsKeyPressed(ebiten.KeyControl) &&
		alt == ebiten.IsKeyPressed(ebiten.KeyAlt)
}

// parseKeyString parses a key string like "Shift+KeyB" into a KeyCombination
func (km *KeybindingManager) parseKeyString(keyStr string) (KeyCombination, bool) {
	parts := strings.Split(keyStr, "+")
	key, exists := km.keyMapping[parts[len(parts)-1]]
	if !exists {
		return KeyCombination{}, false
	}

	combination := KeyCombination{Key: key}
	combination.Shift, combination.Ctrl, combination.Alt = parseModifiers(parts[:len(parts)-1])
	return combination, true
}

// CheckAction reports whether a binding of action was pressed this frame
func (km *KeybindingManager) CheckAction(action string) bool {
	for _, c := range km.combinations[action] {
		if inpututil.IsKeyJustPressed(c.Key) && modifiersMatch(c.Shift, c.Ctrl, c.Alt) {
			return true
		}
	}
	return false
}

// CheckActionReleased reports whether the key of any binding of action was
// released this frame. Modifiers are ignored so a held key always ends.
func (km *KeybindingManager) CheckActionReleased(action string) bool {
	for _, c := range km.combinations[action] {
		if inpututil.IsKeyJustReleased(c.Key) {
			return true
		}
	}
	return false
}

// ExecuteAction executes the given action if one of its keys was pressed
func (km *KeybindingManager) ExecuteAction(action string, inputActions InputActions, inputState InputState) bool {
	if !km.CheckAction(action) {
		return false
	}

	return globalActionExecutor.ExecuteAction(action, inputActions, inputState)
}

// GetKeybindings returns the current keybindings map (for display purposes)
func (km *KeybindingManager) GetKeybindings() map[string][]string {
	return km.keybindings
}

// UpdateKeybindings replaces the bindings. Unknown keys are skipped.
func (km *KeybindingManager) UpdateKeybindings(keybindings map[string][]string) {
	km.keybindings = keybindings
	km.combinations = make(map[string][]KeyCombination, len(keybindings))
	for action, keyStrings := range keybindings {
		for _, keyStr := range keyStrings {
			if c, ok := km.parseKeyString(keyStr); ok {
				km.combinations[action] = append(km.combinations[action], c)
			} else {
				debugLog("Ignoring unknown key %q for action %s", keyStr, action)
			}
		}
	}
}
