package input

import "sort"

// Action is a game-level input meaning, independent of the key that produced it
type Action uint8

const (
	ActionNone Action = iota
	ActionMoveLeft
	ActionMoveRight
	ActionFire
	ActionQuit
	ActionRestart
	ActionToggleMute
	ActionTogglePause
	ActionCameraForward
	ActionCameraBack
	ActionCameraLeft
	ActionCameraRight
	ActionCameraUp
	ActionCameraDown
	ActionCameraYawLeft
	ActionCameraYawRight
	ActionCameraPitchUp
	ActionCameraPitchDown
	ActionBrightnessUp
	ActionBrightnessDown
)

// IsHeld reports whether the action is a continuous hold rather than a one-shot intent
func (a Action) IsHeld() bool {
	switch a {
	case ActionMoveLeft, ActionMoveRight, ActionFire:
		return true
	}
	return false
}

// actionRegistry maps canonical action names to actions
// Used by the keymap loader to resolve TOML action strings
var actionRegistry = map[string]Action{
	// Unbind sentinel
	"none": ActionNone,

	"move_left":  ActionMoveLeft,
	"move_right": ActionMoveRight,
	"fire":       ActionFire,

	"quit":         ActionQuit,
	"restart":      ActionRestart,
	"toggle_mute":  ActionToggleMute,
	"toggle_pause": ActionTogglePause,

	"camera_forward":    ActionCameraForward,
	"camera_back":       ActionCameraBack,
	"camera_left":       ActionCameraLeft,
	"camera_right":      ActionCameraRight,
	"camera_up":         ActionCameraUp,
	"camera_down":       ActionCameraDown,
	"camera_yaw_left":   ActionCameraYawLeft,
	"camera_yaw_right":  ActionCameraYawRight,
	"camera_pitch_up":   ActionCameraPitchUp,
	"camera_pitch_down": ActionCameraPitchDown,

	"brightness_up":   ActionBrightnessUp,
	"brightness_down": ActionBrightnessDown,
}

// ActionByName resolves a canonical action name
func ActionByName(name string) (Action, bool) {
	a, ok := actionRegistry[name]
	return a, ok
}

// ActionNames returns all registered action names, sorted
func ActionNames() []string {
	names := make([]string, 0, len(actionRegistry))
	for name := range actionRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (a Action) String() string {
	for name, v := range actionRegistry {
		if v == a && (a != ActionNone || name == "none") {
			return name
		}
	}
	return "unknown"
}
