package input

// Key is a backend-neutral named key; presenters translate their native codes
type Key uint8

const (
	KeyNone Key = iota
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyEnter
	KeyEscape
	KeyCtrlC
	KeyCtrlQ
	KeyPageUp
	KeyPageDown
	KeyTab
)

var keyNames = map[string]Key{
	"left":     KeyLeft,
	"right":    KeyRight,
	"up":       KeyUp,
	"down":     KeyDown,
	"enter":    KeyEnter,
	"escape":   KeyEscape,
	"esc":      KeyEscape,
	"ctrl_c":   KeyCtrlC,
	"ctrl_q":   KeyCtrlQ,
	"pageup":   KeyPageUp,
	"pagedown": KeyPageDown,
	"tab":      KeyTab,
}

// KeyByName resolves a lowercase key name
func KeyByName(name string) (Key, bool) {
	k, ok := keyNames[name]
	return k, ok
}

// KeyTable maps keys to actions
type KeyTable struct {
	// Named keys (arrows, Ctrl+*, Esc)
	Keys map[Key]Action
	// Printable runes
	Runes map[rune]Action
}

// DefaultKeyTable returns the default key bindings
func DefaultKeyTable() *KeyTable {
	return &KeyTable{
		Keys: map[Key]Action{
			KeyLeft:     ActionMoveLeft,
			KeyRight:    ActionMoveRight,
			KeyUp:       ActionFire,
			KeyEnter:    ActionRestart,
			KeyEscape:   ActionQuit,
			KeyCtrlC:    ActionQuit,
			KeyCtrlQ:    ActionQuit,
			KeyPageUp:   ActionBrightnessUp,
			KeyPageDown: ActionBrightnessDown,
		},
		Runes: map[rune]Action{
			'h': ActionMoveLeft,
			'a': ActionMoveLeft,
			'l': ActionMoveRight,
			'd': ActionMoveRight,
			' ': ActionFire,
			'k': ActionFire,
			'r': ActionRestart,
			'm': ActionToggleMute,
			'p': ActionTogglePause,
			'q': ActionQuit,
			'w': ActionCameraForward,
			's': ActionCameraBack,
			'z': ActionCameraLeft,
			'x': ActionCameraRight,
			'e': ActionCameraUp,
			'c': ActionCameraDown,
			'j': ActionCameraYawLeft,
			';': ActionCameraYawRight,
			'i': ActionCameraPitchUp,
			'o': ActionCameraPitchDown,
		},
	}
}

// LookupKey returns the action bound to a named key
func (kt *KeyTable) LookupKey(k Key) Action { return kt.Keys[k] }

// LookupRune returns the action bound to a rune
func (kt *KeyTable) LookupRune(r rune) Action { return kt.Runes[r] }

// Clone returns a deep copy of the KeyTable with independent maps
func (kt *KeyTable) Clone() *KeyTable {
	c := &KeyTable{
		Keys:  make(map[Key]Action, len(kt.Keys)),
		Runes: make(map[rune]Action, len(kt.Runes)),
	}
	for k, v := range kt.Keys {
		c.Keys[k] = v
	}
	for k, v := range kt.Runes {
		c.Runes[k] = v
	}
	return c
}
