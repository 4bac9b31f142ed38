package input

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultHoldWindow keeps a key-repeat driven action held between repeats
// Terminals report presses only, so a hold is a press seen within the window
const DefaultHoldWindow = 150 * time.Millisecond

const intentBuffer = 32

// ControllerState is the polled gameplay input of one tick
type ControllerState struct {
	// MoveX is -1 (left), 0 or 1 (right)
	MoveX float32
	Fire  bool
}

// Controller turns key events from any presenter into polled state and one-shot intents
// Safe for concurrent use: presenters write from their event goroutine, the game polls
type Controller struct {
	mu         sync.Mutex
	keys       *KeyTable
	holdWindow time.Duration
	// expiry per held action; zero time means held until Release
	held    map[Action]time.Time
	intents chan Action
	now     func() time.Time

	haptic   atomic.Uint32
	onHaptic atomic.Pointer[func(float32)]
}

// NewController creates a controller using kt, DefaultKeyTable when nil
func NewController(kt *KeyTable, holdWindow time.Duration) *Controller {
	if kt == nil {
		kt = DefaultKeyTable()
	}
	if holdWindow <= 0 {
		holdWindow = DefaultHoldWindow
	}
	return &Controller{
		keys:       kt,
		holdWindow: holdWindow,
		held:       make(map[Action]time.Time),
		intents:    make(chan Action, intentBuffer),
		now:        time.Now,
	}
}

// KeyTable returns the active bindings
func (c *Controller) KeyTable() *KeyTable { return c.keys }

// HandleKey processes a named key press that has no matching release event
func (c *Controller) HandleKey(k Key) Action {
	a := c.keys.LookupKey(k)
	c.tap(a)
	return a
}

// HandleRune processes a rune press that has no matching release event
func (c *Controller) HandleRune(r rune) Action {
	a := c.keys.LookupRune(r)
	c.tap(a)
	return a
}

func (c *Controller) tap(a Action) {
	if a == ActionNone {
		return
	}
	if !a.IsHeld() {
		c.emit(a)
		return
	}
	c.mu.Lock()
	c.held[a] = c.now().Add(c.holdWindow)
	c.mu.Unlock()
}

// Press starts holding a (or emits it once for intent actions) until Release
func (c *Controller) Press(a Action) {
	if a == ActionNone {
		return
	}
	if !a.IsHeld() {
		c.emit(a)
		return
	}
	c.mu.Lock()
	c.held[a] = time.Time{}
	c.mu.Unlock()
}

// Release stops holding a
func (c *Controller) Release(a Action) {
	c.mu.Lock()
	delete(c.held, a)
	c.mu.Unlock()
}

// Held reports whether a is currently held
func (c *Controller) Held(a Action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heldLocked(a, c.now())
}

func (c *Controller) heldLocked(a Action, now time.Time) bool {
	expiry, ok := c.held[a]
	if !ok {
		return false
	}
	if !expiry.IsZero() && now.After(expiry) {
		delete(c.held, a)
		return false
	}
	return true
}

// State polls the gameplay state
func (c *Controller) State() ControllerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	var s ControllerState
	if c.heldLocked(ActionMoveLeft, now) {
		s.MoveX -= 1
	}
	if c.heldLocked(ActionMoveRight, now) {
		s.MoveX += 1
	}
	s.Fire = c.heldLocked(ActionFire, now)
	return s
}

// Intents delivers one-shot actions; events are dropped when the reader falls behind
func (c *Controller) Intents() <-chan Action { return c.intents }

func (c *Controller) emit(a Action) {
	select {
	case c.intents <- a:
	default:
	}
}

// SetHapticIntensity sets rumble strength in [0,1] and notifies the haptics sink
func (c *Controller) SetHapticIntensity(v float32) {
	if v < 0 {
		v = 0
	} else if v > 1 {
		v = 1
	}
	c.haptic.Store(math.Float32bits(v))
	if fn := c.onHaptic.Load(); fn != nil {
		(*fn)(v)
	}
}

// HapticIntensity returns the last intensity set
func (c *Controller) HapticIntensity() float32 {
	return math.Float32frombits(c.haptic.Load())
}

// OnHaptic installs a sink called on every intensity change, e.g. a presenter's screen shake
func (c *Controller) OnHaptic(fn func(float32)) {
	if fn == nil {
		c.onHaptic.Store(nil)
		return
	}
	c.onHaptic.Store(&fn)
}
