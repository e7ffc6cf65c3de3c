package input

// EventKind identifies the variant carried by an Event.
type EventKind int

const (
	EventMouseMove EventKind = iota
	EventMouseDown
	EventMouseUp
	EventKeyDown
	EventKeyUp
	EventScroll
)

// WheelDelta is the scroll delta of one wheel notch. Window backends scale their native scroll
// offsets to it so handlers see the same units on every platform.
const WheelDelta = 120

// String returns the name of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventMouseMove:
		return "mouse_move"
	case EventMouseDown:
		return "mouse_down"
	case EventMouseUp:
		return "mouse_up"
	case EventKeyDown:
		return "key_down"
	case EventKeyUp:
		return "key_up"
	case EventScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// Event is a discrete input event. Only the fields relevant to Kind are set: X and Y for mouse
// events, Button for mouse down/up, Key for key events and Delta for scroll.
type Event struct {
	Kind   EventKind
	X, Y   int32
	Button int
	Key    uint32
	Delta  float32
}

// MouseMove creates a mouse move event at the given cursor position.
func MouseMove(x, y int32) Event {
	return Event{Kind: EventMouseMove, X: x, Y: y}
}

// MouseDown creates a button press event at the given cursor position.
func MouseDown(button int, x, y int32) Event {
	return Event{Kind: EventMouseDown, Button: button, X: x, Y: y}
}

// MouseUp creates a button release event at the given cursor position.
func MouseUp(button int, x, y int32) Event {
	return Event{Kind: EventMouseUp, Button: button, X: x, Y: y}
}

// KeyDown creates a key press event.
func KeyDown(key uint32) Event {
	return Event{Kind: EventKeyDown, Key: key}
}

// KeyUp creates a key release event.
func KeyUp(key uint32) Event {
	return Event{Kind: EventKeyUp, Key: key}
}

// Scroll creates a scroll event. Positive deltas scroll up, in WheelDelta units per notch.
func Scroll(delta float32) Event {
	return Event{Kind: EventScroll, Delta: delta}
}
