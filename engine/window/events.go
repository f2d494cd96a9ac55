package window

// EventType identifies the kind of a window Event.
type EventType int

const (
	// EventQuit is delivered when the user asks the window to close.
	EventQuit EventType = iota

	// EventKeyDown is delivered on key press and key repeat.
	EventKeyDown

	// EventResized is delivered when the framebuffer size changes.
	EventResized
)

func (t EventType) String() string {
	switch t {
	case EventQuit:
		return "quit"
	case EventKeyDown:
		return "key_down"
	case EventResized:
		return "resized"
	default:
		return "unknown"
	}
}

// Event is a single window or input event drained by PollEvents.
type Event struct {
	Type EventType

	// Key is the virtual key code (see common.Key*) for EventKeyDown.
	Key uint32

	// Width and Height are the new framebuffer size in pixels for EventResized.
	Width  int
	Height int
}

// eventQueue collects events raised by platform callbacks between polls.
// Callbacks and draining both happen on the window's thread.
type eventQueue struct {
	events []Event
}

func (q *eventQueue) push(e Event) {
	q.events = append(q.events, e)
}

// drain returns all queued events in arrival order and empties the queue.
func (q *eventQueue) drain() []Event {
	if len(q.events) == 0 {
		return nil
	}
	out := q.events
	q.events = nil
	return out
}
