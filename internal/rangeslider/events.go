package rangeslider

import (
	"sort"
	"sync"
)

type EventType string

const (
	MouseDown  EventType = "mousedown"
	MouseMove  EventType = "mousemove"
	MouseUp    EventType = "mouseup"
	TouchStart EventType = "touchstart"
	TouchMove  EventType = "touchmove"
	TouchEnd   EventType = "touchend"
)

type Touch struct {
	ClientX float64
}

type Event struct {
	Type    EventType
	ClientX float64
	Touches []Touch
}

// PointerX returns the horizontal pointer coordinate carried by the event.
// Touch events use the first active touch; ok is false when there is none.
func (e Event) PointerX() (x float64, ok bool) {
	switch e.Type {
	case TouchStart, TouchMove, TouchEnd:
		if len(e.Touches) == 0 {
			return 0, false
		}
		return e.Touches[0].ClientX, true
	default:
		return e.ClientX, true
	}
}

type Listener func(Event)

// EventTarget is the document-scope surface a slider captures the pointer on.
// The returned func detaches exactly the listener that was added.
type EventTarget interface {
	AddEventListener(eventType EventType, listener Listener) (remove func())
}

// Document is an in-memory EventTarget. Dispatch is synchronous and
// listeners added or removed during a dispatch take effect on the next one.
type Document struct {
	mu        sync.Mutex
	nextID    int
	listeners map[EventType]map[int]Listener
}

func NewDocument() *Document {
	return &Document{listeners: make(map[EventType]map[int]Listener)}
}

func (d *Document) AddEventListener(eventType EventType, listener Listener) func() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextID++
	id := d.nextID
	if d.listeners[eventType] == nil {
		d.listeners[eventType] = make(map[int]Listener)
	}
	d.listeners[eventType][id] = listener

	var once sync.Once
	return func() {
		once.Do(func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.listeners[eventType], id)
		})
	}
}

func (d *Document) Dispatch(event Event) {
	d.mu.Lock()
	registered := d.listeners[event.Type]
	ids := make([]int, 0, len(registered))
	for id := range registered {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	snapshot := make([]Listener, 0, len(ids))
	for _, id := range ids {
		snapshot = append(snapshot, registered[id])
	}
	d.mu.Unlock()

	for _, l := range snapshot {
		l(event)
	}
}

func (d *Document) ListenerCount(eventType EventType) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[eventType])
}

// TotalListeners counts listeners across all event types.
func (d *Document) TotalListeners() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, m := range d.listeners {
		n += len(m)
	}
	return n
}
