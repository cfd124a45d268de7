// Package selection holds the currently selected city and notifies
// subscribers when a new one is committed. It is the only coupling between
// the autocomplete and display controllers.
package selection

import (
	"sync"

	"github.com/i474232898/city-weather/internal/weather"
)

// Event is delivered to subscribers on every Select.
type Event struct {
	City weather.CityCandidate
	// Label is the formatted text the city was picked with.
	Label string
}

// Listener receives selection events. Listeners run synchronously on the
// goroutine that called Select, in subscription order.
type Listener func(Event)

// Selection owns the selected candidate.
type Selection struct {
	mu        sync.RWMutex
	current   *Event
	nextID    int
	listeners map[int]Listener
	order     []int
}

// New returns an empty Selection.
func New() *Selection {
	return &Selection{listeners: make(map[int]Listener)}
}

// Select stores city as the current selection and notifies every listener
// once.
func (s *Selection) Select(city weather.CityCandidate, label string) {
	ev := Event{City: city, Label: label}

	s.mu.Lock()
	s.current = &ev
	listeners := make([]Listener, 0, len(s.order))
	for _, id := range s.order {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.Unlock()

	for _, l := range listeners {
		l(ev)
	}
}

// Current returns the current selection, if any.
func (s *Selection) Current() (Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return Event{}, false
	}
	return *s.current, true
}

// Clear forgets the current selection without notifying anyone.
func (s *Selection) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = nil
}

// Subscribe registers l and returns a function that removes it.
func (s *Selection) Subscribe(l Listener) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = l
	s.order = append(s.order, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.listeners, id)
			for i, v := range s.order {
				if v == id {
					s.order = append(s.order[:i], s.order[i+1:]...)
					break
				}
			}
		})
	}
}
