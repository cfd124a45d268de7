package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/city-weather/internal/weather"
)

var paris = weather.CityCandidate{Latitude: 48.85, Longitude: 2.35, DisplayName: "Paris"}

func TestSelectNotifiesOnce(t *testing.T) {
	s := New()
	var got []Event
	s.Subscribe(func(ev Event) { got = append(got, ev) })

	s.Select(paris, "Paris, France")

	require.Len(t, got, 1)
	assert.Equal(t, "Paris", got[0].City.DisplayName)
	assert.Equal(t, "Paris, France", got[0].Label)

	cur, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, got[0], cur)
}

func TestClear(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func(Event) { calls++ })

	s.Select(paris, "Paris")
	s.Clear()

	_, ok := s.Current()
	assert.False(t, ok)
	assert.Equal(t, 1, calls)
}

func TestUnsubscribe(t *testing.T) {
	s := New()
	var order []string
	unsubA := s.Subscribe(func(Event) { order = append(order, "a") })
	s.Subscribe(func(Event) { order = append(order, "b") })

	s.Select(paris, "Paris")
	unsubA()
	unsubA()
	s.Select(paris, "Paris")

	assert.Equal(t, []string{"a", "b", "b"}, order)
}
