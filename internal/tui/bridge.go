package tui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/i474232898/city-weather/internal/autocomplete"
	"github.com/i474232898/city-weather/internal/display"
	"github.com/i474232898/city-weather/internal/weather"
)

// Messages the controllers send into the program.
type (
	suggestionsMsg autocomplete.Snapshot
	loadingMsg     bool
	resultMsg      struct{}
	busyMsg        struct {
		busy  bool
		label string
	}
	cardMsg  display.Card
	errorMsg struct {
		city      string
		condition string
	}
	themeMsg    weather.Theme
	announceMsg string
)

// Bridge implements display.View and the autocomplete change callback by
// queueing messages for the Bubble Tea program. Callers never block, even
// when they run inside Update, and messages keep their order.
type Bridge struct {
	mu    sync.Mutex
	queue []tea.Msg
	wake  chan struct{}
	done  chan struct{}
	stop  sync.Once
}

// NewBridge returns a Bridge that buffers until Start is called.
func NewBridge() *Bridge {
	return &Bridge{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Start delivers queued and future messages with send, usually
// (*tea.Program).Send, on a dedicated goroutine.
func (b *Bridge) Start(send func(tea.Msg)) {
	go func() {
		for {
			select {
			case <-b.done:
				return
			case <-b.wake:
			}
			for _, msg := range b.drain() {
				send(msg)
			}
		}
	}()
	b.signal()
}

// Stop ends delivery. Messages still queued are dropped.
func (b *Bridge) Stop() {
	b.stop.Do(func() { close(b.done) })
}

func (b *Bridge) push(msg tea.Msg) {
	b.mu.Lock()
	b.queue = append(b.queue, msg)
	b.mu.Unlock()
	b.signal()
}

func (b *Bridge) signal() {
	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bridge) drain() []tea.Msg {
	b.mu.Lock()
	defer b.mu.Unlock()
	batch := b.queue
	b.queue = nil
	return batch
}

// Suggestions is the autocomplete OnChange callback.
func (b *Bridge) Suggestions(s autocomplete.Snapshot) { b.push(suggestionsMsg(s)) }

func (b *Bridge) ShowLoading(on bool) { b.push(loadingMsg(on)) }

func (b *Bridge) ShowResult() { b.push(resultMsg{}) }

func (b *Bridge) SetBusy(busy bool, label string) { b.push(busyMsg{busy: busy, label: label}) }

func (b *Bridge) Render(card display.Card) { b.push(cardMsg(card)) }

func (b *Bridge) RenderError(city, condition string) {
	b.push(errorMsg{city: city, condition: condition})
}

func (b *Bridge) ApplyTheme(theme weather.Theme) { b.push(themeMsg(theme)) }

func (b *Bridge) Announce(text string) { b.push(announceMsg(text)) }
