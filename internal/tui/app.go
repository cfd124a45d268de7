package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/text/message"

	"github.com/i474232898/city-weather/internal/autocomplete"
	"github.com/i474232898/city-weather/internal/display"
	"github.com/i474232898/city-weather/internal/i18n"
	"github.com/i474232898/city-weather/internal/lastcity"
	"github.com/i474232898/city-weather/internal/selection"
	"github.com/i474232898/city-weather/internal/weather"
)

// Options configures New.
type Options struct {
	Service  *weather.Service
	Cache    *lastcity.Cache
	Printer  *message.Printer
	Debounce time.Duration
	Display  []display.Option
}

// App owns the controllers and the Bubble Tea program.
type App struct {
	program *tea.Program
	bridge  *Bridge
	ac      *autocomplete.Controller
	disp    *display.Controller

	unsubscribe func()
}

// New builds the controllers and the program. Nothing runs until Run.
func New(ctx context.Context, opts Options) *App {
	if opts.Printer == nil {
		opts.Printer = i18n.NewPrinter("en")
	}
	bridge := NewBridge()
	sel := selection.New()

	dispOpts := append([]display.Option{display.WithPrinter(opts.Printer)}, opts.Display...)
	disp := display.New(opts.Service, opts.Cache, bridge, dispOpts...)

	acOpts := []autocomplete.Option{
		autocomplete.WithPrinter(opts.Printer),
		autocomplete.OnChange(bridge.Suggestions),
	}
	if opts.Debounce > 0 {
		acOpts = append(acOpts, autocomplete.WithDebounce(opts.Debounce))
	}
	ac := autocomplete.New(opts.Service, sel, acOpts...)

	unsubscribe := disp.Attach(ctx, sel)
	model := NewModel(ctx, ac, disp, sel, opts.Printer)

	return &App{
		program:     tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx)),
		bridge:      bridge,
		ac:          ac,
		disp:        disp,
		unsubscribe: unsubscribe,
	}
}

// Display returns the display controller, for the refresh scheduler.
func (a *App) Display() *display.Controller {
	return a.disp
}

// Run blocks until the user quits or ctx is cancelled.
func (a *App) Run() error {
	a.bridge.Start(a.program.Send)
	defer func() {
		a.unsubscribe()
		a.ac.Close()
		a.disp.Close()
		a.bridge.Stop()
	}()

	if _, err := a.program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
