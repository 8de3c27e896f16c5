// Package display provides a small fyne application framework for the
// emulator windows. Each window hosts a View; a frame ticker feeds
// every view a stream of events to render from, and a quit event is
// broadcast when the application shuts down.
package display

import (
	"time"

	"fyne.io/fyne/v2"
)

// EventType discriminates the events delivered to a View.
type EventType int

const (
	// EventTypeQuit tells a view the application is shutting down.
	EventTypeQuit EventType = iota
	// EventTypeFrame tells a view to redraw itself.
	EventTypeFrame
)

// Event is a message broadcast to every view.
type Event struct {
	Type EventType
}

// View is a window's content and behavior. Setup builds the widget
// tree into the window before the application starts; Run consumes
// events until a quit event arrives or the channel closes.
type View interface {
	Setup(window fyne.Window) error
	Run(events <-chan Event) error
}

type window struct {
	fyne.Window
	view   View
	events chan Event
}

// Application owns the fyne app and the windows it shows.
type Application struct {
	app     fyne.App
	windows []*window
}

// NewApplication wraps the given fyne app.
func NewApplication(a fyne.App) *Application {
	return &Application{app: a}
}

// NewWindow creates a window with the given title, hosting view.
func (a *Application) NewWindow(title string, view View) fyne.Window {
	w := a.app.NewWindow(title)
	a.windows = append(a.windows, &window{
		Window: w,
		view:   view,
		events: make(chan Event, 1),
	})
	return w
}

// Run sets up every window, starts each view on its own goroutine and
// broadcasts a frame event every frameTime. It blocks until the
// application is closed, then broadcasts a quit event to the views.
func (a *Application) Run(frameTime time.Duration) error {
	for _, win := range a.windows {
		if err := win.view.Setup(win.Window); err != nil {
			return err
		}
		win.Show()
		go func(w *window) {
			if err := w.view.Run(w.events); err != nil {
				fyne.LogError("view stopped", err)
			}
		}(win)
	}

	t := time.NewTicker(frameTime)
	defer t.Stop()
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-t.C:
				a.broadcast(Event{Type: EventTypeFrame})
			case <-done:
				return
			}
		}
	}()

	a.app.Run()
	close(done)
	a.broadcast(Event{Type: EventTypeQuit})
	return nil
}

// broadcast delivers e to every window, dropping it for views that
// have not drained their previous event.
func (a *Application) broadcast(e Event) {
	for _, w := range a.windows {
		select {
		case w.events <- e:
		default:
		}
	}
}
