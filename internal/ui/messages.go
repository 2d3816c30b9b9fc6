package ui

import (
	"subpager/internal/eventbus"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// dispatchMsg carries listing callbacks that must run on the UI goroutine
type dispatchMsg struct {
	batch []func()
}

// postPagerMsg contains the result of showing a post in the pager
type postPagerMsg struct {
	name string
	err  error
}

// helpPagerMsg contains the result of a help pager command
type helpPagerMsg struct {
	err error
}

// quitMsg signals that the application should quit
type quitMsg struct {
	saveState bool
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
