package handlers

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"subpager/internal/domain"
	"subpager/internal/eventbus"
	"subpager/internal/logging"
	"subpager/internal/ui/state"
)

// StatusTimeout is how long a status message stays in the footer
const StatusTimeout = 3 * time.Second

// ClearStatusMsg clears the status message it was issued for
type ClearStatusMsg struct {
	Seq int
}

// EventHandler handles domain events and updates state
type EventHandler struct {
	state *state.AppState
	seq   int
	log   *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(appState *state.AppState) *EventHandler {
	return &EventHandler{
		state: appState,
		log:   logging.L(logging.CatUI),
	}
}

// HandleEvent processes domain events and returns any necessary commands
func (h *EventHandler) HandleEvent(event eventbus.DomainEvent) tea.Cmd {
	switch e := event.(type) {
	case eventbus.ErrorEvent:
		h.log.Warn("error event", zap.String("message", e.Message), zap.Error(e.Err))
		return h.SetStatus(fmt.Sprintf("Error: %s", e.Message))

	case eventbus.NetworkStateChangedEvent:
		// events from a community no longer shown are stale
		if e.Community != h.state.Community {
			return nil
		}
		if e.Scope == domain.ScopeRefresh && e.State.IsFailed() {
			return h.SetStatus(fmt.Sprintf("Refresh failed: %s", e.State.Msg))
		}

	case eventbus.ListingCreatedEvent:
		h.log.Debug("listing created",
			zap.String("community", e.Community),
			zap.String("backend", e.Backend))

	case eventbus.ConfigSavedEvent:
		h.log.Debug("session state saved")
	}

	return nil
}

// SetStatus shows msg in the footer and returns the command clearing it
func (h *EventHandler) SetStatus(msg string) tea.Cmd {
	h.seq++
	seq := h.seq
	h.state.StatusMessage = msg
	return tea.Tick(StatusTimeout, func(time.Time) tea.Msg {
		return ClearStatusMsg{Seq: seq}
	})
}

// ClearStatus clears the footer unless a newer message replaced the one msg
// was issued for.
func (h *EventHandler) ClearStatus(msg ClearStatusMsg) {
	if msg.Seq == h.seq {
		h.state.StatusMessage = ""
	}
}
