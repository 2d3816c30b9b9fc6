package handlers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"subpager/internal/domain"
	"subpager/internal/eventbus"
	"subpager/internal/ui/state"
)

func TestHandleEvent_ErrorSetsStatus(t *testing.T) {
	s := state.NewAppState()
	h := NewEventHandler(s)

	cmd := h.HandleEvent(eventbus.ErrorEvent{Message: "boom", Err: errors.New("x")})
	assert.NotNil(t, cmd)
	assert.Equal(t, "Error: boom", s.StatusMessage)
}

func TestHandleEvent_RefreshFailure(t *testing.T) {
	s := state.NewAppState()
	s.ShowCommunity("pics")
	h := NewEventHandler(s)

	h.HandleEvent(eventbus.NetworkStateChangedEvent{
		Community: "androiddev",
		Scope:     domain.ScopeRefresh,
		State:     domain.NetworkError("stale"),
	})
	assert.Empty(t, s.StatusMessage, "other communities are ignored")

	h.HandleEvent(eventbus.NetworkStateChangedEvent{
		Community: "pics",
		Scope:     domain.ScopeNetwork,
		State:     domain.NetworkError("page"),
	})
	assert.Empty(t, s.StatusMessage, "page failures show in the list")

	cmd := h.HandleEvent(eventbus.NetworkStateChangedEvent{
		Community: "pics",
		Scope:     domain.ScopeRefresh,
		State:     domain.NetworkError("timeout"),
	})
	assert.NotNil(t, cmd)
	assert.Equal(t, "Refresh failed: timeout", s.StatusMessage)
}

func TestClearStatus_OnlyLatest(t *testing.T) {
	s := state.NewAppState()
	h := NewEventHandler(s)

	h.SetStatus("first")
	first := h.seq
	h.SetStatus("second")

	h.ClearStatus(ClearStatusMsg{Seq: first})
	assert.Equal(t, "second", s.StatusMessage)

	h.ClearStatus(ClearStatusMsg{Seq: h.seq})
	assert.Empty(t, s.StatusMessage)
}
