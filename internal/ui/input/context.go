package input

import (
	"subpager/internal/ui/state"
)

// ModelContext implements the Context interface for the input handler
type ModelContext struct {
	State *state.AppState
}

// CurrentIndex returns the current selected index
func (c *ModelContext) CurrentIndex() int {
	return c.State.SelectedIndex
}

// TotalItems returns the number of rows, counting the load-state row
func (c *ModelContext) TotalItems() int {
	return c.State.TotalRows()
}

// HasPost reports whether the selection is on a post
func (c *ModelContext) HasPost() bool {
	_, ok := c.State.SelectedPost()
	return ok
}

// NetworkFailed reports whether the last load failed
func (c *ModelContext) NetworkFailed() bool {
	return c.State.Network.IsFailed()
}

// OnStatusRow reports whether the selection is on the load-state row
func (c *ModelContext) OnStatusRow() bool {
	return c.State.HasStatusRow() && c.State.SelectedIndex == c.State.PostCount()
}
