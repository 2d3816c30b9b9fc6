package commands

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"subpager/internal/ui/state"
)

// Command represents an executable action
type Command interface {
	Execute() tea.Cmd
}

// Posts is the part of the posts view-model commands drive
type Posts interface {
	ShowCommunity(name string) bool
	Refresh()
	Retry()
}

// CommandContext provides context for command execution
type CommandContext struct {
	State *state.AppState
	Posts Posts
}

// ShowCommunityCommand switches the screen to another community
type ShowCommunityCommand struct {
	ctx  *CommandContext
	name string
}

// NewShowCommunityCommand creates a new show community command
func NewShowCommunityCommand(ctx *CommandContext, name string) *ShowCommunityCommand {
	return &ShowCommunityCommand{
		ctx:  ctx,
		name: name,
	}
}

// Execute trims the name and ignores blank input. The list is cleared and
// scrolled to the top only when the community actually changed.
func (c *ShowCommunityCommand) Execute() tea.Cmd {
	name := strings.TrimSpace(c.name)
	if name == "" {
		return nil
	}
	if c.ctx.Posts.ShowCommunity(name) {
		c.ctx.State.ShowCommunity(name)
	}
	return nil
}

// RefreshCommand reloads the current community from its first page
type RefreshCommand struct {
	ctx *CommandContext
}

// NewRefreshCommand creates a new refresh command
func NewRefreshCommand(ctx *CommandContext) *RefreshCommand {
	return &RefreshCommand{ctx: ctx}
}

// Execute performs the refresh operation
func (c *RefreshCommand) Execute() tea.Cmd {
	c.ctx.Posts.Refresh()
	return nil
}

// RetryCommand re-runs the failed load of the current community
type RetryCommand struct {
	ctx *CommandContext
}

// NewRetryCommand creates a new retry command
func NewRetryCommand(ctx *CommandContext) *RetryCommand {
	return &RetryCommand{ctx: ctx}
}

// Execute performs the retry operation
func (c *RetryCommand) Execute() tea.Cmd {
	c.ctx.Posts.Retry()
	return nil
}

// LoadAroundCommand asks the shown page list for more posts near index
type LoadAroundCommand struct {
	ctx   *CommandContext
	index int
}

// NewLoadAroundCommand creates a new load around command
func NewLoadAroundCommand(ctx *CommandContext, index int) *LoadAroundCommand {
	return &LoadAroundCommand{ctx: ctx, index: index}
}

// Execute forwards the position to the page list
func (c *LoadAroundCommand) Execute() tea.Cmd {
	c.ctx.State.Posts.LoadAround(c.index)
	return nil
}
