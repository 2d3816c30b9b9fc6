package commands

import (
	tea "github.com/charmbracelet/bubbletea"

	"subpager/internal/ui/state"
)

// Executor handles command execution
type Executor struct {
	ctx *CommandContext
}

// NewExecutor creates a new command executor
func NewExecutor(state *state.AppState, posts Posts) *Executor {
	return &Executor{
		ctx: &CommandContext{
			State: state,
			Posts: posts,
		},
	}
}

// ExecuteShowCommunity creates and executes a show community command
func (e *Executor) ExecuteShowCommunity(name string) tea.Cmd {
	return NewShowCommunityCommand(e.ctx, name).Execute()
}

// ExecuteRefresh creates and executes a refresh command
func (e *Executor) ExecuteRefresh() tea.Cmd {
	return NewRefreshCommand(e.ctx).Execute()
}

// ExecuteRetry creates and executes a retry command
func (e *Executor) ExecuteRetry() tea.Cmd {
	return NewRetryCommand(e.ctx).Execute()
}

// ExecuteLoadAround creates and executes a load around command
func (e *Executor) ExecuteLoadAround(index int) tea.Cmd {
	return NewLoadAroundCommand(e.ctx, index).Execute()
}
