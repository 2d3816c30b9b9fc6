package viewmodels

import (
	"github.com/charmbracelet/bubbles/textinput"

	"subpager/internal/config"
	"subpager/internal/ui/state"
	"subpager/internal/ui/views"
)

// ViewModel transforms application state into view-ready data
type ViewModel struct {
	state            *state.AppState
	ui               config.UISettings
	width            int
	height           int
	spinner          string
	inputTransformer *InputTransformer
}

// NewViewModel creates a new view model
func NewViewModel(appState *state.AppState, ui config.UISettings, textInput textinput.Model) *ViewModel {
	return &ViewModel{
		state:            appState,
		ui:               ui,
		inputTransformer: NewInputTransformer(textInput),
	}
}

// SetDimensions sets the current terminal dimensions
func (vm *ViewModel) SetDimensions(width, height int) {
	vm.width = width
	vm.height = height
}

// SetSpinner sets the spinner frame shown next to running loads
func (vm *ViewModel) SetSpinner(frame string) {
	vm.spinner = frame
}

// SetInputMode sets the current input mode
func (vm *ViewModel) SetInputMode(mode InputMode) {
	vm.inputTransformer.SetMode(mode)
}

// UpdateTextInput updates the text input model
func (vm *ViewModel) UpdateTextInput(textInput textinput.Model) {
	vm.inputTransformer.textInput = textInput
}

// BuildViewState creates a ViewState for rendering
func (vm *ViewModel) BuildViewState() views.ViewState {
	vs := views.ViewState{
		Width:            vm.width,
		Height:           vm.height,
		Community:        vm.state.Community,
		Network:          vm.state.Network,
		Refresh:          vm.state.Refresh,
		SelectedIndex:    vm.state.SelectedIndex,
		ViewportOffset:   vm.state.ViewportOffset,
		ViewportHeight:   vm.state.ViewportHeight,
		ShowHelp:         vm.state.ShowHelp,
		HelpScrollOffset: vm.state.HelpScrollOffset,
		StatusMessage:    vm.state.StatusMessage,
		ShowScore:        vm.ui.ShowScore,
		Spinner:          vm.spinner,
		TextInput:        vm.inputTransformer.GetInputText(),
		InputMode:        vm.inputTransformer.GetInputModeString(),
	}
	if p := vm.state.Posts; p != nil {
		vs.Posts = p.Posts
		vs.EndReached = p.EndReached
	}
	return vs
}
