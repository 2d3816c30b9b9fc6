package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"subpager/internal/config"
	"subpager/internal/domain"
	"subpager/internal/eventbus"
	"subpager/internal/listing"
	"subpager/internal/live"
	"subpager/internal/logging"
	"subpager/internal/ui/commands"
	"subpager/internal/ui/handlers"
	"subpager/internal/ui/input"
	inputtypes "subpager/internal/ui/input/types"
	"subpager/internal/ui/logic"
	"subpager/internal/ui/state"
	"subpager/internal/ui/viewmodels"
	"subpager/internal/ui/views"
)

// reservedLines are the rows not available to the post list: container
// padding, title, input line and footer.
const reservedLines = 7

// Options are the collaborators of the UI model
type Options struct {
	Posts     *viewmodels.PostsViewModel
	Queue     *live.Queue         // the dispatcher the listing provider posts through
	Bus       eventbus.EventBus   // may be nil
	Session   config.StateService // may be nil, nothing is saved then
	UI        config.UISettings
	Community string // shown on start, empty shows the prompt hint
	Pager     Pager  // defaults to the ov pager
}

// Model represents the application state
type Model struct {
	bus     eventbus.EventBus
	session config.StateService
	ui      config.UISettings
	state   *state.AppState
	posts   *viewmodels.PostsViewModel
	queue   *live.Queue
	initial string
	log     *zap.Logger

	ctx       context.Context
	cancel    context.CancelFunc
	observers []func()

	width    int
	height   int
	spinner  spinner.Model
	spinning bool

	navigator    *logic.Navigator
	renderer     *views.Renderer
	viewModel    *viewmodels.ViewModel
	cmdExecutor  *commands.Executor
	inputHandler *input.Handler
	eventHandler *handlers.EventHandler

	pager       Pager
	program     *tea.Program // reference to Bubble Tea program for terminal management
	inPagerMode bool         // tracks if we're currently in pager mode
	closed      bool
}

// NewModel creates a new UI model
func NewModel(opts Options) *Model {
	appState := state.NewAppState()
	inputHandler := input.New()

	pager := opts.Pager
	if pager == nil {
		pager = NewPagerOps()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Model{
		bus:          opts.Bus,
		session:      opts.Session,
		ui:           opts.UI,
		state:        appState,
		posts:        opts.Posts,
		queue:        opts.Queue,
		initial:      opts.Community,
		log:          logging.L(logging.CatUI),
		ctx:          ctx,
		cancel:       cancel,
		spinner:      spinner.New(spinner.WithSpinner(spinner.Dot)),
		navigator:    logic.NewNavigator(),
		renderer:     views.NewRenderer(opts.UI.ShowScore),
		viewModel:    viewmodels.NewViewModel(appState, opts.UI, textinput.New()),
		cmdExecutor:  commands.NewExecutor(appState, opts.Posts),
		inputHandler: inputHandler,
		eventHandler: handlers.NewEventHandler(appState),
		pager:        pager,
	}
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	// Also set it in the pager
	if ops, ok := m.pager.(*PagerOps); ok {
		ops.SetProgram(p)
	}
}

// Init observes the view-model and shows the first community
func (m *Model) Init() tea.Cmd {
	if m.observers == nil {
		m.observers = []func(){
			m.posts.Posts.Observe(m.onPosts),
			m.posts.NetworkState.Observe(func(s domain.NetworkState) {
				m.onNetworkState(domain.ScopeNetwork, s)
			}),
			m.posts.RefreshState.Observe(func(s domain.NetworkState) {
				m.onNetworkState(domain.ScopeRefresh, s)
			}),
		}
	}

	if m.initial != "" {
		m.cmdExecutor.ExecuteShowCommunity(m.initial)
		m.syncNavigatorState()
	}

	return tea.Batch(m.listen(), m.ensureSpinner())
}

// listen waits for the next batch of listing callbacks
func (m *Model) listen() tea.Cmd {
	return func() tea.Msg {
		batch, err := m.queue.Next(m.ctx)
		if err != nil {
			// queue closed or model shut down
			return nil
		}
		return dispatchMsg{batch: batch}
	}
}

func (m *Model) onPosts(pl *listing.PagedList) {
	m.state.SetPosts(pl)
	m.syncNavigatorState()
}

func (m *Model) onNetworkState(scope domain.Scope, s domain.NetworkState) {
	switch scope {
	case domain.ScopeNetwork:
		m.state.Network = s
	case domain.ScopeRefresh:
		m.state.Refresh = s
	}
	m.syncNavigatorState()

	if s.IsFailed() {
		m.log.Warn("load failed",
			zap.String("community", m.state.Community),
			zap.String("scope", string(scope)),
			zap.String("msg", s.Msg))
	}
	if m.bus != nil {
		m.bus.Publish(eventbus.NetworkStateChangedEvent{
			Community: m.state.Community,
			Scope:     scope,
			State:     s,
		})
	}
}

// syncNavigatorState updates the navigator with current model state and
// copies the clamped selection back.
func (m *Model) syncNavigatorState() {
	m.navigator.UpdateState(
		m.state.SelectedIndex,
		m.state.ViewportOffset,
		m.state.ViewportHeight,
		m.state.TotalRows(),
	)
	m.state.SelectedIndex, m.state.ViewportOffset = m.navigator.SetSelectedIndex(m.state.SelectedIndex)
}

// prefetch reports the furthest shown row to the list so it can ask for
// the next page in time.
func (m *Model) prefetch() {
	count := m.state.PostCount()
	if count == 0 {
		return
	}
	lastVisible := min(m.state.ViewportOffset+m.state.ViewportHeight, count) - 1
	m.cmdExecutor.ExecuteLoadAround(max(m.state.SelectedIndex, lastVisible))
}

// loading reports whether any load of the current listing is running
func (m *Model) loading() bool {
	return m.state.Network.IsRunning() || m.state.Refresh.IsRunning()
}

// ensureSpinner starts the spinner when a load is running
func (m *Model) ensureSpinner() tea.Cmd {
	if m.spinning || !m.loading() {
		return nil
	}
	m.spinning = true
	return m.spinner.Tick
}

// updateViewportHeight recalculates the viewport height based on terminal size
func (m *Model) updateViewportHeight() {
	if m.height <= 0 {
		return
	}
	m.state.ViewportHeight = max(m.height-reservedLines, 1)
	m.syncNavigatorState()
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateViewportHeight()
		m.prefetch()
		return m, nil

	case tea.KeyMsg:
		// The help popup takes keys first
		if m.state.ShowHelp {
			return m, m.handleHelpKey(msg)
		}

		ctx := &input.ModelContext{State: m.state}
		actions, cmd := m.inputHandler.HandleKey(msg, ctx)

		cmds := []tea.Cmd{}
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		for _, action := range actions {
			if actionCmd := m.processAction(action); actionCmd != nil {
				cmds = append(cmds, actionCmd)
			}
		}

		m.syncTextInput()
		cmds = append(cmds, m.ensureSpinner())
		return m, tea.Batch(cmds...)

	default:
		cmds := []tea.Cmd{}
		if cmd := m.inputHandler.Update(msg); cmd != nil {
			m.syncTextInput()
			cmds = append(cmds, cmd)
		}
		_, cmd := m.handleNonKeyboardMsg(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)
	}
}

// syncTextInput copies the shared text input into the view model
func (m *Model) syncTextInput() {
	if ti := m.inputHandler.TextInput(); ti != nil {
		m.viewModel.UpdateTextInput(*ti)
	}
}

func (m *Model) handleHelpKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "?", "q":
		m.state.ShowHelp = false
		m.state.HelpScrollOffset = 0
	case "j", "down":
		m.state.HelpScrollOffset++
	case "k", "up":
		m.state.HelpScrollOffset = max(m.state.HelpScrollOffset-1, 0)
	case "H":
		m.state.ShowHelp = false
		return m.showHelpPager()
	case "ctrl+c":
		return m.quit()
	}
	return nil
}

func (m *Model) handleNonKeyboardMsg(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dispatchMsg:
		if m.closed {
			return m, nil
		}
		for _, fn := range msg.batch {
			fn()
		}
		m.prefetch()
		return m, tea.Batch(m.listen(), m.ensureSpinner())

	case EventMsg:
		return m, m.eventHandler.HandleEvent(msg.Event)

	case handlers.ClearStatusMsg:
		m.eventHandler.ClearStatus(msg)
		return m, nil

	case spinner.TickMsg:
		// Don't keep ticking while in pager mode or idle
		if m.inPagerMode || !m.loading() {
			m.spinning = false
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case postPagerMsg:
		if msg.err != nil {
			m.log.Warn("post pager failed", zap.String("post", msg.name), zap.Error(msg.err))
			return m, m.eventHandler.SetStatus(fmt.Sprintf("Could not open post: %v", msg.err))
		}
		return m, nil

	case helpPagerMsg:
		if msg.err != nil {
			// Pager failed: fall back to the popup
			m.log.Warn("help pager failed", zap.Error(msg.err))
			m.state.ShowHelp = true
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, m.ensureSpinner()

	case quitMsg:
		if msg.saveState {
			m.saveSession()
		}
		m.shutdown()
		return m, tea.Quit
	}

	return m, nil
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.NavigateAction:
		m.syncNavigatorState()
		m.state.SelectedIndex, m.state.ViewportOffset = m.navigator.Move(a.Direction)
		m.prefetch()

	case inputtypes.SubmitTextAction:
		if a.Mode == inputtypes.ModeCommunity {
			m.cmdExecutor.ExecuteShowCommunity(a.Text)
			m.syncNavigatorState()
		}

	case inputtypes.ChangeModeAction, inputtypes.UpdateTextAction, inputtypes.CancelTextAction:
		// the input handler owns mode and text

	case inputtypes.RefreshAction:
		m.cmdExecutor.ExecuteRefresh()

	case inputtypes.RetryAction:
		m.cmdExecutor.ExecuteRetry()

	case inputtypes.OpenPostAction:
		return m.openPost()

	case inputtypes.ToggleHelpAction:
		m.state.ShowHelp = !m.state.ShowHelp
		m.state.HelpScrollOffset = 0

	case inputtypes.ShowHelpPagerAction:
		return m.showHelpPager()

	case inputtypes.QuitAction:
		return m.quit()
	}
	return nil
}

func (m *Model) quit() tea.Cmd {
	return func() tea.Msg {
		return quitMsg{saveState: m.ui.SaveOnExit}
	}
}

// openPost renders the selected post and shows it in the pager
func (m *Model) openPost() tea.Cmd {
	post, ok := m.state.SelectedPost()
	if !ok {
		return nil
	}

	content := views.PostMarkdown(post)
	width := max(min(m.width, 100)-4, 20)
	if r, err := views.NewMarkdownRenderer(width, m.ui.MarkdownStyle); err != nil {
		m.log.Warn("markdown renderer", zap.Error(err))
	} else if out, err := r.Render(content); err != nil {
		m.log.Warn("render post", zap.String("post", post.Name), zap.Error(err))
	} else {
		content = out
	}

	return m.runPager(content, func(err error) tea.Msg {
		return postPagerMsg{name: post.Name, err: err}
	})
}

// showHelpPager returns a command that shows help using ov pager
func (m *Model) showHelpPager() tea.Cmd {
	return m.runPager(views.HelpText(), func(err error) tea.Msg {
		return helpPagerMsg{err: err}
	})
}

// runPager shows content in the pager, pausing rendering around it
func (m *Model) runPager(content string, done func(error) tea.Msg) tea.Cmd {
	pager := m.pager
	program := m.program
	return func() tea.Msg {
		if program != nil {
			program.Send(pauseRenderingMsg{})
		}
		err := pager.ShowInPager(content)
		if program != nil {
			program.Send(resumeRenderingMsg{})
		}
		return done(err)
	}
}

// saveSession stores the community being shown for the next start
func (m *Model) saveSession() {
	if m.session == nil {
		return
	}
	community, ok := m.posts.CurrentCommunity()
	if !ok {
		return
	}
	if err := m.session.Save(&config.State{LastCommunity: community}); err != nil {
		m.log.Error("save session state", zap.Error(err))
		if m.bus != nil {
			m.bus.Publish(eventbus.ErrorEvent{Message: "failed to save session state", Err: err})
		}
	}
}

// shutdown stops observing and cancels the current listing
func (m *Model) shutdown() {
	if m.closed {
		return
	}
	m.closed = true
	for _, cancel := range m.observers {
		cancel()
	}
	m.observers = nil
	m.posts.Close()
	m.cancel()
}

// State returns the application state
func (m *Model) State() *state.AppState {
	return m.state
}

// View renders the UI
func (m *Model) View() string {
	if m.inPagerMode {
		return ""
	}
	if m.width == 0 {
		return "Loading..."
	}

	m.viewModel.SetDimensions(m.width, m.height)
	m.viewModel.SetSpinner(m.spinner.View())
	if m.inputHandler.CurrentMode() == inputtypes.ModeCommunity {
		m.viewModel.SetInputMode(viewmodels.InputModeCommunity)
	} else {
		m.viewModel.SetInputMode(viewmodels.InputModeNormal)
	}

	return m.renderer.Render(m.viewModel.BuildViewState())
}
