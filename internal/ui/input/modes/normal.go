package modes

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"subpager/internal/ui/input/types"
)

// gPrefixTimeout is how long a first 'g' waits for the second one
const gPrefixTimeout = 500 * time.Millisecond

type NormalMode struct {
	lastKeyWasG bool
	lastGTime   time.Time
	now         func() time.Time
}

func NewNormalMode() *NormalMode {
	return &NormalMode{now: time.Now}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true

	case tea.KeyUp:
		return m.navigate("up")

	case tea.KeyDown:
		return m.navigate("down")

	case tea.KeyPgUp, tea.KeyCtrlB:
		return m.navigate("pageup")

	case tea.KeyPgDown, tea.KeyCtrlF:
		return m.navigate("pagedown")

	case tea.KeyHome:
		return m.navigate("home")

	case tea.KeyEnd:
		return m.navigate("end")

	case tea.KeyEnter:
		m.lastKeyWasG = false
		// Enter on the failed load row retries; on a post it opens it
		if ctx.OnStatusRow() && ctx.NetworkFailed() {
			return []types.Action{types.RetryAction{}}, true
		}
		if ctx.HasPost() {
			return []types.Action{types.OpenPostAction{}}, true
		}
		return nil, true
	}

	switch msg.String() {
	case "j":
		return m.navigate("down")

	case "k":
		return m.navigate("up")

	case "r":
		m.lastKeyWasG = false
		return []types.Action{types.RefreshAction{}}, true

	case "R":
		m.lastKeyWasG = false
		return []types.Action{types.RetryAction{}}, true

	case "/", "s":
		m.lastKeyWasG = false
		return []types.Action{types.ChangeModeAction{Mode: types.ModeCommunity}}, true

	case "o":
		m.lastKeyWasG = false
		if ctx.HasPost() {
			return []types.Action{types.OpenPostAction{}}, true
		}
		return nil, true

	case "?":
		m.lastKeyWasG = false
		return []types.Action{types.ToggleHelpAction{}}, true

	case "H":
		m.lastKeyWasG = false
		return []types.Action{types.ShowHelpPagerAction{}}, true

	case "q":
		return []types.Action{types.QuitAction{Force: false}}, true

	case "g":
		if m.lastKeyWasG && m.now().Sub(m.lastGTime) < gPrefixTimeout {
			m.lastKeyWasG = false
			return []types.Action{types.NavigateAction{Direction: "home"}}, true
		}
		m.lastKeyWasG = true
		m.lastGTime = m.now()
		return nil, true

	case "G":
		return m.navigate("end")
	}

	// Any other key cancels the 'g' prefix
	m.lastKeyWasG = false
	return nil, false
}

func (m *NormalMode) navigate(direction string) ([]types.Action, bool) {
	m.lastKeyWasG = false
	return []types.Action{types.NavigateAction{Direction: direction}}, true
}
