package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"subpager/internal/ui/input/types"
)

// CommunityMode reads the name of the community to show
type CommunityMode struct {
	TextInputMode
}

func NewCommunityMode(ti *textinput.Model) *CommunityMode {
	return &CommunityMode{
		TextInputMode: NewTextInputMode(types.ModeCommunity, "community", "Community: ", ti),
	}
}
