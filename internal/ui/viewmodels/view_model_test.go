package viewmodels

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/stretchr/testify/assert"

	"subpager/internal/config"
	"subpager/internal/domain"
	"subpager/internal/listing"
	"subpager/internal/ui/state"
)

func TestViewModel_BuildViewState(t *testing.T) {
	s := state.NewAppState()
	s.ShowCommunity("pics")
	s.SetPosts(&listing.PagedList{Community: "pics", Posts: []domain.Post{{Name: "a"}}, EndReached: true})
	s.Network = domain.Loaded

	vm := NewViewModel(s, config.UISettings{ShowScore: true}, textinput.New())
	vm.SetDimensions(80, 24)
	vm.SetSpinner("*")

	vs := vm.BuildViewState()
	assert.Equal(t, "pics", vs.Community)
	assert.Len(t, vs.Posts, 1)
	assert.True(t, vs.EndReached)
	assert.True(t, vs.ShowScore)
	assert.Equal(t, 80, vs.Width)
	assert.Equal(t, "*", vs.Spinner)
	assert.Empty(t, vs.InputMode)
	assert.Empty(t, vs.TextInput)
}

func TestViewModel_InputMode(t *testing.T) {
	ti := textinput.New()
	ti.SetValue("golang")
	vm := NewViewModel(state.NewAppState(), config.UISettings{}, ti)
	vm.SetInputMode(InputModeCommunity)

	vs := vm.BuildViewState()
	assert.Equal(t, "community", vs.InputMode)
	assert.Contains(t, vs.TextInput, "Community: ")
	assert.Contains(t, vs.TextInput, "golang")
	assert.Nil(t, vs.Posts)
}
