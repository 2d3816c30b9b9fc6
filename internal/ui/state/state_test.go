package state

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"subpager/internal/domain"
	"subpager/internal/listing"
)

func TestAppState_Rows(t *testing.T) {
	s := NewAppState()
	assert.Equal(t, 0, s.TotalRows())
	_, ok := s.SelectedPost()
	assert.False(t, ok)

	s.SetPosts(&listing.PagedList{Posts: []domain.Post{{Name: "a"}, {Name: "b"}}})
	assert.Equal(t, 2, s.TotalRows())

	s.Network = domain.Loading
	assert.Equal(t, 3, s.TotalRows())
	s.Network = domain.NetworkError("boom")
	assert.True(t, s.HasStatusRow())
	s.Network = domain.Loaded
	assert.False(t, s.HasStatusRow())

	s.SelectedIndex = 1
	p, ok := s.SelectedPost()
	assert.True(t, ok)
	assert.Equal(t, "b", p.Name)
}

func TestAppState_SetPostsClampsSelection(t *testing.T) {
	s := NewAppState()
	s.SetPosts(&listing.PagedList{Posts: make([]domain.Post, 10)})
	s.SelectedIndex = 9
	s.SetPosts(&listing.PagedList{Posts: make([]domain.Post, 3)})
	assert.Equal(t, 2, s.SelectedIndex)
}

func TestAppState_ShowCommunityResets(t *testing.T) {
	s := NewAppState()
	s.SetPosts(&listing.PagedList{Posts: make([]domain.Post, 10)})
	s.SelectedIndex, s.ViewportOffset = 7, 4
	s.Network = domain.NetworkError("x")

	s.ShowCommunity("pics")
	assert.Equal(t, "pics", s.Community)
	assert.Nil(t, s.Posts)
	assert.Zero(t, s.SelectedIndex)
	assert.Zero(t, s.ViewportOffset)
	assert.False(t, s.HasStatusRow())
}
