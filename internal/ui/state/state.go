package state

import (
	"subpager/internal/domain"
	"subpager/internal/listing"
)

// AppState contains all the application state
type AppState struct {
	// Listing data
	Community string              // community being shown
	Posts     *listing.PagedList  // latest page snapshot, nil until the first load
	Network   domain.NetworkState // progress of page loads
	Refresh   domain.NetworkState // progress of the initial load and refreshes

	// Selection state
	SelectedIndex int // currently selected row

	// UI state
	ViewportOffset   int // offset for scrolling
	ViewportHeight   int // available height for the post list
	ShowHelp         bool
	HelpScrollOffset int    // scroll offset for help popup
	StatusMessage    string // status bar message
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{
		ViewportHeight: 20, // Default
	}
}

// SetPosts replaces the shown snapshot, keeping the selection in range
func (s *AppState) SetPosts(posts *listing.PagedList) {
	s.Posts = posts
	if last := s.TotalRows() - 1; s.SelectedIndex > last {
		s.SelectedIndex = max(last, 0)
	}
}

// ShowCommunity switches to a new community: the old posts are dropped and
// the list starts at the top.
func (s *AppState) ShowCommunity(name string) {
	s.Community = name
	s.Posts = nil
	s.Network = domain.NetworkState{}
	s.Refresh = domain.NetworkState{}
	s.SelectedIndex = 0
	s.ViewportOffset = 0
}

// PostCount returns the number of loaded posts
func (s *AppState) PostCount() int {
	return s.Posts.Len()
}

// HasStatusRow reports whether a load-state row follows the posts
func (s *AppState) HasStatusRow() bool {
	return s.Network.IsRunning() || s.Network.IsFailed()
}

// TotalRows returns the number of list rows including the load-state row
func (s *AppState) TotalRows() int {
	n := s.PostCount()
	if s.HasStatusRow() {
		n++
	}
	return n
}

// SelectedPost returns the post under the selection
func (s *AppState) SelectedPost() (domain.Post, bool) {
	if s.SelectedIndex < 0 || s.SelectedIndex >= s.PostCount() {
		return domain.Post{}, false
	}
	return s.Posts.Posts[s.SelectedIndex], true
}
