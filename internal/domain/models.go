package domain

import (
	"fmt"
	"time"
)

// DefaultCommunity is shown when no community has been saved yet
const DefaultCommunity = "androiddev"

// Post is a single entry of a community feed
type Post struct {
	ID           string // feed-wide unique id (record uri)
	Name         string // item key used to page after this post
	Community    string
	Title        string
	Author       string
	Score        int
	CommentCount int
	URL          string
	Thumbnail    string
	Body         string
	CreatedAt    time.Time

	// position in the feed as stored by the database backend
	IndexInResponse int
}

// Status is the phase of a network request
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusSuccess
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusSuccess:
		return "success"
	case StatusFailed:
		return "failed"
	default:
		return "idle"
	}
}

// NetworkState reports the progress of a load. The zero value is idle.
type NetworkState struct {
	Status Status
	Msg    string
}

var (
	// Loading is posted before a request is issued
	Loading = NetworkState{Status: StatusRunning}
	// Loaded is posted when a request completed
	Loaded = NetworkState{Status: StatusSuccess}
)

// NetworkError builds a failed state carrying msg
func NetworkError(msg string) NetworkState {
	return NetworkState{Status: StatusFailed, Msg: msg}
}

func (s NetworkState) IsRunning() bool { return s.Status == StatusRunning }
func (s NetworkState) IsFailed() bool  { return s.Status == StatusFailed }

func (s NetworkState) String() string {
	if s.Msg == "" {
		return s.Status.String()
	}
	return fmt.Sprintf("%s: %s", s.Status, s.Msg)
}

// Scope tells which stream a NetworkState belongs to
type Scope string

const (
	ScopeNetwork Scope = "network"
	ScopeRefresh Scope = "refresh"
)
