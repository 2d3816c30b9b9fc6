package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"

	"subpager/internal/domain"
	"subpager/internal/eventbus"
	"subpager/internal/logging"
)

const stateVersion = 1

// State is what survives between sessions: only the community last shown.
type State struct {
	Version       int    `toml:"version"`
	LastCommunity string `toml:"last_community"`
}

// Community returns the community to show first.
func (s *State) Community() string {
	if s == nil || s.LastCommunity == "" {
		return domain.DefaultCommunity
	}
	return s.LastCommunity
}

// StateService handles session state persistence
type StateService interface {
	Load() (*State, error)
	Save(state *State) error
	LoadFromPath(path string) (*State, error)
	SaveToPath(state *State, path string) error
}

// stateService is the concrete implementation
type stateService struct {
	bus      eventbus.EventBus
	filePath string
	log      *zap.Logger
}

// NewStateService creates a state service reading and writing filePath.
// bus may be nil.
func NewStateService(filePath string, bus eventbus.EventBus) StateService {
	return &stateService{
		bus:      bus,
		filePath: filePath,
		log:      logging.L(logging.CatConfig),
	}
}

// Load loads the state from the service's file. A missing file yields the
// default state.
func (s *stateService) Load() (*State, error) {
	st, err := s.LoadFromPath(s.filePath)
	if errors.Is(err, os.ErrNotExist) {
		st = DefaultState()
		err = nil
	}
	if err != nil {
		return nil, err
	}

	if s.bus != nil {
		s.bus.Publish(eventbus.ConfigLoadedEvent{LastCommunity: st.LastCommunity})
	}
	return st, nil
}

// Save saves the state to the service's file
func (s *stateService) Save(state *State) error {
	if err := s.SaveToPath(state, s.filePath); err != nil {
		return err
	}

	s.log.Debug("session state saved",
		zap.String("path", s.filePath),
		zap.String("community", state.LastCommunity))

	if s.bus != nil {
		s.bus.Publish(eventbus.ConfigSavedEvent{})
	}
	return nil
}

// LoadFromPath loads state from a specific path
func (s *stateService) LoadFromPath(path string) (*State, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}

	var st State
	if err := toml.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", path, err)
	}
	if st.Version == 0 {
		st.Version = stateVersion
	}
	return &st, nil
}

// SaveToPath saves state to a specific path
func (s *stateService) SaveToPath(state *State, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	if state.Version == 0 {
		state.Version = stateVersion
	}
	data, err := toml.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write state file: %w", err)
	}
	return nil
}

// DefaultState returns the state used on first launch
func DefaultState() *State {
	return &State{Version: stateVersion}
}
