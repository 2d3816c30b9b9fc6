package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventQueryChanged        EventType = "QueryChanged"
	EventListingCreated      EventType = "ListingCreated"
	EventNetworkStateChanged EventType = "NetworkStateChanged"
	EventError               EventType = "Error"
	EventConfigLoaded        EventType = "ConfigLoaded"
	EventConfigSaved         EventType = "ConfigSaved"
	EventConfigChanged       EventType = "ConfigChanged"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// QueryChangedEvent is emitted when the requested community changes
type QueryChangedEvent struct {
	Previous string
	Current  string
}

func (e QueryChangedEvent) Type() EventType { return EventQueryChanged }

// ListingCreatedEvent is emitted when a provider builds a listing for a community
type ListingCreatedEvent struct {
	Community string
	ListingID string
	Backend   string
}

func (e ListingCreatedEvent) Type() EventType { return EventListingCreated }

// NetworkStateChangedEvent is emitted by the UI when a listing reports progress
type NetworkStateChangedEvent struct {
	Community string
	Scope     Scope
	State     NetworkState
}

func (e NetworkStateChangedEvent) Type() EventType { return EventNetworkStateChanged }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ConfigLoadedEvent is emitted when session state is loaded
type ConfigLoadedEvent struct {
	LastCommunity string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted when session state is saved
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }

// ConfigChangedEvent is emitted when session state needs to be saved
type ConfigChangedEvent struct {
	LastCommunity string
}

func (e ConfigChangedEvent) Type() EventType { return EventConfigChanged }
