package amqp

import (
	"encoding/json"
	"time"
)

// Actions carried by activity events.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
	ActionShared  = "shared"
	ActionRevoked = "revoked"
	ActionExport  = "exported"
)

// ActivityEvent describes one successful mutation performed through the frontend.
// It carries identifiers only; consumers fetch details from the finance API.
type ActivityEvent struct {
	Resource   string    `json:"resource"`
	Action     string    `json:"action"`
	ResourceID string    `json:"resource_id,omitempty"`
	AccountID  string    `json:"account_id,omitempty"`
	UserID     string    `json:"user_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewActivityEvent creates an event stamped with the current time.
func NewActivityEvent(resource, action, resourceID string) *ActivityEvent {
	return &ActivityEvent{
		Resource:   resource,
		Action:     action,
		ResourceID: resourceID,
		Timestamp:  time.Now(),
	}
}

// RoutingKey returns "<resource>.<action>" for topic exchange bindings.
func (e *ActivityEvent) RoutingKey() string {
	return e.Resource + "." + e.Action
}

// ToJSON converts the event to JSON bytes
func (e *ActivityEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ActivityEventFromJSON creates an event from JSON bytes
func ActivityEventFromJSON(data []byte) (*ActivityEvent, error) {
	var ev ActivityEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
