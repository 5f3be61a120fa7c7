package mykafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

const (
	TopicProductEvents = "product_events"
	TopicUserEvents    = "user_events"
)

const (
	ProductCreated = "product_created"
	ProductUpdated = "product_updated"
	ProductDeleted = "product_deleted"
	UserRegistered = "user_registered"
	UserDeleted    = "user_deleted"
)

type Event struct {
	ID         string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func NewEvent(eventType string, payload any) (*Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    data,
	}, nil
}

type ProductPayload struct {
	ID      uint    `json:"id"`
	Title   string  `json:"title"`
	Price   float64 `json:"price"`
	Public  bool    `json:"public"`
	OwnerID *uint   `json:"owner_id"`
}

type UserPayload struct {
	ID       uint   `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
}
