package kafka

import "time"

type EventType string

const (
	EventTypeView      EventType = "view"
	EventTypeAddToCart EventType = "addToCart"
	EventTypePurchase  EventType = "purchase"
)

type Event struct {
	UserID     string    `json:"user_id"`
	Type       EventType `json:"type"`
	ProductIDs []string  `json:"product_ids,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
