package websocket

import (
	"encoding/json"
	"fmt"
	"time"
)

// EventType is the action part of an event name
type EventType string

const (
	EventTypeCreated EventType = "created"
	EventTypeUpdated EventType = "updated"
	EventTypeDeleted EventType = "deleted"
)

// EntityType is the entity part of an event name
type EntityType string

const (
	EntityTypePayment       EntityType = "payment"
	EntityTypeSalaryPayment EntityType = "salary_payment"
	EntityTypeProductSale   EntityType = "product_sale"
	EntityTypeStudent       EntityType = "student"
	EntityTypeExpense       EntityType = "expense"
	EntityTypeMembership    EntityType = "membership"
)

// Event is the message pushed to live feed clients.
// Format: { type, entity, payload, timestamp }
type Event struct {
	Type      string      `json:"type"`   // e.g. "payment.created"
	Entity    EntityType  `json:"entity"` // e.g. "payment"
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates an event stamped with the current UTC time
func NewEvent(eventType EventType, entityType EntityType, payload interface{}) Event {
	return Event{
		Type:      fmt.Sprintf("%s.%s", entityType, eventType),
		Entity:    entityType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON serializes the event to JSON bytes
func (e Event) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

func PaymentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypePayment, payload)
}

func PaymentUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypePayment, payload)
}

func PaymentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypePayment, payload)
}

func SalaryPaymentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeSalaryPayment, payload)
}

func SalaryPaymentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeSalaryPayment, payload)
}

func ProductSaleCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeProductSale, payload)
}

func ProductSaleUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeProductSale, payload)
}

func ProductSaleDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeProductSale, payload)
}

func StudentCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeStudent, payload)
}

func StudentUpdated(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeStudent, payload)
}

func StudentDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeStudent, payload)
}

func ExpenseCreated(payload interface{}) Event {
	return NewEvent(EventTypeCreated, EntityTypeExpense, payload)
}

func ExpenseDeleted(payload interface{}) Event {
	return NewEvent(EventTypeDeleted, EntityTypeExpense, payload)
}

// MembershipChanged is emitted when a student joins or leaves a group
func MembershipChanged(payload interface{}) Event {
	return NewEvent(EventTypeUpdated, EntityTypeMembership, payload)
}
