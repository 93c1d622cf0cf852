package websocket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvent(t *testing.T) {
	payload := map[string]interface{}{
		"id":     1,
		"amount": "150000.00",
	}

	before := time.Now()
	evt := NewEvent(EventTypeCreated, EntityTypePayment, payload)
	after := time.Now()

	assert.Equal(t, "payment.created", evt.Type)
	assert.Equal(t, EntityTypePayment, evt.Entity)
	assert.Equal(t, payload, evt.Payload)
	assert.True(t, !evt.Timestamp.Before(before) && !evt.Timestamp.After(after))
	assert.Equal(t, time.UTC, evt.Timestamp.Location())
}

func TestEvent_ToJSON(t *testing.T) {
	fixedTime := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	evt := Event{
		Type:      "product_sale.updated",
		Entity:    EntityTypeProductSale,
		Payload:   map[string]interface{}{"id": float64(9), "totalAmount": "60000.00"},
		Timestamp: fixedTime,
	}

	data, err := evt.ToJSON()
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, "product_sale.updated", decoded["type"])
	assert.Equal(t, "product_sale", decoded["entity"])
	assert.Equal(t, "2025-01-15T10:30:00Z", decoded["timestamp"])

	payload, ok := decoded["payload"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(9), payload["id"])
	assert.Equal(t, "60000.00", payload["totalAmount"])
}

func TestEvent_Helpers(t *testing.T) {
	payload := map[string]interface{}{"id": float64(1)}

	tests := []struct {
		name   string
		evt    Event
		typ    string
		entity EntityType
	}{
		{"PaymentCreated", PaymentCreated(payload), "payment.created", EntityTypePayment},
		{"PaymentUpdated", PaymentUpdated(payload), "payment.updated", EntityTypePayment},
		{"PaymentDeleted", PaymentDeleted(payload), "payment.deleted", EntityTypePayment},
		{"SalaryPaymentCreated", SalaryPaymentCreated(payload), "salary_payment.created", EntityTypeSalaryPayment},
		{"SalaryPaymentDeleted", SalaryPaymentDeleted(payload), "salary_payment.deleted", EntityTypeSalaryPayment},
		{"ProductSaleCreated", ProductSaleCreated(payload), "product_sale.created", EntityTypeProductSale},
		{"ProductSaleUpdated", ProductSaleUpdated(payload), "product_sale.updated", EntityTypeProductSale},
		{"ProductSaleDeleted", ProductSaleDeleted(payload), "product_sale.deleted", EntityTypeProductSale},
		{"StudentCreated", StudentCreated(payload), "student.created", EntityTypeStudent},
		{"StudentUpdated", StudentUpdated(payload), "student.updated", EntityTypeStudent},
		{"StudentDeleted", StudentDeleted(payload), "student.deleted", EntityTypeStudent},
		{"ExpenseCreated", ExpenseCreated(payload), "expense.created", EntityTypeExpense},
		{"ExpenseDeleted", ExpenseDeleted(payload), "expense.deleted", EntityTypeExpense},
		{"MembershipChanged", MembershipChanged(payload), "membership.updated", EntityTypeMembership},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.typ, tt.evt.Type)
			assert.Equal(t, tt.entity, tt.evt.Entity)
			assert.Equal(t, payload, tt.evt.Payload)
		})
	}
}
