package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Order lifecycle events travel on a single topic as a tagged union, keyed by
// order_id so one order's events keep their emission order per partition.
const (
	TopicOrderEvents    = "order.events"
	TopicOrderEventsDLQ = "order.events.dlq"
)

func PartitionKey(orderID int) []byte { return []byte(strconv.Itoa(orderID)) }

type OrderItemEvent struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type OrderItemUpdateEvent struct {
	ProductID   int `json:"product_id"`
	OldQuantity int `json:"old_quantity"`
	NewQuantity int `json:"new_quantity"`
}

// OrderEvent is a closed union: exactly OrderCreated, OrderUpdated or
// OrderDeleted. The wire form carries a "type" discriminator whose value and
// field names must not change; the product service's consumer depends on them.
type OrderEvent interface {
	EventType() string
	EventOrderID() int
}

type OrderCreated struct {
	OrderID int              `json:"order_id"`
	UserID  int              `json:"user_id"`
	Items   []OrderItemEvent `json:"items"`
}

type OrderUpdated struct {
	OrderID int                    `json:"order_id"`
	Updates []OrderItemUpdateEvent `json:"updates"`
}

type OrderDeleted struct {
	OrderID      int              `json:"order_id"`
	DeletedItems []OrderItemEvent `json:"deleted_items"`
}

func (OrderCreated) EventType() string { return "Created" }
func (OrderUpdated) EventType() string { return "Updated" }
func (OrderDeleted) EventType() string { return "Deleted" }

func (e OrderCreated) EventOrderID() int { return e.OrderID }
func (e OrderUpdated) EventOrderID() int { return e.OrderID }
func (e OrderDeleted) EventOrderID() int { return e.OrderID }

func MarshalOrderEvent(ev OrderEvent) ([]byte, error) {
	switch e := ev.(type) {
	case OrderCreated:
		return json.Marshal(struct {
			Type string `json:"type"`
			OrderCreated
		}{e.EventType(), e})
	case OrderUpdated:
		return json.Marshal(struct {
			Type string `json:"type"`
			OrderUpdated
		}{e.EventType(), e})
	case OrderDeleted:
		return json.Marshal(struct {
			Type string `json:"type"`
			OrderDeleted
		}{e.EventType(), e})
	default:
		return nil, fmt.Errorf("unknown order event %T", ev)
	}
}

func UnmarshalOrderEvent(b []byte) (OrderEvent, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(b, &head); err != nil {
		return nil, fmt.Errorf("decode order event: %w", err)
	}
	switch head.Type {
	case "Created":
		var e OrderCreated
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("decode Created event: %w", err)
		}
		return e, nil
	case "Updated":
		var e OrderUpdated
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("decode Updated event: %w", err)
		}
		return e, nil
	case "Deleted":
		var e OrderDeleted
		if err := json.Unmarshal(b, &e); err != nil {
			return nil, fmt.Errorf("decode Deleted event: %w", err)
		}
		return e, nil
	default:
		return nil, fmt.Errorf("unknown order event type %q", head.Type)
	}
}
