package stream

import (
	"fmt"
	"strconv"
)

const (
	FieldOrderID       = "order_id"
	FieldProductID     = "product_id"
	FieldOrderQuantity = "order_quantity"
)

// OrderEvent is the flattened payload carried on both the
// order-completed and refund streams.
type OrderEvent struct {
	OrderID   int64
	ProductID string
	Quantity  int64
}

func (e OrderEvent) Fields() map[string]any {
	return map[string]any{
		FieldOrderID:       strconv.FormatInt(e.OrderID, 10),
		FieldProductID:     e.ProductID,
		FieldOrderQuantity: strconv.FormatInt(e.Quantity, 10),
	}
}

// ParseOrderEvent validates field presence; there is no schema beyond this.
func ParseOrderEvent(fields map[string]string) (OrderEvent, error) {
	var ev OrderEvent

	rawID, ok := fields[FieldOrderID]
	if !ok {
		return ev, fmt.Errorf("event missing %s", FieldOrderID)
	}
	orderID, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return ev, fmt.Errorf("event has malformed %s %q: %w", FieldOrderID, rawID, err)
	}

	productID, ok := fields[FieldProductID]
	if !ok || productID == "" {
		return ev, fmt.Errorf("event missing %s", FieldProductID)
	}

	rawQty, ok := fields[FieldOrderQuantity]
	if !ok {
		return ev, fmt.Errorf("event missing %s", FieldOrderQuantity)
	}
	quantity, err := strconv.ParseInt(rawQty, 10, 64)
	if err != nil {
		return ev, fmt.Errorf("event has malformed %s %q: %w", FieldOrderQuantity, rawQty, err)
	}

	ev.OrderID = orderID
	ev.ProductID = productID
	ev.Quantity = quantity
	return ev, nil
}
