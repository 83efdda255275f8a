package stream

import "testing"

func TestOrderEventFieldsRoundTrip(t *testing.T) {
	ev := OrderEvent{OrderID: 7, ProductID: "p1", Quantity: 3}

	fields := make(map[string]string)
	for k, v := range ev.Fields() {
		fields[k] = v.(string)
	}

	parsed, err := ParseOrderEvent(fields)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if parsed != ev {
		t.Fatalf("round trip changed event: %+v", parsed)
	}
}

func TestParseOrderEventMissingFields(t *testing.T) {
	cases := []map[string]string{
		{},
		{FieldOrderID: "1"},
		{FieldOrderID: "1", FieldProductID: "p1"},
		{FieldProductID: "p1", FieldOrderQuantity: "2"},
		{FieldOrderID: "1", FieldProductID: "", FieldOrderQuantity: "2"},
	}
	for _, fields := range cases {
		if _, err := ParseOrderEvent(fields); err == nil {
			t.Fatalf("expected error for %v", fields)
		}
	}
}

func TestParseOrderEventMalformedNumbers(t *testing.T) {
	cases := []map[string]string{
		{FieldOrderID: "one", FieldProductID: "p1", FieldOrderQuantity: "2"},
		{FieldOrderID: "1", FieldProductID: "p1", FieldOrderQuantity: "two"},
	}
	for _, fields := range cases {
		if _, err := ParseOrderEvent(fields); err == nil {
			t.Fatalf("expected error for %v", fields)
		}
	}
}
