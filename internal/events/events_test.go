package events

import (
	"encoding/json"
	"testing"
)

func TestBusDeliversToEveryListener(t *testing.T) {
	bus := NewBus()
	var first, second []Event
	bus.Subscribe(ListenerFunc(func(e Event) { first = append(first, e) }))
	bus.Subscribe(ListenerFunc(func(e Event) { second = append(second, e) }))

	bus.Publish(Event{Type: SaleRecorded, Subject: "s1"})

	if len(first) != 1 || len(second) != 1 {
		t.Fatalf("expected one event per listener, got %d and %d", len(first), len(second))
	}
	if first[0].Timestamp.IsZero() {
		t.Fatal("expected publish to stamp the event")
	}
}

func TestNilBusDropsEvents(t *testing.T) {
	var bus *Bus
	bus.Publish(Event{Type: MedicineAdded})
}

func TestEncodeMessage(t *testing.T) {
	msg, err := encodeMessage(Event{Type: StockApplied, Subject: "m1", Payload: map[string]int{"quantity": 3}})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if string(msg.Key) != "m1" || string(msg.Headers[0].Value) != StockApplied {
		t.Fatalf("unexpected message: %+v", msg)
	}
	var decoded Event
	if err := json.Unmarshal(msg.Value, &decoded); err != nil || decoded.Type != StockApplied {
		t.Fatalf("unexpected value %s (%v)", msg.Value, err)
	}
}
