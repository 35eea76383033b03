package registry

import (
	"encoding/json"
	"testing"

	"github.com/glowcall/glowcall-backend/pkg/enums"
	"github.com/glowcall/glowcall-backend/pkg/outbox/payloads"
)

func TestDecoderRegistry(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.Register(enums.EventBookingStatusChanged, 1, func(payload json.RawMessage) (interface{}, error) {
		var decoded map[string]string
		if err := json.Unmarshal(payload, &decoded); err != nil {
			return nil, err
		}
		return decoded, nil
	})

	input := json.RawMessage(`{"to":"CONFIRMED"}`)
	output, err := reg.Decode(enums.EventBookingStatusChanged, 1, input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if outMap, ok := output.(map[string]string); !ok || outMap["to"] != "CONFIRMED" {
		t.Fatalf("unexpected output %+v", output)
	}

	if _, err := reg.Decode(enums.EventBookingStatusChanged, 2, input); err == nil {
		t.Fatal("expected unregistered version to fail")
	}
}

func TestDecoderRegistryRegisterJSON(t *testing.T) {
	reg := NewDecoderRegistry()
	reg.RegisterJSON(enums.EventNotificationRequested, 1, func() interface{} { return &payloads.NotificationRequestedEvent{} })

	output, err := reg.Decode(enums.EventNotificationRequested, 1, json.RawMessage(`{"type":"booking_confirmed","recipientType":"customer"}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	event, ok := output.(*payloads.NotificationRequestedEvent)
	if !ok || event.Type != enums.NotificationTypeBookingConfirmed {
		t.Fatalf("unexpected output %#v", output)
	}

	if _, err := reg.Decode(enums.EventNotificationRequested, 1, json.RawMessage(`{`)); err == nil {
		t.Fatal("expected malformed payload error")
	}
}
