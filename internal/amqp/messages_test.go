package amqp

import "testing"

func TestRecomputeMessageRoundTrip(t *testing.T) {
	msg := NewRecomputeMessage("2024-01-01", "2024-11-30", ReasonPeriodAdded)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	decoded, err := RecomputeMessageFromJSON(body)
	if err != nil {
		t.Fatalf("RecomputeMessageFromJSON() error = %v", err)
	}
	if decoded.From != "2024-01-01" || decoded.To != "2024-11-30" {
		t.Errorf("decoded window = %s..%s, want 2024-01-01..2024-11-30", decoded.From, decoded.To)
	}
	if decoded.Reason != ReasonPeriodAdded {
		t.Errorf("Reason = %q, want %q", decoded.Reason, ReasonPeriodAdded)
	}
	if decoded.Timestamp.IsZero() {
		t.Error("Timestamp must survive the round trip")
	}
}

func TestRecomputeMessageFromJSON_Invalid(t *testing.T) {
	if _, err := RecomputeMessageFromJSON([]byte("{not json")); err == nil {
		t.Error("RecomputeMessageFromJSON() expected error for malformed payload")
	}
}
