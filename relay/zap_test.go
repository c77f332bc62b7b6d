package relay

import (
	"testing"

	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/domain"
	"github.com/nbd-wtf/go-nostr"
)

func TestInvoiceMsats(t *testing.T) {
	tests := []struct {
		invoice string
		want    int64
		ok      bool
	}{
		{"lnbc2500u1pvjluezpp5qqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqypq", 250_000_000, true},
		{"lnbc20m1pvjluezpp5qqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqypq", 2_000_000_000, true},
		{"LNBC10N1PVJLUEZ", 1000, true},
		{"lnbc25p1pvjluez", 2, true},
		{"lntb1500n1pvjluez", 150_000, true},
		{"lnbc1pvjluezpp5qqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqqqsyqcyq5rqwzqfqypq", 0, false},
		{"lnbc10x1pvjluez", 0, false},
		{"not an invoice", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := invoiceMsats(tt.invoice)
		if got != tt.want || ok != tt.ok {
			t.Errorf("Expected (%d, %v) for %q, got (%d, %v)", tt.want, tt.ok, tt.invoice, got, ok)
		}
	}
}

func zapRequest(t *testing.T, amount string) string {
	t.Helper()
	req := nostr.Event{
		Kind:      nostr.KindZapRequest,
		CreatedAt: nostr.Timestamp(testTime.Unix()),
		Content:   "great post",
		Tags:      nostr.Tags{{"e", "target-id"}},
	}
	if amount != "" {
		req.Tags = append(req.Tags, nostr.Tag{"amount", amount})
	}
	if err := req.Sign(testSecret); err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	return req.String()
}

func TestConvertZapReceipt(t *testing.T) {
	evt := signed(t, KindZapReceipt, "", nostr.Tags{
		{"p", "recipient"},
		{"e", "target-id"},
		{"bolt11", "lnbc10u1pvjluez"},
		{"description", zapRequest(t, "21000")},
	})

	events, err := Convert(&evt, "wss://relay")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("Expected 1 event, got %d", len(events))
	}
	ref := events[0].(app.RefReceived).Ref
	if ref.Kind != domain.RefZap || ref.Target != "target-id" {
		t.Errorf("Expected zap on target-id, got %+v", ref)
	}
	if ref.Amount != 21000 {
		t.Errorf("Expected amount from the zap request, got %d", ref.Amount)
	}
	if ref.Author != testKeys(t).Public {
		t.Errorf("Expected sender from the zap request, got %s", ref.Author)
	}
	if ref.Content != "great post" {
		t.Errorf("Expected zap comment, got %q", ref.Content)
	}
}

func TestConvertZapReceiptFallsBackToInvoice(t *testing.T) {
	evt := signed(t, KindZapReceipt, "", nostr.Tags{
		{"e", "target-id"},
		{"P", "sender"},
		{"bolt11", "lnbc10u1pvjluez"},
		{"description", zapRequest(t, "")},
	})

	events, err := Convert(&evt, "wss://relay")
	if err != nil {
		t.Fatalf("Convert failed: %v", err)
	}
	ref := events[0].(app.RefReceived).Ref
	if ref.Amount != 1_000_000 {
		t.Errorf("Expected amount from the invoice, got %d", ref.Amount)
	}
	if ref.Author != "sender" {
		t.Errorf("Expected sender from the P tag, got %s", ref.Author)
	}
}

func TestConvertZapReceiptWithoutTarget(t *testing.T) {
	evt := signed(t, KindZapReceipt, "", nostr.Tags{{"bolt11", "lnbc10u1pvjluez"}})
	if _, err := Convert(&evt, "wss://relay"); err == nil {
		t.Error("Expected an error for a zap receipt without e tag")
	}
}
