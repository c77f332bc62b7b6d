package relay

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/deemkeen/nostui/domain"
	"github.com/nbd-wtf/go-nostr"
)

// toZap reads a NIP-57 zap receipt. The sender comes from the P tag or the
// embedded zap request; the amount from the request, else the invoice.
func toZap(evt *nostr.Event) (domain.Ref, error) {
	target := lastTag(evt.Tags, "e")
	if target == "" {
		return domain.Ref{}, fmt.Errorf("%w: zap receipt without e tag", ErrInvalidEvent)
	}

	var request *nostr.Event
	if desc := lastTag(evt.Tags, "description"); desc != "" {
		var req nostr.Event
		if err := json.Unmarshal([]byte(desc), &req); err == nil && req.Kind == nostr.KindZapRequest {
			request = &req
		}
	}

	sender := lastTag(evt.Tags, "P")
	if sender == "" && request != nil {
		sender = request.PubKey
	}
	if sender == "" {
		sender = evt.PubKey
	}

	var amount int64
	if request != nil {
		if v, err := strconv.ParseInt(lastTag(request.Tags, "amount"), 10, 64); err == nil && v > 0 {
			amount = v
		}
	}
	if amount == 0 {
		if v, ok := invoiceMsats(lastTag(evt.Tags, "bolt11")); ok {
			amount = v
		}
	}

	content := ""
	if request != nil {
		content = request.Content
	}
	return domain.Ref{
		Kind:      domain.RefZap,
		ID:        evt.ID,
		Author:    sender,
		Target:    target,
		Content:   content,
		Amount:    amount,
		CreatedAt: evt.CreatedAt.Time(),
	}, nil
}

// Millisatoshis per unit of each BOLT11 amount multiplier.
var invoiceUnits = map[string]int64{
	"":  100_000_000_000,
	"m": 100_000_000,
	"u": 100_000,
	"n": 100,
}

// invoiceMsats reads the amount in the human readable part of a BOLT11
// invoice, e.g. lnbc2500u1... is 250000000 msats.
func invoiceMsats(invoice string) (int64, bool) {
	s := strings.ToLower(strings.TrimSpace(invoice))
	sep := strings.LastIndexByte(s, '1')
	if !strings.HasPrefix(s, "ln") || sep < 0 {
		return 0, false
	}
	hrp := s[2:sep]

	i := 0
	for i < len(hrp) && hrp[i] >= 'a' && hrp[i] <= 'z' {
		i++
	}
	j := i
	for j < len(hrp) && hrp[j] >= '0' && hrp[j] <= '9' {
		j++
	}
	if j == i {
		return 0, false
	}
	n, err := strconv.ParseInt(hrp[i:j], 10, 64)
	if err != nil {
		return 0, false
	}

	unit := hrp[j:]
	if unit == "p" {
		return n / 10, true
	}
	per, ok := invoiceUnits[unit]
	if !ok {
		return 0, false
	}
	return n * per, true
}
