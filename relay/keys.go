package relay

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

var ErrInvalidKey = errors.New("invalid key")

// Keys is the local user's key pair in hex, plus the npub for display.
type Keys struct {
	Secret string
	Public string
	NPub   string
}

// ParseSecretKey accepts an nsec or 64 hex characters and derives the
// public key.
func ParseSecretKey(raw string) (Keys, error) {
	sk := strings.TrimSpace(raw)
	if strings.HasPrefix(sk, "nsec") {
		prefix, val, err := nip19.Decode(sk)
		if err != nil {
			return Keys{}, fmt.Errorf("%w: failed to decode nsec: %v", ErrInvalidKey, err)
		}
		if prefix != "nsec" {
			return Keys{}, fmt.Errorf("%w: expected nsec prefix, got %s", ErrInvalidKey, prefix)
		}
		sk = val.(string)
	}
	if !isHexKey(sk) {
		return Keys{}, fmt.Errorf("%w: expected nsec or 64 hex characters", ErrInvalidKey)
	}

	pk, err := nostr.GetPublicKey(sk)
	if err != nil {
		return Keys{}, fmt.Errorf("%w: failed to derive public key: %v", ErrInvalidKey, err)
	}

	npub, err := nip19.EncodePublicKey(pk)
	if err != nil {
		return Keys{}, fmt.Errorf("%w: failed to encode npub: %v", ErrInvalidKey, err)
	}

	return Keys{Secret: sk, Public: pk, NPub: npub}, nil
}

// ParsePublicKey accepts an npub or 64 hex characters and returns hex.
func ParsePublicKey(raw string) (string, error) {
	pk := strings.TrimSpace(raw)
	if strings.HasPrefix(pk, "npub") {
		prefix, val, err := nip19.Decode(pk)
		if err != nil {
			return "", fmt.Errorf("%w: failed to decode npub: %v", ErrInvalidKey, err)
		}
		if prefix != "npub" {
			return "", fmt.Errorf("%w: expected npub prefix, got %s", ErrInvalidKey, prefix)
		}
		pk = val.(string)
	}
	if !isHexKey(pk) {
		return "", fmt.Errorf("%w: expected npub or 64 hex characters", ErrInvalidKey)
	}
	return strings.ToLower(pk), nil
}

// ParsePublicKeys parses a follow list, naming the first bad entry.
func ParsePublicKeys(raw []string) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		pk, err := ParsePublicKey(r)
		if err != nil {
			return nil, fmt.Errorf("follow %q: %w", r, err)
		}
		out = append(out, pk)
	}
	return out, nil
}

// NPub encodes a hex public key for display, falling back to the hex.
func NPub(pk string) string {
	npub, err := nip19.EncodePublicKey(pk)
	if err != nil {
		return pk
	}
	return npub
}

func isHexKey(s string) bool {
	if len(s) != 64 {
		return false
	}
	_, err := hex.DecodeString(s)
	return err == nil
}
