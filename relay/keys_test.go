package relay

import (
	"errors"
	"strings"
	"testing"

	"github.com/nbd-wtf/go-nostr"
	"github.com/nbd-wtf/go-nostr/nip19"
)

const testSecret = "5acff99d1ad3e1706360d213fd69203312d9b5e91a2d5f2e06100cc6f686e5b3"

func TestParseSecretKeyHexAndNsec(t *testing.T) {
	pk, err := nostr.GetPublicKey(testSecret)
	if err != nil {
		t.Fatalf("GetPublicKey failed: %v", err)
	}
	nsec, err := nip19.EncodePrivateKey(testSecret)
	if err != nil {
		t.Fatalf("EncodePrivateKey failed: %v", err)
	}

	for _, raw := range []string{testSecret, nsec, "  " + nsec + "\n"} {
		keys, err := ParseSecretKey(raw)
		if err != nil {
			t.Fatalf("ParseSecretKey(%q) failed: %v", raw, err)
		}
		if keys.Secret != testSecret {
			t.Errorf("Expected secret %s, got %s", testSecret, keys.Secret)
		}
		if keys.Public != pk {
			t.Errorf("Expected public key %s, got %s", pk, keys.Public)
		}
		if !strings.HasPrefix(keys.NPub, "npub1") {
			t.Errorf("Expected npub, got %s", keys.NPub)
		}
	}
}

func TestParseSecretKeyRejects(t *testing.T) {
	npub := NPub(strings.Repeat("a", 64))
	tests := []string{
		"",
		"abc",
		strings.Repeat("z", 64),
		"nsec1notbech32",
		npub,
	}
	for _, raw := range tests {
		if _, err := ParseSecretKey(raw); !errors.Is(err, ErrInvalidKey) {
			t.Errorf("ParseSecretKey(%q): Expected ErrInvalidKey, got %v", raw, err)
		}
	}
}

func TestParsePublicKeys(t *testing.T) {
	keys, err := ParseSecretKey(testSecret)
	if err != nil {
		t.Fatal(err)
	}
	upper := strings.ToUpper(keys.Public)

	got, err := ParsePublicKeys([]string{keys.NPub, upper})
	if err != nil {
		t.Fatalf("ParsePublicKeys failed: %v", err)
	}
	if len(got) != 2 || got[0] != keys.Public || got[1] != keys.Public {
		t.Errorf("Expected both entries to be %s, got %v", keys.Public, got)
	}

	_, err = ParsePublicKeys([]string{keys.NPub, "bogus"})
	if !errors.Is(err, ErrInvalidKey) || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("Expected error naming 'bogus', got %v", err)
	}
}
