package common

import (
	"github.com/deemkeen/nostui/app"
	"github.com/deemkeen/nostui/relay"
	"github.com/deemkeen/nostui/util"
)

// AuthorLabel is the profile name of pubkey, or its shortened npub when no
// profile has been seen.
func AuthorLabel(snap app.Snapshot, pubkey string) string {
	if p, ok := snap.Profile(pubkey); ok {
		if l := util.NormalizeInput(p.Label()); l != "" {
			return l
		}
	}
	return util.ShortKey(relay.NPub(pubkey))
}
