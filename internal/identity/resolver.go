package identity

import (
	"fmt"
	"strings"
	"time"

	"tcsgo-engine/internal/model"
	"tcsgo-engine/pkg/uid"
)

// Platforms the chat layer can deliver events from.
const (
	PlatformTwitch  = "twitch"
	PlatformYouTube = "youtube"
	PlatformTikTok  = "tiktok"
	PlatformKick    = "kick"
)

// NormalizePlatform maps a raw platform string to a known platform by
// case-insensitive substring match, defaulting to twitch.
func NormalizePlatform(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "youtube"):
		return PlatformYouTube
	case strings.Contains(s, "tiktok"):
		return PlatformTikTok
	case strings.Contains(s, "kick"):
		return PlatformKick
	default:
		return PlatformTwitch
	}
}

// CanonicalKey builds the canonical "platform:handle" identity key.
func CanonicalKey(platform, handle string) string {
	return fmt.Sprintf("%s:%s",
		strings.ToLower(strings.TrimSpace(platform)),
		strings.ToLower(strings.TrimSpace(handle)))
}

// Resolve returns the account for an identity key, creating a zeroed
// account on first sight. Lookups follow merge tombstones so identities
// pointing at a merged-away record land on the survivor.
func Resolve(ledger *model.Ledger, key string, now time.Time) *model.Account {
	if id, ok := ledger.IdentityIndex[key]; ok {
		if acct := follow(ledger, id); acct != nil {
			return acct
		}
	}

	acct := model.NewAccount(now)
	acct.Identities = []string{key}
	id := uid.NewAccountID()
	ledger.Accounts[id] = acct
	ledger.IdentityIndex[key] = id
	return acct
}

// Lookup returns the account for an identity key without creating one,
// following merge tombstones.
func Lookup(ledger *model.Ledger, key string) (*model.Account, bool) {
	id, ok := ledger.IdentityIndex[key]
	if !ok {
		return nil, false
	}
	acct := follow(ledger, id)
	return acct, acct != nil
}

// follow walks mergedInto pointers to the surviving account. Tombstoned
// records are never deleted, so chains of any depth stay resolvable.
func follow(ledger *model.Ledger, id string) *model.Account {
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		seen[id] = true
		acct, ok := ledger.Accounts[id]
		if !ok {
			return nil
		}
		if acct.MergedInto == "" {
			return acct
		}
		id = acct.MergedInto
	}
	return nil
}

// accountID finds the id an identity key currently resolves to, following
// tombstones. Returns the surviving id, or "" when unknown.
func accountID(ledger *model.Ledger, id string) string {
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		seen[id] = true
		acct, ok := ledger.Accounts[id]
		if !ok {
			return ""
		}
		if acct.MergedInto == "" {
			return id
		}
		id = acct.MergedInto
	}
	return ""
}
