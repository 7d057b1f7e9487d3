package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"tcsgo-engine/internal/model"
	"tcsgo-engine/pkg/uid"
)

// Encode serializes a ledger deterministically: 2-space indent, sorted map
// keys (encoding/json sorts them), trailing newline. Deterministic output is
// what makes the post-write verification meaningful.
func Encode(ledger *model.Ledger) ([]byte, error) {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger: %w", err)
	}
	return append(data, '\n'), nil
}

// Decode parses a ledger document of either supported schema. Schema 1.0
// documents are migrated to 2.0 in memory; they are rewritten as 2.0 on the
// next save.
func Decode(data []byte) (*model.Ledger, error) {
	var probe struct {
		SchemaVersion string `json:"schemaVersion"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	switch probe.SchemaVersion {
	case model.SchemaV2:
		var ledger model.Ledger
		if err := json.Unmarshal(data, &ledger); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
		}
		normalize(&ledger)
		return &ledger, nil
	case model.SchemaV1:
		return migrateV1(data)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSchema, probe.SchemaVersion)
	}
}

// normalize fills nil maps/slices so callers never branch on them.
func normalize(ledger *model.Ledger) {
	if ledger.Accounts == nil {
		ledger.Accounts = make(map[string]*model.Account)
	}
	if ledger.IdentityIndex == nil {
		ledger.IdentityIndex = make(map[string]string)
	}
	if ledger.DiscordIndex == nil {
		ledger.DiscordIndex = make(map[string]string)
	}
	for _, acct := range ledger.Accounts {
		if acct.Cases == nil {
			acct.Cases = make(map[string]int)
		}
		if acct.Keys == nil {
			acct.Keys = make(map[string]int)
		}
		if acct.Items == nil {
			acct.Items = []*model.OwnedItem{}
		}
	}
}

// v1User is one entry of the flat schema 1.0 "users" map, keyed by
// "username:platform".
type v1User struct {
	Platform string             `json:"platform"`
	Username string             `json:"username"`
	Coins    int64              `json:"coins"`
	Cases    map[string]int     `json:"cases"`
	Keys     map[string]int     `json:"keys"`
	Items    []*model.OwnedItem `json:"items"`
}

// migrateV1 rewrites a flat schema 1.0 document into the normalized form:
// one account per user, identity index entry per identity, createdAt taken
// from the earliest item acquisition.
func migrateV1(data []byte) (*model.Ledger, error) {
	var doc struct {
		Users map[string]v1User `json:"users"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}

	now := time.Now().UTC()
	ledger := model.NewLedger()
	ledger.LastModified = now

	for key, user := range doc.Users {
		platform, username := user.Platform, user.Username
		if platform == "" || username == "" {
			if i := bytes.LastIndexByte([]byte(key), ':'); i > 0 {
				if username == "" {
					username = key[:i]
				}
				if platform == "" {
					platform = key[i+1:]
				}
			}
		}
		if platform == "" || username == "" {
			return nil, fmt.Errorf("%w: missing platform/username for user key %q", ErrCorruptDocument, key)
		}

		identity := canonical(platform, username)
		if _, dup := ledger.IdentityIndex[identity]; dup {
			return nil, fmt.Errorf("%w: duplicate identity %q", ErrCorruptDocument, identity)
		}

		acct := model.NewAccount(earliestAcquired(user.Items, now))
		acct.LastModified = now
		acct.Coins = user.Coins
		if user.Cases != nil {
			acct.Cases = user.Cases
		}
		if user.Keys != nil {
			acct.Keys = user.Keys
		}
		if user.Items != nil {
			acct.Items = user.Items
		}
		acct.Identities = []string{identity}

		id := uid.NewAccountID()
		ledger.Accounts[id] = acct
		ledger.IdentityIndex[identity] = id
	}

	return ledger, nil
}

func canonical(platform, username string) string {
	return fmt.Sprintf("%s:%s", lower(platform), lower(username))
}

func lower(s string) string {
	return string(bytes.ToLower(bytes.TrimSpace([]byte(s))))
}

func earliestAcquired(items []*model.OwnedItem, fallback time.Time) time.Time {
	earliest := fallback
	for _, it := range items {
		if !it.AcquiredAt.IsZero() && it.AcquiredAt.Before(earliest) {
			earliest = it.AcquiredAt
		}
	}
	return earliest
}
