package model

import "time"

// Schema versions understood by the store. SchemaV1 is a migration source
// only; every document in memory and on disk after a save is SchemaV2.
const (
	SchemaV1 = "1.0-inventories"
	SchemaV2 = "2.0-inventories"
)

// Ledger is the whole persisted document: every account, plus the indexes
// that map identities and Discord users to account ids.
type Ledger struct {
	SchemaVersion string              `json:"schemaVersion"`
	LastModified  time.Time           `json:"lastModified"`
	Accounts      map[string]*Account `json:"inventoriesById"`
	IdentityIndex map[string]string   `json:"identityIndex"`
	DiscordIndex  map[string]string   `json:"discordIndex"`
}

// NewLedger returns an empty schema 2.0 document.
func NewLedger() *Ledger {
	return &Ledger{
		SchemaVersion: SchemaV2,
		Accounts:      make(map[string]*Account),
		IdentityIndex: make(map[string]string),
		DiscordIndex:  make(map[string]string),
	}
}

// Account holds one user's coins, unopened cases/keys and owned items.
// Accounts are created on first reference and never deleted; a merged-away
// account keeps its record as a tombstone pointing at the survivor.
type Account struct {
	CreatedAt    time.Time      `json:"createdAt"`
	LastModified time.Time      `json:"lastModified"`
	Coins        int64          `json:"coins"`
	Cases        map[string]int `json:"cases"`
	Keys         map[string]int `json:"keys"`
	Items        []*OwnedItem   `json:"items"`
	PendingSell  *PendingSell   `json:"pendingSell,omitempty"`
	Identities   []string       `json:"identities"`
	MergedInto   string         `json:"mergedInto,omitempty"`
	MergedAt     *time.Time     `json:"mergedAt,omitempty"`
}

// NewAccount returns a zeroed account created at now.
func NewAccount(now time.Time) *Account {
	return &Account{
		CreatedAt:    now,
		LastModified: now,
		Cases:        make(map[string]int),
		Keys:         make(map[string]int),
		Items:        []*OwnedItem{},
	}
}

// ItemByOID returns the owned item with the given oid, or nil.
func (a *Account) ItemByOID(oid string) *OwnedItem {
	for _, it := range a.Items {
		if it.OID == oid {
			return it
		}
	}
	return nil
}

// RemoveItem removes the item with the given oid, preserving order.
// Returns false if no such item exists.
func (a *Account) RemoveItem(oid string) bool {
	for i, it := range a.Items {
		if it.OID == oid {
			a.Items = append(a.Items[:i], a.Items[i+1:]...)
			return true
		}
	}
	return false
}

// OwnedItem is one item instance in an account. The price snapshot is
// captured at acquisition and is the only price a later sale ever uses.
type OwnedItem struct {
	OID           string        `json:"oid"`
	ItemID        string        `json:"itemId"`
	DisplayName   string        `json:"displayName"`
	Rarity        string        `json:"rarity"`
	Tier          string        `json:"tier"`
	StatTrak      bool          `json:"statTrak"`
	Wear          Wear          `json:"wear"`
	AcquiredAt    time.Time     `json:"acquiredAt"`
	LockedUntil   time.Time     `json:"lockedUntil"`
	PriceSnapshot PriceSnapshot `json:"priceSnapshot"`
}

// PriceSnapshot is the fiat/coin value of an item at acquisition time.
type PriceSnapshot struct {
	FiatValue float64 `json:"fiatValue"`
	CoinValue int64   `json:"coinValue"`
}

// PendingSell is the in-flight state of a two-phase sell. At most one live
// (unexpired) pending sell exists per account.
type PendingSell struct {
	Token        string      `json:"token"`
	OID          string      `json:"oid"`
	ExpiresAt    time.Time   `json:"expiresAt"`
	ItemSummary  ItemSummary `json:"itemSummary"`
	CreditAmount int64       `json:"creditAmount"`
}

// ItemSummary is a denormalized copy of an item kept for display after the
// item itself may have been removed.
type ItemSummary struct {
	OID         string `json:"oid"`
	ItemID      string `json:"itemId"`
	DisplayName string `json:"displayName"`
	Rarity      string `json:"rarity"`
	StatTrak    bool   `json:"statTrak"`
	Wear        Wear   `json:"wear"`
	CoinValue   int64  `json:"coinValue"`
}

// Summary returns the denormalized display copy of an item.
func (it *OwnedItem) Summary() ItemSummary {
	return ItemSummary{
		OID:         it.OID,
		ItemID:      it.ItemID,
		DisplayName: it.DisplayName,
		Rarity:      it.Rarity,
		StatTrak:    it.StatTrak,
		Wear:        it.Wear,
		CoinValue:   it.PriceSnapshot.CoinValue,
	}
}
