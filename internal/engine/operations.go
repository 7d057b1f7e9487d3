package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"tcsgo-engine/internal/caseopen"
	"tcsgo-engine/internal/identity"
	"tcsgo-engine/internal/model"
	"tcsgo-engine/pkg/apierror"
	"tcsgo-engine/pkg/uid"
)

// BuyCaseData is the payload of a successful buy-case operation.
type BuyCaseData struct {
	CaseID      string `json:"caseId"`
	DisplayName string `json:"displayName"`
	Quantity    int    `json:"qty"`
	Owned       int    `json:"owned"`
}

// BuyCase credits qty unopened cases of the aliased case to the account.
func (e *Engine) BuyCase(ctx context.Context, eventID string, id Identity, alias string, qty int) *model.Envelope {
	return e.commit(ctx, "buy-case", eventID, id, func(ledger *model.Ledger, acct *model.Account, now time.Time) (interface{}, bool, error) {
		if strings.TrimSpace(alias) == "" {
			return nil, false, apierror.Validation(CodeMissingAlias, "case alias is required")
		}
		if qty < 1 {
			return nil, false, apierror.Validation(CodeMissingQty, "qty must be a positive integer")
		}

		entry, ok := e.catalog.ResolveAlias(alias)
		if !ok {
			return nil, false, apierror.NotFound(CodeAliasNotFound, fmt.Sprintf("unknown case alias %q", alias))
		}

		acct.Cases[entry.CaseID] += qty
		return BuyCaseData{
			CaseID:      entry.CaseID,
			DisplayName: entry.DisplayName,
			Quantity:    qty,
			Owned:       acct.Cases[entry.CaseID],
		}, true, nil
	})
}

// BuyKeyData is the payload of a successful buy-key operation.
type BuyKeyData struct {
	KeyID    string `json:"keyId"`
	Quantity int    `json:"qty"`
	Owned    int    `json:"owned"`
}

// BuyKey credits qty case keys to the account.
func (e *Engine) BuyKey(ctx context.Context, eventID string, id Identity, qty int) *model.Envelope {
	return e.commit(ctx, "buy-key", eventID, id, func(ledger *model.Ledger, acct *model.Account, now time.Time) (interface{}, bool, error) {
		if qty < 1 {
			return nil, false, apierror.Validation(CodeMissingQty, "qty must be a positive integer")
		}

		acct.Keys[e.keyID] += qty
		return BuyKeyData{KeyID: e.keyID, Quantity: qty, Owned: acct.Keys[e.keyID]}, true, nil
	})
}

// OpenCaseData is the payload of a successful open-case operation.
type OpenCaseData struct {
	CaseID    string            `json:"caseId"`
	CaseName  string            `json:"caseName"`
	Item      *model.OwnedItem  `json:"item"`
	CasesLeft int               `json:"casesLeft"`
	KeysLeft  int               `json:"keysLeft"`
}

// OpenCase consumes one case and one key, runs the weighted draw, prices
// the outcome and appends the new item with its trade lock and snapshot.
func (e *Engine) OpenCase(ctx context.Context, eventID string, id Identity, alias string) *model.Envelope {
	return e.commit(ctx, "open-case", eventID, id, func(ledger *model.Ledger, acct *model.Account, now time.Time) (interface{}, bool, error) {
		if strings.TrimSpace(alias) == "" {
			return nil, false, apierror.Validation(CodeMissingAlias, "case alias is required")
		}

		entry, ok := e.catalog.ResolveAlias(alias)
		if !ok {
			return nil, false, apierror.NotFound(CodeAliasNotFound, fmt.Sprintf("unknown case alias %q", alias))
		}
		def, ok := e.catalog.Case(entry.CaseID)
		if !ok {
			return nil, false, apierror.InternalError(fmt.Sprintf("no odds configured for case %q", entry.CaseID))
		}

		if acct.Cases[entry.CaseID] < 1 {
			return nil, false, apierror.State(CodeNoCases, fmt.Sprintf("no unopened %s", entry.DisplayName))
		}
		if acct.Keys[e.keyID] < 1 {
			return nil, false, apierror.State(CodeNoKeys, "no case keys")
		}

		outcome, err := caseopen.Open(def, e.source)
		if err != nil {
			return nil, false, apierror.InternalError(err.Error())
		}

		acct.Cases[entry.CaseID]--
		if acct.Cases[entry.CaseID] == 0 {
			delete(acct.Cases, entry.CaseID)
		}
		acct.Keys[e.keyID]--
		if acct.Keys[e.keyID] == 0 {
			delete(acct.Keys, e.keyID)
		}

		item := &model.OwnedItem{
			OID:           uid.NewOID(now),
			ItemID:        outcome.Item.ItemID,
			DisplayName:   outcome.Item.DisplayName,
			Rarity:        outcome.Item.Rarity,
			Tier:          outcome.Tier,
			StatTrak:      outcome.StatTrak,
			Wear:          outcome.Wear,
			AcquiredAt:    now,
			LockedUntil:   e.lock.LockedUntil(now),
			PriceSnapshot: e.oracle.Value(outcome.Item.ItemID, outcome.Item.Rarity, outcome.Wear, outcome.StatTrak),
		}
		acct.Items = append(acct.Items, item)

		return OpenCaseData{
			CaseID:    entry.CaseID,
			CaseName:  entry.DisplayName,
			Item:      item,
			CasesLeft: acct.Cases[entry.CaseID],
			KeysLeft:  acct.Keys[e.keyID],
		}, true, nil
	})
}

// InventoryData is the read-only account snapshot.
type InventoryData struct {
	Coins       int64              `json:"coins"`
	Cases       map[string]int     `json:"cases"`
	Keys        map[string]int     `json:"keys"`
	Items       []*model.OwnedItem `json:"items"`
	PendingSell *model.PendingSell `json:"pendingSell,omitempty"`
}

// ListInventory returns the account's holdings. Read-only: an identity
// never seen before gets an empty snapshot without a document write.
func (e *Engine) ListInventory(ctx context.Context, id Identity) (*InventoryData, error) {
	username := strings.TrimSpace(id.Username)
	if username == "" {
		return nil, apierror.Validation(CodeMissingUsername, "username is required")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	ledger, err := e.store.Load(ctx)
	if err != nil {
		return nil, apierror.Persistence(CodeLoadError, err.Error())
	}

	key := identity.CanonicalKey(identity.NormalizePlatform(id.Platform), username)
	snapshot, ok := identity.Lookup(ledger, key)
	if !ok {
		snapshot = model.NewAccount(e.clock().UTC())
	}

	return &InventoryData{
		Coins:       snapshot.Coins,
		Cases:       snapshot.Cases,
		Keys:        snapshot.Keys,
		Items:       snapshot.Items,
		PendingSell: snapshot.PendingSell,
	}, nil
}
