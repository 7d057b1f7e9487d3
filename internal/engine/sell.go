package engine

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"tcsgo-engine/internal/model"
	"tcsgo-engine/pkg/apierror"
	"tcsgo-engine/pkg/uid"
)

// SellStartData is the payload of a successful sell-start: the quote the
// caller must confirm before the token expires.
type SellStartData struct {
	Token        string            `json:"token"`
	ExpiresAt    time.Time         `json:"expiresAt"`
	Item         model.ItemSummary `json:"item"`
	CreditAmount int64             `json:"creditAmount"`
}

// SellStart begins the two-phase sell: resolves the item reference, rejects
// locked items and live pending sells, quotes the credit from the stored
// price snapshot and stores a tokened pending sell with a fixed TTL.
func (e *Engine) SellStart(ctx context.Context, eventID string, id Identity, itemRef string) *model.Envelope {
	return e.commit(ctx, "sell-start", eventID, id, func(ledger *model.Ledger, acct *model.Account, now time.Time) (interface{}, bool, error) {
		itemRef = strings.TrimSpace(itemRef)
		if itemRef == "" {
			return nil, false, apierror.Validation(CodeMissingItemRef, "item reference is required")
		}

		dirty := false
		if acct.PendingSell != nil {
			if now.Before(acct.PendingSell.ExpiresAt) {
				return nil, false, apierror.State(CodePendingSell,
					"a sell is already pending; confirm it or wait for it to expire")
			}
			// Lazy expiry: the slot frees up on the next attempt.
			acct.PendingSell = nil
			dirty = true
		}

		item, err := resolveItemRef(acct, itemRef, e, now)
		if err != nil {
			return nil, dirty, err
		}

		credit := creditAmount(item.PriceSnapshot.CoinValue, e.oracle.FeePercent())
		token, err := uid.NewToken("sell_")
		if err != nil {
			return nil, dirty, apierror.InternalError(err.Error())
		}

		acct.PendingSell = &model.PendingSell{
			Token:        token,
			OID:          item.OID,
			ExpiresAt:    now.Add(e.sellTTL),
			ItemSummary:  item.Summary(),
			CreditAmount: credit,
		}

		return SellStartData{
			Token:        token,
			ExpiresAt:    acct.PendingSell.ExpiresAt,
			Item:         acct.PendingSell.ItemSummary,
			CreditAmount: credit,
		}, true, nil
	})
}

// SellConfirmData is the payload of a successful sell-confirm.
type SellConfirmData struct {
	Sold         model.ItemSummary `json:"sold"`
	CreditAmount int64             `json:"creditAmount"`
	NewBalance   int64             `json:"newBalance"`
}

// SellConfirm completes the two-phase sell. An expired token clears the
// pending sell as a side effect and still fails; a mismatched token leaves
// it untouched.
func (e *Engine) SellConfirm(ctx context.Context, eventID string, id Identity, token string) *model.Envelope {
	return e.commit(ctx, "sell-confirm", eventID, id, func(ledger *model.Ledger, acct *model.Account, now time.Time) (interface{}, bool, error) {
		token = strings.TrimSpace(token)
		if token == "" {
			return nil, false, apierror.Validation(CodeMissingToken, "sell token is required")
		}

		pending := acct.PendingSell
		if pending == nil {
			return nil, false, apierror.State(CodeNoPendingSell, "no sell is pending")
		}
		if pending.Token != token {
			return nil, false, apierror.State(CodeInvalidToken, "sell token does not match")
		}
		if !now.Before(pending.ExpiresAt) {
			acct.PendingSell = nil
			return nil, true, apierror.State(CodeTokenExpired, "sell token expired")
		}

		if !acct.RemoveItem(pending.OID) {
			// Valid token but the item is gone (e.g. merged away).
			acct.PendingSell = nil
			return nil, true, apierror.NotFound(CodeItemNotFound, "item no longer in inventory")
		}

		acct.Coins += pending.CreditAmount
		sold := pending.ItemSummary
		credit := pending.CreditAmount
		acct.PendingSell = nil

		return SellConfirmData{
			Sold:         sold,
			CreditAmount: credit,
			NewBalance:   acct.Coins,
		}, true, nil
	})
}

// resolveItemRef resolves an exact oid or a name/itemId query to exactly
// one unlocked item.
func resolveItemRef(acct *model.Account, ref string, e *Engine, now time.Time) (*model.OwnedItem, error) {
	if item := acct.ItemByOID(ref); item != nil {
		if st := e.lock.Status(item, now); st.Locked {
			return nil, lockedError(st.Remaining)
		}
		return item, nil
	}

	var unlocked []*model.OwnedItem
	var lockedRemaining time.Duration
	matches := 0
	for _, item := range acct.Items {
		if !strings.EqualFold(item.DisplayName, ref) && !strings.EqualFold(item.ItemID, ref) {
			continue
		}
		matches++
		if st := e.lock.Status(item, now); st.Locked {
			if st.Remaining > lockedRemaining {
				lockedRemaining = st.Remaining
			}
			continue
		}
		unlocked = append(unlocked, item)
	}

	switch {
	case matches == 0:
		return nil, apierror.NotFound(CodeItemNotFound, fmt.Sprintf("no item matching %q", ref))
	case len(unlocked) == 0:
		return nil, lockedError(lockedRemaining)
	case len(unlocked) > 1:
		oids := make([]string, len(unlocked))
		for i, item := range unlocked {
			oids[i] = item.OID
		}
		return nil, apierror.State(CodeAmbiguousItem,
			fmt.Sprintf("%d items match %q; sell by oid", len(unlocked), ref)).
			WithDetails(map[string]interface{}{"oids": oids})
	default:
		return unlocked[0], nil
	}
}

func lockedError(remaining time.Duration) *apierror.Error {
	return apierror.State(CodeItemLocked,
		fmt.Sprintf("item is trade-locked for another %s", remaining.Round(time.Second))).
		WithDetails(map[string]interface{}{"remainingSeconds": int64(remaining.Seconds())})
}

// creditAmount applies the market fee as floor(coin * (1 - fee/100)) using
// basis points so the floor is exact integer arithmetic.
func creditAmount(coinValue int64, feePercent float64) int64 {
	feeBps := int64(math.Round(feePercent * 100))
	if feeBps < 0 {
		feeBps = 0
	}
	if feeBps > 10000 {
		feeBps = 10000
	}
	return coinValue * (10000 - feeBps) / 10000
}
