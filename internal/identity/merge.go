package identity

import (
	"log"
	"sort"
	"time"

	"tcsgo-engine/internal/model"
	"tcsgo-engine/pkg/uid"
)

// LinkedUser is one Discord user's set of linked platform identities, as
// supplied by the (external) linking service.
type LinkedUser struct {
	DiscordID  string   `json:"discordId"`
	Identities []string `json:"identities"`
}

// MergeReport summarizes what one reconcile pass changed.
type MergeReport struct {
	UsersProcessed int `json:"usersProcessed"`
	Merged         int `json:"merged"`
	DuplicateOIDs  int `json:"duplicateOids"`
}

// Reconcile merges each Discord user's linked identities into one canonical
// account. Merged-away records are tombstoned, never deleted; their
// holdings move to the survivor, skipping duplicate oids. The identity and
// discord indexes are repointed at the survivor.
func Reconcile(ledger *model.Ledger, users []LinkedUser, now time.Time) MergeReport {
	var report MergeReport

	for _, user := range users {
		if user.DiscordID == "" || len(user.Identities) == 0 {
			continue
		}
		report.UsersProcessed++

		canonicalID := ledger.DiscordIndex[user.DiscordID]
		canonicalID = accountID(ledger, canonicalID)

		// Candidate accounts already holding any of the linked identities,
		// oldest first so the earliest inventory survives.
		var sourceIDs []string
		for _, identity := range user.Identities {
			if id := accountID(ledger, ledger.IdentityIndex[identity]); id != "" {
				sourceIDs = append(sourceIDs, id)
			}
		}
		sourceIDs = dedupe(sourceIDs)
		sort.Slice(sourceIDs, func(i, j int) bool {
			return ledger.Accounts[sourceIDs[i]].CreatedAt.Before(ledger.Accounts[sourceIDs[j]].CreatedAt)
		})

		if canonicalID == "" {
			if len(sourceIDs) > 0 {
				canonicalID = sourceIDs[0]
			} else {
				acct := model.NewAccount(now)
				canonicalID = uid.NewAccountID()
				ledger.Accounts[canonicalID] = acct
			}
		}
		ledger.DiscordIndex[user.DiscordID] = canonicalID
		target := ledger.Accounts[canonicalID]

		for _, sourceID := range sourceIDs {
			if sourceID == canonicalID {
				continue
			}
			report.DuplicateOIDs += mergeInto(target, ledger.Accounts[sourceID], canonicalID, now)
			report.Merged++
			log.Printf("[Identity] merged account %s into %s (discord=%s)", sourceID, canonicalID, user.DiscordID)
		}

		// Every linked identity resolves to the survivor from here on.
		for _, identity := range user.Identities {
			ledger.IdentityIndex[identity] = canonicalID
			if !contains(target.Identities, identity) {
				target.Identities = append(target.Identities, identity)
			}
		}
		target.LastModified = now
	}

	return report
}

// mergeInto moves source's holdings onto target and tombstones source.
// Returns the number of duplicate oids skipped.
func mergeInto(target, source *model.Account, targetID string, now time.Time) int {
	existing := make(map[string]bool, len(target.Items))
	for _, it := range target.Items {
		existing[it.OID] = true
	}

	skipped := 0
	for _, it := range source.Items {
		if existing[it.OID] {
			skipped++
			continue
		}
		existing[it.OID] = true
		target.Items = append(target.Items, it)
	}

	for caseID, n := range source.Cases {
		if n > 0 {
			target.Cases[caseID] += n
		}
	}
	for keyID, n := range source.Keys {
		if n > 0 {
			target.Keys[keyID] += n
		}
	}
	target.Coins += source.Coins

	for _, identity := range source.Identities {
		if !contains(target.Identities, identity) {
			target.Identities = append(target.Identities, identity)
		}
	}
	if source.CreatedAt.Before(target.CreatedAt) {
		target.CreatedAt = source.CreatedAt
	}

	mergedAt := now
	source.Coins = 0
	source.Cases = make(map[string]int)
	source.Keys = make(map[string]int)
	source.Items = []*model.OwnedItem{}
	source.PendingSell = nil
	source.MergedInto = targetID
	source.MergedAt = &mergedAt
	source.LastModified = now

	return skipped
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
