package identity

import (
	"testing"
	"time"

	"tcsgo-engine/internal/model"
)

func TestNormalizePlatform(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{raw: "twitch", want: PlatformTwitch},
		{raw: "Twitch Chat", want: PlatformTwitch},
		{raw: "YouTube", want: PlatformYouTube},
		{raw: "youtube-live", want: PlatformYouTube},
		{raw: "TikTok LIVE", want: PlatformTikTok},
		{raw: "kick.com", want: PlatformKick},
		{raw: "", want: PlatformTwitch},
		{raw: "somewhere-else", want: PlatformTwitch},
	}

	for _, tc := range tests {
		if got := NormalizePlatform(tc.raw); got != tc.want {
			t.Errorf("NormalizePlatform(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCanonicalKey(t *testing.T) {
	if got := CanonicalKey(" Twitch ", " Alice "); got != "twitch:alice" {
		t.Fatalf("got %q", got)
	}
}

func TestResolveCreatesOnFirstSight(t *testing.T) {
	ledger := model.NewLedger()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	acct := Resolve(ledger, "twitch:alice", now)
	if acct == nil {
		t.Fatal("expected account")
	}
	if acct.Coins != 0 || len(acct.Items) != 0 || acct.PendingSell != nil {
		t.Fatalf("new account not zeroed: %+v", acct)
	}
	if len(ledger.Accounts) != 1 {
		t.Fatalf("expected 1 account, got %d", len(ledger.Accounts))
	}

	// Second resolve returns the same account, not a new one.
	again := Resolve(ledger, "twitch:alice", now.Add(time.Hour))
	if again != acct {
		t.Fatal("resolve created a duplicate account")
	}
}

func TestResolveFollowsTombstones(t *testing.T) {
	ledger := model.NewLedger()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	survivor := model.NewAccount(now)
	survivor.Coins = 100
	merged := model.NewAccount(now)
	merged.MergedInto = "inv_survivor"

	ledger.Accounts["inv_survivor"] = survivor
	ledger.Accounts["inv_merged"] = merged
	ledger.IdentityIndex["twitch:alice"] = "inv_merged"

	acct := Resolve(ledger, "twitch:alice", now)
	if acct != survivor {
		t.Fatal("resolve did not follow mergedInto to the survivor")
	}
}

func TestReconcileMergesLinkedIdentities(t *testing.T) {
	ledger := model.NewLedger()
	early := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	twitchAcct := model.NewAccount(early)
	twitchAcct.Coins = 100
	twitchAcct.Cases["chroma-case"] = 2
	twitchAcct.Items = append(twitchAcct.Items, &model.OwnedItem{OID: "oid_a"})
	twitchAcct.Identities = []string{"twitch:alice"}

	youtubeAcct := model.NewAccount(later)
	youtubeAcct.Coins = 50
	youtubeAcct.Cases["chroma-case"] = 1
	// oid_a duplicates an item already in the survivor and must be skipped.
	youtubeAcct.Items = append(youtubeAcct.Items,
		&model.OwnedItem{OID: "oid_a"},
		&model.OwnedItem{OID: "oid_b"},
	)
	youtubeAcct.Identities = []string{"youtube:alice"}

	ledger.Accounts["inv_twitch"] = twitchAcct
	ledger.Accounts["inv_youtube"] = youtubeAcct
	ledger.IdentityIndex["twitch:alice"] = "inv_twitch"
	ledger.IdentityIndex["youtube:alice"] = "inv_youtube"

	report := Reconcile(ledger, []LinkedUser{
		{DiscordID: "discord1", Identities: []string{"twitch:alice", "youtube:alice"}},
	}, now)

	if report.Merged != 1 {
		t.Fatalf("merged: got %d want 1", report.Merged)
	}
	if report.DuplicateOIDs != 1 {
		t.Fatalf("duplicate oids: got %d want 1", report.DuplicateOIDs)
	}

	// The older account survives.
	if ledger.DiscordIndex["discord1"] != "inv_twitch" {
		t.Fatalf("discord index: got %q", ledger.DiscordIndex["discord1"])
	}
	if twitchAcct.Coins != 150 {
		t.Fatalf("coins: got %d want 150", twitchAcct.Coins)
	}
	if twitchAcct.Cases["chroma-case"] != 3 {
		t.Fatalf("cases: got %d want 3", twitchAcct.Cases["chroma-case"])
	}
	if len(twitchAcct.Items) != 2 {
		t.Fatalf("items: got %d want 2", len(twitchAcct.Items))
	}

	// The merged-away account is tombstoned, not deleted.
	if youtubeAcct.MergedInto != "inv_twitch" || youtubeAcct.MergedAt == nil {
		t.Fatalf("tombstone missing: %+v", youtubeAcct)
	}
	if youtubeAcct.Coins != 0 || len(youtubeAcct.Items) != 0 {
		t.Fatalf("tombstone still holds assets: %+v", youtubeAcct)
	}
	if _, ok := ledger.Accounts["inv_youtube"]; !ok {
		t.Fatal("tombstoned account was deleted")
	}

	// Both identities now resolve to the survivor.
	for _, key := range []string{"twitch:alice", "youtube:alice"} {
		if acct := Resolve(ledger, key, now); acct != twitchAcct {
			t.Fatalf("identity %q does not resolve to the survivor", key)
		}
	}
}

func TestReconcileIdempotent(t *testing.T) {
	ledger := model.NewLedger()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	acct := model.NewAccount(now)
	acct.Coins = 100
	acct.Identities = []string{"twitch:bob"}
	ledger.Accounts["inv_bob"] = acct
	ledger.IdentityIndex["twitch:bob"] = "inv_bob"

	users := []LinkedUser{{DiscordID: "d1", Identities: []string{"twitch:bob"}}}
	Reconcile(ledger, users, now)
	report := Reconcile(ledger, users, now.Add(time.Hour))

	if report.Merged != 0 {
		t.Fatalf("second pass merged %d accounts", report.Merged)
	}
	if acct.Coins != 100 {
		t.Fatalf("coins changed: %d", acct.Coins)
	}
}
