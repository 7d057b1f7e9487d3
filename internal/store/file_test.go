package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"tcsgo-engine/internal/model"
)

func tempPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "inventories.json")
}

func sampleLedger() *model.Ledger {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ledger := model.NewLedger()
	ledger.LastModified = now

	acct := model.NewAccount(now)
	acct.Coins = 1500
	acct.Cases["chroma-case"] = 2
	acct.Keys["case-key"] = 1
	acct.Items = append(acct.Items, &model.OwnedItem{
		OID:         "oid_1_abc",
		ItemID:      "ak47-redline",
		DisplayName: "AK-47 | Redline",
		Rarity:      "Classified",
		Tier:        "rare",
		Wear:        model.FieldTested,
		AcquiredAt:  now,
		LockedUntil: now.Add(7 * 24 * time.Hour),
		PriceSnapshot: model.PriceSnapshot{
			FiatValue: 12.34,
			CoinValue: 1234,
		},
	})
	acct.Identities = []string{"twitch:alice"}

	ledger.Accounts["inv_test"] = acct
	ledger.IdentityIndex["twitch:alice"] = "inv_test"
	return ledger
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := tempPath(t)
	s := NewFileStore(path, false)
	ctx := context.Background()

	want := sampleLedger()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestFileStoreAbsentFileIsEmptyLedger(t *testing.T) {
	s := NewFileStore(tempPath(t), false)

	ledger, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ledger.SchemaVersion != model.SchemaV2 {
		t.Fatalf("schema: got %q want %q", ledger.SchemaVersion, model.SchemaV2)
	}
	if len(ledger.Accounts) != 0 {
		t.Fatalf("expected empty ledger, got %d accounts", len(ledger.Accounts))
	}
}

func TestFileStoreCorruptFileFailsLoudly(t *testing.T) {
	path := tempPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, false)
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrCorruptDocument) {
		t.Fatalf("expected ErrCorruptDocument, got %v", err)
	}
}

func TestFileStoreResetOnCorrupt(t *testing.T) {
	path := tempPath(t)
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, true)
	ledger, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(ledger.Accounts) != 0 {
		t.Fatalf("expected fresh ledger, got %d accounts", len(ledger.Accounts))
	}
}

func TestFileStoreUnsupportedSchema(t *testing.T) {
	path := tempPath(t)
	if err := os.WriteFile(path, []byte(`{"schemaVersion":"3.0-inventories"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, false)
	if _, err := s.Load(context.Background()); !errors.Is(err, ErrUnsupportedSchema) {
		t.Fatalf("expected ErrUnsupportedSchema, got %v", err)
	}
}

func TestFileStoreMigratesSchemaV1(t *testing.T) {
	path := tempPath(t)
	v1 := `{
  "schemaVersion": "1.0-inventories",
  "users": {
    "alice:twitch": {
      "coins": 500,
      "cases": {"chroma-case": 1},
      "keys": {},
      "items": [
        {"oid": "oid_1_a", "itemId": "m4a4-howl", "displayName": "M4A4 | Howl",
         "acquiredAt": "2026-01-05T10:00:00Z"}
      ]
    }
  }
}`
	if err := os.WriteFile(path, []byte(v1), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewFileStore(path, false)
	ledger, err := s.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if ledger.SchemaVersion != model.SchemaV2 {
		t.Fatalf("schema: got %q", ledger.SchemaVersion)
	}
	id, ok := ledger.IdentityIndex["twitch:alice"]
	if !ok {
		t.Fatalf("identity index missing twitch:alice: %+v", ledger.IdentityIndex)
	}
	acct := ledger.Accounts[id]
	if acct == nil {
		t.Fatal("account missing")
	}
	if acct.Coins != 500 || acct.Cases["chroma-case"] != 1 || len(acct.Items) != 1 {
		t.Fatalf("holdings not migrated: %+v", acct)
	}
	// createdAt comes from the earliest item acquisition.
	want := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	if !acct.CreatedAt.Equal(want) {
		t.Fatalf("createdAt: got %v want %v", acct.CreatedAt, want)
	}
}

func TestNormalizeNewlines(t *testing.T) {
	got := normalizeNewlines([]byte("a\r\nb\rc\n"))
	if string(got) != "a\nb\nc\n" {
		t.Fatalf("got %q", got)
	}
}

// failingStore always fails Save, standing in for a primary whose write
// verification failed.
type failingStore struct{}

func (failingStore) Load(ctx context.Context) (*model.Ledger, error) { return model.NewLedger(), nil }
func (failingStore) Save(ctx context.Context, l *model.Ledger) error { return ErrVerifyMismatch }
func (failingStore) Close() error                                    { return nil }

func TestFallbackStoreUsesSecondary(t *testing.T) {
	path := tempPath(t)
	secondary := NewFileStore(path, false)
	s := NewFallbackStore(failingStore{}, secondary)
	ctx := context.Background()

	want := sampleLedger()
	if err := s.Save(ctx, want); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := secondary.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatal("secondary did not receive the document")
	}
}

func TestFallbackStoreBothFail(t *testing.T) {
	s := NewFallbackStore(failingStore{}, failingStore{})
	if err := s.Save(context.Background(), model.NewLedger()); err == nil {
		t.Fatal("expected error when all write mechanisms fail")
	}
}
