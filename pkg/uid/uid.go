package uid

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New generates a new unique identifier.
func New() string {
	return uuid.New().String()
}

// NewAccountID generates an account id in the ledger's "inv_<uuid>" form.
func NewAccountID() string {
	return "inv_" + uuid.New().String()
}

// NewOID generates an owned-item id derived from time plus randomness, so
// ids sort roughly by acquisition while staying unique within an account.
func NewOID(now time.Time) string {
	frag := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return fmt.Sprintf("oid_%d_%s", now.UnixMilli(), frag)
}

// NewToken generates an unguessable token with the given prefix.
func NewToken(prefix string) (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return prefix + hex.EncodeToString(buf), nil
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
