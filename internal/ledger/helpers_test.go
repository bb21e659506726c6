package ledger

import (
	"testing"

	"github.com/noobcash/noobcash-go/internal/crypto"
)

func mustKeyPair(t *testing.T) crypto.KeyPair {
	t.Helper()
	kp, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("GenerateKeyPair: %v", err)
	}
	return kp
}
