package solana

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mr-tron/base58"
)

func testVault() string {
	return base58.Encode(bytes.Repeat([]byte{0x07}, 32))
}

func TestParsePubkey(t *testing.T) {
	addr := testVault()
	raw, err := ParsePubkey(addr)
	if err != nil {
		t.Fatalf("ParsePubkey failed: %v", err)
	}
	if len(raw) != PubkeyLen {
		t.Errorf("got %d bytes, want %d", len(raw), PubkeyLen)
	}

	if _, err := ParsePubkey("0OIl-not-base58"); err == nil {
		t.Error("invalid base58 must fail")
	}
	if _, err := ParsePubkey(base58.Encode([]byte{1, 2, 3})); err == nil {
		t.Error("short key must fail")
	}
}

func TestFindProgramAddress_Deterministic(t *testing.T) {
	seeds := [][]byte{[]byte("vault"), bytes.Repeat([]byte{0x07}, 32), []byte("policy")}

	addr1, bump1, err := FindProgramAddress(seeds, DistributorProgramID)
	if err != nil {
		t.Fatalf("FindProgramAddress failed: %v", err)
	}
	addr2, bump2, err := FindProgramAddress(seeds, DistributorProgramID)
	if err != nil {
		t.Fatalf("FindProgramAddress failed: %v", err)
	}

	if addr1 != addr2 || bump1 != bump2 {
		t.Errorf("derivation not deterministic: (%s, %d) vs (%s, %d)", addr1, bump1, addr2, bump2)
	}

	// Result must be a well-formed off-curve key.
	raw, err := ParsePubkey(addr1)
	if err != nil {
		t.Fatalf("derived address not a valid pubkey: %v", err)
	}
	if isOnCurve(raw) {
		t.Error("derived address must be off-curve")
	}
}

func TestDeriveVaultAddresses_Distinct(t *testing.T) {
	vault := testVault()

	policy, _, err := DerivePolicyAddress(vault)
	if err != nil {
		t.Fatalf("DerivePolicyAddress failed: %v", err)
	}
	progress, _, err := DeriveProgressAddress(vault)
	if err != nil {
		t.Fatalf("DeriveProgressAddress failed: %v", err)
	}
	owner, _, err := DerivePositionOwnerAddress(vault)
	if err != nil {
		t.Fatalf("DerivePositionOwnerAddress failed: %v", err)
	}

	seen := map[string]bool{policy: true}
	if seen[progress] {
		t.Error("policy and progress addresses collide")
	}
	seen[progress] = true
	if seen[owner] {
		t.Error("position owner address collides")
	}
}

func TestDeriveTreasuryAddress_VariesByMint(t *testing.T) {
	vault := testVault()
	mintA := base58.Encode(bytes.Repeat([]byte{0x0a}, 32))
	mintB := base58.Encode(bytes.Repeat([]byte{0x0b}, 32))

	ta, _, err := DeriveTreasuryAddress(vault, mintA)
	if err != nil {
		t.Fatalf("DeriveTreasuryAddress failed: %v", err)
	}
	tb, _, err := DeriveTreasuryAddress(vault, mintB)
	if err != nil {
		t.Fatalf("DeriveTreasuryAddress failed: %v", err)
	}
	if ta == tb {
		t.Error("treasury address must vary with the quote mint")
	}
}

func TestDerive_RejectsBadVault(t *testing.T) {
	if _, _, err := DerivePolicyAddress("bogus"); err == nil || !strings.Contains(err.Error(), "vault") {
		t.Errorf("expected vault parse error, got %v", err)
	}
}
