package solana

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"
)

// DistributorProgramID is the program identity the per-vault record
// addresses are derived under.
const DistributorProgramID = "2pKBXMgLEZptUeZgHzGcdGrwtKCFrVQjxD9gXrv1stnr"

// Seed constants for per-vault derived addresses.
var (
	vaultSeed           = []byte("vault")
	policySeed          = []byte("policy")
	progressSeed        = []byte("progress")
	treasurySeed        = []byte("treasury")
	positionOwnerSeed   = []byte("investor_fee_pos_owner")
	pdaDerivationMarker = []byte("ProgramDerivedAddress")
)

// FindProgramAddress derives a program address from seeds using the Solana
// algorithm: append a bump byte, the program ID and the derivation marker,
// SHA-256 the whole thing, and keep the first bump (searching downward from
// 255) whose hash is off the ed25519 curve.
func FindProgramAddress(seeds [][]byte, programID string) (string, uint8, error) {
	program, err := ParsePubkey(programID)
	if err != nil {
		return "", 0, fmt.Errorf("program id: %w", err)
	}

	for bump := byte(255); bump > 0; bump-- {
		data := make([]byte, 0)
		for _, seed := range seeds {
			data = append(data, seed...)
		}
		data = append(data, bump)
		data = append(data, program...)
		data = append(data, pdaDerivationMarker...)

		hash := sha256.Sum256(data)

		if !isOnCurve(hash[:]) {
			return base58.Encode(hash[:]), bump, nil
		}
	}

	return "", 0, fmt.Errorf("no off-curve address found for seeds")
}

// DerivePolicyAddress returns the derived address of a vault's policy record.
func DerivePolicyAddress(vault string) (string, uint8, error) {
	return deriveVaultAddress(vault, policySeed)
}

// DeriveProgressAddress returns the derived address of a vault's progress record.
func DeriveProgressAddress(vault string) (string, uint8, error) {
	return deriveVaultAddress(vault, progressSeed)
}

// DerivePositionOwnerAddress returns the derived address that owns the
// vault's honorary LP position.
func DerivePositionOwnerAddress(vault string) (string, uint8, error) {
	return deriveVaultAddress(vault, positionOwnerSeed)
}

// DeriveTreasuryAddress returns the derived address of the vault's quote
// treasury account.
func DeriveTreasuryAddress(vault, quoteMint string) (string, uint8, error) {
	vaultKey, err := ParsePubkey(vault)
	if err != nil {
		return "", 0, fmt.Errorf("vault: %w", err)
	}
	mintKey, err := ParsePubkey(quoteMint)
	if err != nil {
		return "", 0, fmt.Errorf("quote mint: %w", err)
	}
	return FindProgramAddress([][]byte{vaultSeed, vaultKey, treasurySeed, mintKey}, DistributorProgramID)
}

func deriveVaultAddress(vault string, kind []byte) (string, uint8, error) {
	vaultKey, err := ParsePubkey(vault)
	if err != nil {
		return "", 0, fmt.Errorf("vault: %w", err)
	}
	return FindProgramAddress([][]byte{vaultSeed, vaultKey, kind}, DistributorProgramID)
}
