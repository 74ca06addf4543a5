package domain

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
)

// Fixed-width record sizes in bytes.
const (
	// PolicySize: fee_share_bps(2) + daily_cap(8) + min_payout(8) + y0(8) +
	// quote_mint(32) + vault(32) + created_at(8) + bump(1)
	PolicySize = 99

	// ProgressSize: last_distribution_ts(8) + distributed_today(8) +
	// carry_over(8) + pagination_cursor(8) + current_day(8) +
	// claimed_today(8) + day_complete(1) + vault(32) + bump(1)
	ProgressSize = 82
)

// MarshalBinary encodes the policy into its fixed-width layout.
func (p *Policy) MarshalBinary() ([]byte, error) {
	quoteMint, err := decodeAddress(p.QuoteMint)
	if err != nil {
		return nil, fmt.Errorf("encode policy quote mint: %w", err)
	}
	vault, err := decodeAddress(p.Vault)
	if err != nil {
		return nil, fmt.Errorf("encode policy vault: %w", err)
	}

	buf := make([]byte, PolicySize)
	binary.BigEndian.PutUint16(buf[0:2], p.InvestorFeeShareBps)
	binary.BigEndian.PutUint64(buf[2:10], p.DailyCap)
	binary.BigEndian.PutUint64(buf[10:18], p.MinPayoutLamports)
	binary.BigEndian.PutUint64(buf[18:26], p.Y0)
	copy(buf[26:58], quoteMint)
	copy(buf[58:90], vault)
	binary.BigEndian.PutUint64(buf[90:98], uint64(p.CreatedAt))
	buf[98] = p.Bump
	return buf, nil
}

// UnmarshalBinary decodes a fixed-width policy record.
func (p *Policy) UnmarshalBinary(data []byte) error {
	if len(data) != PolicySize {
		return fmt.Errorf("policy record: expected %d bytes, got %d", PolicySize, len(data))
	}
	p.InvestorFeeShareBps = binary.BigEndian.Uint16(data[0:2])
	p.DailyCap = binary.BigEndian.Uint64(data[2:10])
	p.MinPayoutLamports = binary.BigEndian.Uint64(data[10:18])
	p.Y0 = binary.BigEndian.Uint64(data[18:26])
	p.QuoteMint = base58.Encode(data[26:58])
	p.Vault = base58.Encode(data[58:90])
	p.CreatedAt = int64(binary.BigEndian.Uint64(data[90:98]))
	p.Bump = data[98]
	return nil
}

// MarshalBinary encodes the progress ledger into its fixed-width layout.
func (p *Progress) MarshalBinary() ([]byte, error) {
	vault, err := decodeAddress(p.Vault)
	if err != nil {
		return nil, fmt.Errorf("encode progress vault: %w", err)
	}

	buf := make([]byte, ProgressSize)
	binary.BigEndian.PutUint64(buf[0:8], uint64(p.LastDistributionTS))
	binary.BigEndian.PutUint64(buf[8:16], p.DistributedToday)
	binary.BigEndian.PutUint64(buf[16:24], p.CarryOver)
	binary.BigEndian.PutUint64(buf[24:32], p.PaginationCursor)
	binary.BigEndian.PutUint64(buf[32:40], uint64(p.CurrentDay))
	binary.BigEndian.PutUint64(buf[40:48], p.ClaimedToday)
	if p.DayComplete {
		buf[48] = 1
	}
	copy(buf[49:81], vault)
	buf[81] = p.Bump
	return buf, nil
}

// UnmarshalBinary decodes a fixed-width progress record.
func (p *Progress) UnmarshalBinary(data []byte) error {
	if len(data) != ProgressSize {
		return fmt.Errorf("progress record: expected %d bytes, got %d", ProgressSize, len(data))
	}
	p.LastDistributionTS = int64(binary.BigEndian.Uint64(data[0:8]))
	p.DistributedToday = binary.BigEndian.Uint64(data[8:16])
	p.CarryOver = binary.BigEndian.Uint64(data[16:24])
	p.PaginationCursor = binary.BigEndian.Uint64(data[24:32])
	p.CurrentDay = int64(binary.BigEndian.Uint64(data[32:40]))
	p.ClaimedToday = binary.BigEndian.Uint64(data[40:48])
	p.DayComplete = data[48] == 1
	p.Vault = base58.Encode(data[49:81])
	p.Bump = data[81]
	return nil
}

// StateDigest computes a deterministic SHA-256 digest of the progress record.
// Stamped into page events so an auditor can cross-check the ledger state a
// page was committed against. Returns hex (64 characters).
func (p *Progress) StateDigest() (string, error) {
	data, err := p.MarshalBinary()
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// decodeAddress decodes a base58 address into exactly 32 bytes.
func decodeAddress(addr string) ([]byte, error) {
	raw, err := base58.Decode(addr)
	if err != nil {
		return nil, fmt.Errorf("decode address %q: %w", addr, err)
	}
	if len(raw) != 32 {
		return nil, fmt.Errorf("address %q: expected 32 bytes, got %d", addr, len(raw))
	}
	return raw, nil
}
