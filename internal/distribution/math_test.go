package distribution

import (
	"errors"
	"math"
	"testing"

	"star-fee-distributor/internal/domain"
)

func TestEligibleShareBps(t *testing.T) {
	tests := []struct {
		name        string
		lockedTotal uint64
		y0          uint64
		maxBps      uint16
		want        uint16
	}{
		{"half locked capped at max", 500_000, 1_000_000, 5000, 5000},
		{"quarter locked below max", 250_000, 1_000_000, 5000, 2500},
		{"fully locked", 1_000_000, 1_000_000, 10000, 10000},
		{"fully locked capped", 1_000_000, 1_000_000, 7000, 7000},
		{"nothing locked", 0, 1_000_000, 5000, 0},
		{"zero y0 signals contract violation", 500_000, 0, 5000, 0},
		{"locked exceeds y0 clamps", 2_000_000, 1_000_000, 9000, 9000},
		{"huge locked tiny y0 clamps", math.MaxUint64, 1, 5000, 5000},
		{"rounding floors", 1, 3, 10000, 3333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EligibleShareBps(tt.lockedTotal, tt.y0, tt.maxBps)
			if err != nil {
				t.Fatalf("EligibleShareBps failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("EligibleShareBps(%d, %d, %d) = %d, want %d",
					tt.lockedTotal, tt.y0, tt.maxBps, got, tt.want)
			}
		})
	}
}

func TestEligibleShareBps_NeverExceedsBounds(t *testing.T) {
	// Property: result <= maxBps and result <= 10000 for any input.
	cases := []struct{ locked, y0 uint64 }{
		{0, 1}, {1, 1}, {math.MaxUint64, 1}, {math.MaxUint64, math.MaxUint64},
		{1, math.MaxUint64}, {7, 13}, {1_000_000_000, 3},
	}
	for _, maxBps := range []uint16{0, 1, 5000, 10000} {
		for _, c := range cases {
			got, err := EligibleShareBps(c.locked, c.y0, maxBps)
			if err != nil {
				t.Fatalf("EligibleShareBps(%d, %d, %d) failed: %v", c.locked, c.y0, maxBps, err)
			}
			if got > maxBps || got > domain.MaxBps {
				t.Errorf("EligibleShareBps(%d, %d, %d) = %d exceeds bounds", c.locked, c.y0, maxBps, got)
			}
		}
	}
}

func TestInvestorFeeQuote(t *testing.T) {
	tests := []struct {
		name         string
		claimedQuote uint64
		shareBps     uint16
		want         uint64
	}{
		{"spec scenario 50 pct of 100k", 100_000, 5000, 50_000},
		{"zero share", 100_000, 0, 0},
		{"full share", 100_000, 10000, 100_000},
		{"floors fractional lamports", 99, 5000, 49},
		{"zero claim", 0, 5000, 0},
		{"max claim full share", math.MaxUint64, 10000, math.MaxUint64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InvestorFeeQuote(tt.claimedQuote, tt.shareBps)
			if err != nil {
				t.Fatalf("InvestorFeeQuote failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("InvestorFeeQuote(%d, %d) = %d, want %d", tt.claimedQuote, tt.shareBps, got, tt.want)
			}
		})
	}
}

func TestInvestorFeeQuote_RejectsOutOfRangeBps(t *testing.T) {
	_, err := InvestorFeeQuote(1000, 10001)
	if !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow for bps > 10000, got %v", err)
	}
}

func TestApplyDailyCap(t *testing.T) {
	tests := []struct {
		name               string
		requested          uint64
		dailyCap           uint64
		alreadyDistributed uint64
		want               uint64
	}{
		{"under cap passes through", 1000, 10_000, 0, 1000},
		{"exactly remaining headroom", 4000, 10_000, 6000, 4000},
		{"truncated to headroom", 5000, 10_000, 6000, 4000},
		{"cap exhausted", 5000, 10_000, 10_000, 0},
		{"cap exceeded saturates to zero", 5000, 10_000, 12_000, 0},
		{"zero requested", 0, 10_000, 500, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyDailyCap(tt.requested, tt.dailyCap, tt.alreadyDistributed)
			if got != tt.want {
				t.Errorf("ApplyDailyCap(%d, %d, %d) = %d, want %d",
					tt.requested, tt.dailyCap, tt.alreadyDistributed, got, tt.want)
			}
		})
	}
}

func TestInvestorWeightBps(t *testing.T) {
	tests := []struct {
		name        string
		locked      uint64
		totalLocked uint64
		want        uint64
	}{
		{"30 pct", 300, 1000, 3000},
		{"70 pct", 700, 1000, 7000},
		{"full weight", 1000, 1000, 10000},
		{"zero total", 300, 0, 0},
		{"zero locked", 0, 1000, 0},
		{"floors", 1, 3, 3333},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InvestorWeightBps(tt.locked, tt.totalLocked)
			if err != nil {
				t.Fatalf("InvestorWeightBps failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("InvestorWeightBps(%d, %d) = %d, want %d", tt.locked, tt.totalLocked, got, tt.want)
			}
		})
	}
}

func TestInvestorPayout(t *testing.T) {
	tests := []struct {
		name      string
		total     uint64
		weightBps uint64
		minPayout uint64
		want      uint64
	}{
		{"spec scenario 300 of 1000", 1000, 3000, 1, 300},
		{"spec scenario 700 of 1000", 1000, 7000, 1, 700},
		{"dust below threshold pays zero", 1000, 3000, 301, 0},
		{"exactly at threshold pays", 1000, 3000, 300, 300},
		{"one below threshold withheld entirely", 1000, 10000, 1001, 0},
		{"zero weight", 1000, 0, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InvestorPayout(tt.total, tt.weightBps, tt.minPayout)
			if err != nil {
				t.Fatalf("InvestorPayout failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("InvestorPayout(%d, %d, %d) = %d, want %d",
					tt.total, tt.weightBps, tt.minPayout, got, tt.want)
			}
		})
	}
}

func TestInvestorPayout_OverflowingWeight(t *testing.T) {
	// A weight beyond 10000 bps is an upstream invariant violation; the math
	// must abort rather than wrap once the product leaves the 64-bit range.
	_, err := InvestorPayout(math.MaxUint64, 20000, 1)
	if !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
}

func TestCheckedAdd(t *testing.T) {
	sum, err := CheckedAdd(math.MaxUint64-1, 1)
	if err != nil || sum != math.MaxUint64 {
		t.Errorf("CheckedAdd(MaxUint64-1, 1) = %d, %v", sum, err)
	}

	if _, err := CheckedAdd(math.MaxUint64, 1); !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow on wraparound, got %v", err)
	}
}

func TestTotalLocked(t *testing.T) {
	investors := []domain.InvestorRecord{
		{Stream: "s1", LockedAmount: 300},
		{Stream: "s2", LockedAmount: 700},
	}
	total, err := TotalLocked(investors)
	if err != nil {
		t.Fatalf("TotalLocked failed: %v", err)
	}
	if total != 1000 {
		t.Errorf("TotalLocked = %d, want 1000", total)
	}

	overflowing := []domain.InvestorRecord{
		{LockedAmount: math.MaxUint64},
		{LockedAmount: 1},
	}
	if _, err := TotalLocked(overflowing); !errors.Is(err, ErrMathOverflow) {
		t.Errorf("expected ErrMathOverflow, got %v", err)
	}
}

func TestProRataConservation(t *testing.T) {
	// Two investors 300/700 over 1000 to distribute: payouts must sum to the
	// full amount with zero carry-over.
	total := uint64(1000)
	locked := []uint64{300, 700}
	lockedTotal := uint64(1000)

	var distributed uint64
	for _, l := range locked {
		w, err := InvestorWeightBps(l, lockedTotal)
		if err != nil {
			t.Fatalf("weight: %v", err)
		}
		p, err := InvestorPayout(total, w, 1)
		if err != nil {
			t.Fatalf("payout: %v", err)
		}
		distributed += p
	}

	if distributed != total {
		t.Errorf("distributed %d, want %d (carry-over should be 0)", distributed, total)
	}
}
