package distribution

import (
	"math/bits"

	"star-fee-distributor/internal/domain"
)

// mulDiv computes floor(a * b / den) with the multiplication widened to 128
// bits. Returns ErrMathOverflow if the quotient does not fit in 64 bits or
// the denominator is zero.
func mulDiv(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrMathOverflow
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= den {
		return 0, ErrMathOverflow
	}
	q, _ := bits.Div64(hi, lo, den)
	return q, nil
}

// CheckedAdd returns a + b or ErrMathOverflow on wraparound.
func CheckedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrMathOverflow
	}
	return sum, nil
}

// EligibleShareBps computes the investor share of claimed fees in basis
// points: floor(lockedTotal * 10000 / y0) clamped to maxBps.
//
// f_locked(t) = locked_total(t) / Y0; share = min(maxBps, f_locked * 10000).
// Returns 0 if y0 is zero — policy validation guarantees y0 > 0, so a zero
// here signals a contract violation by the caller, not a division guard.
func EligibleShareBps(lockedTotal, y0 uint64, maxBps uint16) (uint16, error) {
	if y0 == 0 {
		return 0, nil
	}
	hi, lo := bits.Mul64(lockedTotal, domain.MaxBps)
	if hi >= y0 {
		// Quotient exceeds 64 bits, far above any valid bps clamp.
		return maxBps, nil
	}
	q, _ := bits.Div64(hi, lo, y0)
	if q > uint64(maxBps) {
		return maxBps, nil
	}
	return uint16(q), nil
}

// InvestorFeeQuote computes the total quote amount owed to investors:
// floor(claimedQuote * eligibleShareBps / 10000).
func InvestorFeeQuote(claimedQuote uint64, eligibleShareBps uint16) (uint64, error) {
	if eligibleShareBps == 0 {
		return 0, nil
	}
	if eligibleShareBps > domain.MaxBps {
		return 0, ErrMathOverflow
	}
	return mulDiv(claimedQuote, uint64(eligibleShareBps), domain.MaxBps)
}

// ApplyDailyCap limits a requested payout to the cap headroom left today:
// min(requested, max(dailyCap - alreadyDistributed, 0)).
func ApplyDailyCap(requested, dailyCap, alreadyDistributed uint64) uint64 {
	if alreadyDistributed >= dailyCap {
		return 0
	}
	remaining := dailyCap - alreadyDistributed
	if requested < remaining {
		return requested
	}
	return remaining
}

// InvestorWeightBps computes an investor's pro-rata weight in basis points:
// floor(investorLocked * 10000 / totalLocked). Returns 0 if totalLocked is zero.
func InvestorWeightBps(investorLocked, totalLocked uint64) (uint64, error) {
	if totalLocked == 0 {
		return 0, nil
	}
	return mulDiv(investorLocked, domain.MaxBps, totalLocked)
}

// InvestorPayout computes one investor's payout:
// floor(totalToDistribute * weightBps / 10000), zeroed entirely when below
// minPayout. Sub-threshold amounts are dust and stay in the carry-over.
func InvestorPayout(totalToDistribute, weightBps, minPayout uint64) (uint64, error) {
	payout, err := mulDiv(totalToDistribute, weightBps, domain.MaxBps)
	if err != nil {
		return 0, err
	}
	if payout < minPayout {
		return 0, nil
	}
	return payout, nil
}

// TotalLocked sums the locked balances of a page with overflow checking.
func TotalLocked(investors []domain.InvestorRecord) (uint64, error) {
	var total uint64
	for _, inv := range investors {
		var err error
		total, err = CheckedAdd(total, inv.LockedAmount)
		if err != nil {
			return 0, err
		}
	}
	return total, nil
}
