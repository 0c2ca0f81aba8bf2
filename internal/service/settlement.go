package service

import (
	"math/rand"
	"sync"

	"paytrust-gateway/internal/core/domain"
)

// RandomSettlementOracle simulates an acquiring bank: roughly nine in ten
// settlement attempts complete, the rest fail.
type RandomSettlementOracle struct {
	mu          sync.Mutex
	rng         *rand.Rand
	successRate float64
}

// NewRandomSettlementOracle creates an oracle with the given success rate.
func NewRandomSettlementOracle(successRate float64, seed int64) *RandomSettlementOracle {
	return &RandomSettlementOracle{
		rng:         rand.New(rand.NewSource(seed)),
		successRate: successRate,
	}
}

// Decide returns completed with probability successRate, failed otherwise.
func (o *RandomSettlementOracle) Decide() domain.TransactionStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.rng.Float64() < o.successRate {
		return domain.TransactionStatusCompleted
	}
	return domain.TransactionStatusFailed
}

// FixedSettlementOracle always returns the same outcome. Test helper wired
// through the same port as the random oracle.
type FixedSettlementOracle struct {
	Outcome domain.TransactionStatus
}

// Decide returns the fixed outcome.
func (o *FixedSettlementOracle) Decide() domain.TransactionStatus {
	return o.Outcome
}
