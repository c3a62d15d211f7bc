package config

import (
	"sync/atomic"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// RulesHolder is a replaceable holder for the active rule thresholds.
//
// The config is replaced wholesale, never per-field: Replace publishes a
// complete new RulesConfig atomically, and Snapshot hands out the current
// config by value. A screening call takes one snapshot at its start and
// threads it through every rule and the scorer, so it can never observe a
// mix of old and new threshold values.
type RulesHolder struct {
	current atomic.Pointer[domain.RulesConfig]
}

// NewRulesHolder creates a holder with the given initial config.
func NewRulesHolder(cfg domain.RulesConfig) *RulesHolder {
	h := &RulesHolder{}
	h.current.Store(&cfg)
	return h
}

// Snapshot returns the active config by value.
func (h *RulesHolder) Snapshot() domain.RulesConfig {
	return *h.current.Load()
}

// Replace atomically publishes a new config. Screening calls that already
// took their snapshot finish on the old thresholds; subsequent calls see
// the new ones.
func (h *RulesHolder) Replace(cfg domain.RulesConfig) {
	h.current.Store(&cfg)
}
