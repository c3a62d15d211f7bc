// Package rules implements the five independent compliance checks that make
// up the screening pipeline: sanctions, country risk, velocity, amount, and
// structuring.
//
// Every check is a pure function of its inputs: it maps any input, including
// empty strings, zero or negative amounts, and empty reference lists, to a
// defined RuleResult rather than an error. The velocity and structuring
// checks additionally read the sender's prior history through the History
// interface; they never write to it.
package rules

import (
	"time"

	"github.com/remessas-global/payment-screening/internal/domain"
)

// History is the read-only view of prior screened transactions that the
// windowed rules depend on. If since is non-nil, only transactions with
// timestamp >= since are returned, in timestamp order.
type History interface {
	GetBySender(name string, since *time.Time) []domain.StoredTransaction
}
