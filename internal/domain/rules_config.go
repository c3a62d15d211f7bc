package domain

// RulesConfig holds the tunable thresholds for all screening rules.
// The engine captures one snapshot per screening call, so a wholesale
// replacement between calls is never observed as a mix of old and new
// values within a single screening.
type RulesConfig struct {
	VelocityThreshold         int     `json:"velocity_threshold" mapstructure:"velocity_threshold"`
	VelocityWindowMinutes     int     `json:"velocity_window_minutes" mapstructure:"velocity_window_minutes"`
	AmountThreshold           float64 `json:"amount_threshold" mapstructure:"amount_threshold"`
	StructuringWindowMinutes  int     `json:"structuring_window_minutes" mapstructure:"structuring_window_minutes"`
	StructuringMinCount       int     `json:"structuring_min_count" mapstructure:"structuring_min_count"`
	StructuringAmountVariance float64 `json:"structuring_amount_variance" mapstructure:"structuring_amount_variance"`
	FuzzyMatchThreshold       int     `json:"fuzzy_match_threshold" mapstructure:"fuzzy_match_threshold"`
}

// DefaultRulesConfig returns the standard production thresholds.
func DefaultRulesConfig() RulesConfig {
	return RulesConfig{
		VelocityThreshold:         5,
		VelocityWindowMinutes:     60,
		AmountThreshold:           2000,
		StructuringWindowMinutes:  30,
		StructuringMinCount:       3,
		StructuringAmountVariance: 0.20,
		FuzzyMatchThreshold:       85,
	}
}
