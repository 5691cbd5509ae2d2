package config

// RiskConfig groups the sizing parameters of an alert-driven order.
// Kept in one place so that a smarter sizing model can replace the fixed
// notional without touching the sizing contract.
type RiskConfig struct {
	// NotionalUSDT is the quote value of every order (quantity = notional / entry).
	NotionalUSDT float64
	// MaxNotionalUSDT caps quantity*entry after rounding. 0 disables the cap.
	MaxNotionalUSDT float64
}

// DefaultRiskConfig returns the sizing used when nothing is configured:
// a flat 10 USDT per alert and no cap.
func DefaultRiskConfig() *RiskConfig {
	return &RiskConfig{
		NotionalUSDT:    10.0,
		MaxNotionalUSDT: 0,
	}
}
