package trader

import (
	"fmt"

	"alertbridge/config"
)

// ValidateNotional checks the rounded order value against the configured cap.
func ValidateNotional(symbol string, notionalValue float64, risk *config.RiskConfig) error {
	if risk == nil {
		risk = config.DefaultRiskConfig()
	}
	if risk.MaxNotionalUSDT > 0 && notionalValue > risk.MaxNotionalUSDT {
		return fmt.Errorf("notional %.2f USDT exceeds max %.2f USDT (%s)",
			notionalValue, risk.MaxNotionalUSDT, symbol)
	}
	return nil
}

// CheckLevels returns warnings when stop-loss or take-profit levels sit on
// the wrong side of entry for the order direction. Levels are informational
// only, so they never block an order.
func CheckLevels(side Side, entry, sl, tp1, tp2 float64) []string {
	var warnings []string
	switch side {
	case SideBuy:
		if sl >= entry {
			warnings = append(warnings, fmt.Sprintf("stop loss %v is not below entry %v", sl, entry))
		}
		if tp1 <= entry {
			warnings = append(warnings, fmt.Sprintf("TP1 %v is not above entry %v", tp1, entry))
		}
		if tp2 < tp1 {
			warnings = append(warnings, fmt.Sprintf("TP2 %v is below TP1 %v", tp2, tp1))
		}
	case SideSell:
		if sl <= entry {
			warnings = append(warnings, fmt.Sprintf("stop loss %v is not above entry %v", sl, entry))
		}
		if tp1 >= entry {
			warnings = append(warnings, fmt.Sprintf("TP1 %v is not below entry %v", tp1, entry))
		}
		if tp2 > tp1 {
			warnings = append(warnings, fmt.Sprintf("TP2 %v is above TP1 %v", tp2, tp1))
		}
	}
	return warnings
}
