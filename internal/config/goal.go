package config

import (
	"fmt"
	"math"

	"github.com/homerun-app/homerun/internal/savings"

	"github.com/shopspring/decimal"
)

// GoalConfig holds the savings goal parameters.
type GoalConfig struct {
	HousePrice         float64 `toml:"house_price" json:"house_price"`
	DownpaymentPercent float64 `toml:"downpayment_percent" json:"downpayment_percent"`
	YearsToSave        int     `toml:"years_to_save" json:"years_to_save"`
}

// Params converts the configured goal to model parameters.
func (g GoalConfig) Params() savings.Goal {
	return savings.Goal{
		HousePrice:         finiteDecimal(g.HousePrice),
		DownpaymentPercent: g.DownpaymentPercent,
		YearsToSave:        g.YearsToSave,
	}
}

// Validate checks the goal is something a user could mean. The model
// itself accepts anything; this guards input surfaces.
func (g GoalConfig) Validate() error {
	if !g.Finite() {
		return fmt.Errorf("goal.house_price and goal.downpayment_percent must be finite numbers")
	}
	if g.HousePrice <= 0 {
		return fmt.Errorf("goal.house_price must be positive")
	}
	if g.DownpaymentPercent <= 0 || g.DownpaymentPercent > 100 {
		return fmt.Errorf("goal.downpayment_percent must be in (0, 100]")
	}
	if g.YearsToSave < 1 || g.YearsToSave > 50 {
		return fmt.Errorf("goal.years_to_save must be between 1 and 50")
	}
	return nil
}

// Finite reports whether the float fields hold real numbers. TOML and
// strconv both accept nan and inf, which no money value can hold.
func (g GoalConfig) Finite() bool {
	return isFinite(g.HousePrice) && isFinite(g.DownpaymentPercent)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finiteDecimal(f float64) decimal.Decimal {
	if !isFinite(f) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
