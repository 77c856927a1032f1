package strategyconfig

import (
	"fmt"

	"github.com/wonny/aegis-panel/internal/contracts"
	"github.com/wonny/aegis-panel/internal/styles"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Meta ===
	if cfg.Meta.PolicyID == "" {
		return ValidationError{"meta.policy_id", "required"}
	}

	// === Styles ===
	if len(cfg.Styles.Enabled) == 0 {
		return ValidationError{"styles.enabled", "at least one style required"}
	}
	seen := make(map[contracts.Style]bool, len(cfg.Styles.Enabled))
	for _, s := range cfg.Styles.Enabled {
		if !styles.Known(s) {
			return ValidationError{"styles.enabled", fmt.Sprintf("unknown style %q", s)}
		}
		if seen[s] {
			return ValidationError{"styles.enabled", fmt.Sprintf("duplicate style %q", s)}
		}
		seen[s] = true
	}

	// === Aggregator ===
	a := cfg.Aggregator
	if err := validateRatio(a.Bullish, "aggregator.bullish"); err != nil {
		return err
	}
	if err := validateRatio(a.Bearish, "aggregator.bearish"); err != nil {
		return err
	}
	if a.Bearish >= a.Bullish {
		return ValidationError{"aggregator", "bearish must be < bullish"}
	}

	// === Consensus ===
	c := cfg.Consensus
	if c.Strong <= 50 || c.Strong > 100 {
		return ValidationError{"consensus.strong", "must be in (50, 100]"}
	}
	if c.Moderate <= 0 || c.Moderate >= c.Strong {
		return ValidationError{"consensus.moderate", "must be in (0, strong)"}
	}
	if c.DividedSpread < 0 || c.DividedSpread > 100 {
		return ValidationError{"consensus.divided_spread", "must be in [0, 100]"}
	}

	// === Fetch ===
	if cfg.Fetch.PriceWindowDays <= 0 {
		return ValidationError{"fetch.price_window_days", "must be > 0"}
	}
	if cfg.Fetch.InsiderWindowDays <= 0 {
		return ValidationError{"fetch.insider_window_days", "must be > 0"}
	}
	if cfg.Fetch.NewsWindowDays <= 0 {
		return ValidationError{"fetch.news_window_days", "must be > 0"}
	}

	// === Narrative ===
	if cfg.Narrative.DisagreementTolerance < 0 || cfg.Narrative.DisagreementTolerance > 100 {
		return ValidationError{"narrative.disagreement_tolerance", "must be in [0, 100]"}
	}

	return nil
}

// Warn returns recommended-practice violations
// 경고만 반환 (프로그램 계속 실행)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if len(cfg.Styles.Enabled) < 3 {
		warnings = append(warnings, Warning{
			Code:    "FEW_STYLES",
			Message: fmt.Sprintf("only %d style(s) enabled: a single style always reaches a strong consensus", len(cfg.Styles.Enabled)),
		})
	}

	if cfg.Aggregator.Bullish-cfg.Aggregator.Bearish < 0.2 {
		warnings = append(warnings, Warning{
			Code:    "NARROW_NEUTRAL_BAND",
			Message: "aggregator neutral band narrower than 20% of max score",
		})
	}

	if cfg.Fetch.PriceWindowDays < 30 {
		warnings = append(warnings, Warning{
			Code:    "SHORT_PRICE_WINDOW",
			Message: "price window under 30 days makes momentum and volatility noisy",
		})
	}

	return warnings
}

func validateRatio(v float64, field string) error {
	if v < 0 || v > 1 {
		return ValidationError{field, "must be in [0, 1]"}
	}
	return nil
}
