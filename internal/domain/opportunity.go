package domain

import "time"

// SkipReason explica por qué un mercado no es accionable.
type SkipReason int

const (
	SkipNone SkipReason = iota
	SkipLowLiquidity
	SkipExpiringSoon
	SkipCostTooHigh
	SkipMarginTooSmall
)

// String devuelve la razón en formato loggeable.
func (r SkipReason) String() string {
	switch r {
	case SkipLowLiquidity:
		return "low_liquidity"
	case SkipExpiringSoon:
		return "expiring_soon"
	case SkipCostTooHigh:
		return "cost_too_high"
	case SkipMarginTooSmall:
		return "margin_too_small"
	default:
		return "none"
	}
}

// DetectorConfig son los umbrales de clasificación.
type DetectorConfig struct {
	TargetCombinedCost float64       // techo de coste combinado (< 1.0)
	MinProfitMargin    float64       // margen mínimo para ser accionable
	MinLiquidity       float64       // liquidez mínima en USDC
	ExpiryBuffer       time.Duration // no operar mercados que resuelven antes de now+buffer
}

// Classification es el resultado de evaluar un snapshot.
// Observed marca oportunidades que pasan el techo de coste aunque no lleguen
// al margen mínimo — se registran para analytics pero no se ejecutan.
type Classification struct {
	Market          Market
	Actionable      bool
	Observed        bool
	ProfitPotential float64
	Reason          SkipReason
}

// Classify evalúa un snapshot contra la configuración dada.
// Es una función pura: no tiene efectos secundarios, la ejecución y el
// registro de observadas los decide el caller.
func Classify(m Market, cfg DetectorConfig, now time.Time) Classification {
	c := Classification{Market: m}

	if m.Liquidity < cfg.MinLiquidity {
		c.Reason = SkipLowLiquidity
		return c
	}
	if m.ExpiresWithin(now, cfg.ExpiryBuffer) {
		c.Reason = SkipExpiringSoon
		return c
	}
	if m.CombinedCost() >= cfg.TargetCombinedCost {
		c.Reason = SkipCostTooHigh
		return c
	}

	// Pasó el techo de coste: hay arbitraje bruto, se registra siempre
	c.Observed = true
	c.ProfitPotential = m.ProfitPotential()

	if c.ProfitPotential <= cfg.MinProfitMargin {
		c.Reason = SkipMarginTooSmall
		return c
	}

	c.Actionable = true
	return c
}
