package domain

import "time"

// Market es un snapshot inmutable de un mercado binario de Polymarket.
// Cada discovery o refresh produce snapshots nuevos; nunca se mutan,
// el siguiente snapshot del mismo conditionID reemplaza al anterior.
type Market struct {
	ConditionID string
	Slug        string
	Question    string
	YesTokenID  string  // token CLOB del outcome YES
	NoTokenID   string  // token CLOB del outcome NO
	YesPrice    float64 // precio por share del outcome YES (0.0–1.0)
	NoPrice     float64 // precio por share del outcome NO (0.0–1.0)
	Liquidity   float64 // liquidez total en USDC
	Volume24h   float64
	EndDate     time.Time // cuándo se resuelve el mercado (zero = desconocido)
	FetchedAt   time.Time
}

// CombinedCost devuelve el coste combinado de comprar ambos lados.
// Por debajo de 1.0 hay arbitraje bruto: el payout garantizado es $1/share.
func (m Market) CombinedCost() float64 {
	return m.YesPrice + m.NoPrice
}

// ProfitPotential devuelve el profit por pareja de shares comprando
// ambos lados al precio actual.
func (m Market) ProfitPotential() float64 {
	return 1.0 - m.CombinedCost()
}

// ExpiresWithin devuelve true si el mercado se resuelve antes de now+buffer.
// Un EndDate desconocido (zero) nunca se considera expirado.
func (m Market) ExpiresWithin(now time.Time, buffer time.Duration) bool {
	if m.EndDate.IsZero() {
		return false
	}
	return m.EndDate.Before(now.Add(buffer))
}

// Side identifica uno de los dos legs de una posición.
type Side string

const (
	SideYes Side = "YES"
	SideNo  Side = "NO"
)

// Price devuelve el precio del lado dado.
func (m Market) Price(side Side) float64 {
	if side == SideYes {
		return m.YesPrice
	}
	return m.NoPrice
}

// TokenID devuelve el token CLOB del lado dado.
func (m Market) TokenID(side Side) string {
	if side == SideYes {
		return m.YesTokenID
	}
	return m.NoTokenID
}

// TruncateQuestion devuelve la pregunta truncada a maxLen caracteres.
// Si está vacía usa el conditionID como fallback.
func TruncateQuestion(question, conditionID string, maxLen int) string {
	q := question
	if q == "" {
		if len(conditionID) > 20 {
			q = conditionID[:20] + "..."
		} else {
			q = conditionID
		}
	}
	if len(q) > maxLen {
		q = q[:maxLen-3] + "..."
	}
	return q
}
