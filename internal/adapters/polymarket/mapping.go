package polymarket

import (
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
)

// mapGammaMarket convierte un gammaMarket raw a domain.Market.
// Devuelve (zero, false) si el registro está malformado o incompleto:
// se loggea y se salta, nunca es fatal (un mercado roto no tumba el ciclo).
func mapGammaMarket(r gammaMarket, now time.Time) (domain.Market, bool) {
	if r.ConditionID == "" {
		slog.Debug("skipping market without condition_id", "slug", r.Slug)
		return domain.Market{}, false
	}

	prices, ok := decodeStringArray(r.OutcomePrices)
	if !ok || len(prices) < 2 {
		slog.Debug("skipping market with malformed outcome prices", "slug", r.Slug)
		return domain.Market{}, false
	}

	yesPrice, errYes := strconv.ParseFloat(prices[0], 64)
	noPrice, errNo := strconv.ParseFloat(prices[1], 64)
	if errYes != nil || errNo != nil || yesPrice <= 0 || noPrice <= 0 {
		slog.Debug("skipping market with invalid prices",
			"slug", r.Slug, "yes", prices[0], "no", prices[1])
		return domain.Market{}, false
	}

	m := domain.Market{
		ConditionID: r.ConditionID,
		Slug:        r.Slug,
		Question:    r.Question,
		YesPrice:    yesPrice,
		NoPrice:     noPrice,
		FetchedAt:   now,
	}

	if tokens, ok := decodeStringArray(r.ClobTokenIDs); ok && len(tokens) >= 2 {
		m.YesTokenID = tokens[0]
		m.NoTokenID = tokens[1]
	}

	if v, err := r.Liquidity.Float64(); err == nil {
		m.Liquidity = v
	}
	if v, err := r.Volume24h.Float64(); err == nil {
		m.Volume24h = v
	}

	if r.EndDate != "" {
		// Polymarket usa varios formatos; intentamos los más comunes
		for _, layout := range []string{
			time.RFC3339,
			"2006-01-02T15:04:05.000Z",
			"2006-01-02T15:04:05Z",
			"2006-01-02",
		} {
			if t, err := time.Parse(layout, r.EndDate); err == nil {
				m.EndDate = t.UTC()
				break
			}
		}
	}

	return m, true
}

// decodeStringArray decodifica un campo que Gamma devuelve como array JSON
// directo (["0.52","0.45"]) o como array codificado dentro de un string
// ("[\"0.52\",\"0.45\"]"), según el endpoint.
func decodeStringArray(raw json.RawMessage) ([]string, bool) {
	if len(raw) == 0 {
		return nil, false
	}

	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr, true
	}

	var encoded string
	if err := json.Unmarshal(raw, &encoded); err != nil {
		return nil, false
	}
	if err := json.Unmarshal([]byte(encoded), &arr); err != nil {
		return nil, false
	}
	return arr, true
}
