package polymarket

import "encoding/json"

// DTOs raw de la API de Polymarket. Solo se usan dentro de este paquete.
// La conversión a domain entities se hace en mapping.go.

// --- Gamma API ---

// gammaEventsResponse es la respuesta de GET /events.
type gammaEventsResponse []gammaEvent

// gammaEvent agrupa los mercados de un evento ("Bitcoin Up or Down ...").
type gammaEvent struct {
	ID      string        `json:"id"`
	Title   string        `json:"title"`
	Active  bool          `json:"active"`
	Closed  bool          `json:"closed"`
	Markets []gammaMarket `json:"markets"`
}

// gammaMarketsResponse es la respuesta de GET /markets.
type gammaMarketsResponse []gammaMarket

// gammaMarket es un mercado binario de Gamma.
// Gamma devuelve varios campos numéricos como strings JSON (json.Number),
// y outcomePrices como un array JSON codificado dentro de un string.
type gammaMarket struct {
	ID            string          `json:"id"`
	ConditionID   string          `json:"conditionId"`
	Question      string          `json:"question"`
	Slug          string          `json:"slug"`
	OutcomePrices json.RawMessage `json:"outcomePrices"`
	ClobTokenIDs  json.RawMessage `json:"clobTokenIds"`
	Liquidity     json.Number     `json:"liquidity"`
	Volume24h     json.Number     `json:"volume24hr"`
	EndDate       string          `json:"endDate"`
	Active        bool            `json:"active"`
	Closed        bool            `json:"closed"`
}
