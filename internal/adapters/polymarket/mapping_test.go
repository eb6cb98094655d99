package polymarket

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var mapNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func validGammaMarket() gammaMarket {
	return gammaMarket{
		ID:            "1",
		ConditionID:   "0xabc",
		Question:      "Bitcoin Up or Down - June 15?",
		Slug:          "bitcoin-up-or-down-june-15",
		OutcomePrices: json.RawMessage(`"[\"0.52\", \"0.45\"]"`),
		ClobTokenIDs:  json.RawMessage(`"[\"111\", \"222\"]"`),
		Liquidity:     json.Number("15000.5"),
		Volume24h:     json.Number("80000"),
		EndDate:       "2025-06-16T12:00:00Z",
		Active:        true,
	}
}

func TestMapGammaMarket_Valid(t *testing.T) {
	m, ok := mapGammaMarket(validGammaMarket(), mapNow)
	require.True(t, ok)

	assert.Equal(t, "0xabc", m.ConditionID)
	assert.InDelta(t, 0.52, m.YesPrice, 1e-9)
	assert.InDelta(t, 0.45, m.NoPrice, 1e-9)
	assert.Equal(t, "111", m.YesTokenID)
	assert.Equal(t, "222", m.NoTokenID)
	assert.InDelta(t, 15000.5, m.Liquidity, 1e-9)
	assert.Equal(t, time.Date(2025, 6, 16, 12, 0, 0, 0, time.UTC), m.EndDate)
	assert.Equal(t, mapNow, m.FetchedAt)
}

func TestMapGammaMarket_DirectArrayPrices(t *testing.T) {
	// /markets devuelve el array directo, no codificado en string
	r := validGammaMarket()
	r.OutcomePrices = json.RawMessage(`["0.52", "0.45"]`)

	m, ok := mapGammaMarket(r, mapNow)
	require.True(t, ok)
	assert.InDelta(t, 0.52, m.YesPrice, 1e-9)
}

func TestMapGammaMarket_SkipsMalformed(t *testing.T) {
	cases := map[string]func(*gammaMarket){
		"missing condition_id": func(r *gammaMarket) { r.ConditionID = "" },
		"empty prices":         func(r *gammaMarket) { r.OutcomePrices = nil },
		"garbage prices":       func(r *gammaMarket) { r.OutcomePrices = json.RawMessage(`"not json"`) },
		"single price":         func(r *gammaMarket) { r.OutcomePrices = json.RawMessage(`["0.52"]`) },
		"non-numeric price":    func(r *gammaMarket) { r.OutcomePrices = json.RawMessage(`["abc", "0.45"]`) },
		"zero price":           func(r *gammaMarket) { r.OutcomePrices = json.RawMessage(`["0", "0.45"]`) },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			r := validGammaMarket()
			mutate(&r)
			_, ok := mapGammaMarket(r, mapNow)
			assert.False(t, ok)
		})
	}
}

func TestMapGammaMarket_OptionalFieldsDegrade(t *testing.T) {
	r := validGammaMarket()
	r.ClobTokenIDs = nil
	r.Liquidity = ""
	r.EndDate = "not-a-date"

	// Campos opcionales rotos no invalidan el mercado
	m, ok := mapGammaMarket(r, mapNow)
	require.True(t, ok)
	assert.Empty(t, m.YesTokenID)
	assert.Zero(t, m.Liquidity)
	assert.True(t, m.EndDate.IsZero())
}

func TestDecodeStringArray(t *testing.T) {
	arr, ok := decodeStringArray(json.RawMessage(`["a", "b"]`))
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, arr)

	arr, ok = decodeStringArray(json.RawMessage(`"[\"a\", \"b\"]"`))
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, arr)

	_, ok = decodeStringArray(nil)
	assert.False(t, ok)
	_, ok = decodeStringArray(json.RawMessage(`42`))
	assert.False(t, ok)
}
