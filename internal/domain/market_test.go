package domain

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMarket_CombinedCostAndProfit(t *testing.T) {
	m := Market{YesPrice: 0.52, NoPrice: 0.45}
	assert.InDelta(t, 0.97, m.CombinedCost(), 1e-9)
	assert.InDelta(t, 0.03, m.ProfitPotential(), 1e-9)
}

func TestMarket_ExpiresWithin(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	m := Market{EndDate: now.Add(90 * time.Second)}
	assert.True(t, m.ExpiresWithin(now, 2*time.Minute))
	assert.False(t, m.ExpiresWithin(now, time.Minute))

	// Pasado = expirado con cualquier buffer
	past := Market{EndDate: now.Add(-time.Hour)}
	assert.True(t, past.ExpiresWithin(now, 0))

	// EndDate desconocido nunca expira
	assert.False(t, Market{}.ExpiresWithin(now, 2*time.Minute))
}

func TestMarket_SideAccessors(t *testing.T) {
	m := Market{YesTokenID: "tok-yes", NoTokenID: "tok-no", YesPrice: 0.52, NoPrice: 0.45}

	assert.Equal(t, 0.52, m.Price(SideYes))
	assert.Equal(t, 0.45, m.Price(SideNo))
	assert.Equal(t, "tok-yes", m.TokenID(SideYes))
	assert.Equal(t, "tok-no", m.TokenID(SideNo))
}

func TestTruncateQuestion(t *testing.T) {
	assert.Equal(t, "Bitcoin Up or Down", TruncateQuestion("Bitcoin Up or Down", "0xabc", 60))

	long := strings.Repeat("x", 100)
	got := TruncateQuestion(long, "0xabc", 60)
	assert.Len(t, got, 60)
	assert.True(t, strings.HasSuffix(got, "..."))

	// Sin pregunta usa el conditionID, truncado si es largo
	assert.Equal(t, "0xabc", TruncateQuestion("", "0xabc", 60))
	longID := "0x" + strings.Repeat("a", 40)
	assert.Equal(t, longID[:20]+"...", TruncateQuestion("", longID, 60))
}
