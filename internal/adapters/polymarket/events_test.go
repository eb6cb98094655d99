package polymarket_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/gabagool/internal/adapters/polymarket"
	"github.com/alejandrodnm/gabagool/internal/domain"
	"github.com/alejandrodnm/gabagool/internal/ports"
)

func jsonServer(t *testing.T, fixture string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fixture))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestDiscover_FiltersEventsByKeywordAndKind(t *testing.T) {
	fixture := `[
		{
			"id": "1", "title": "Bitcoin Up or Down - June 15", "active": true, "closed": false,
			"markets": [{
				"id": "m1", "conditionId": "0xaaa", "question": "Bitcoin Up or Down?",
				"slug": "btc-june-15", "outcomePrices": "[\"0.52\", \"0.45\"]",
				"clobTokenIds": "[\"111\", \"222\"]",
				"liquidity": "15000", "volume24hr": "80000",
				"endDate": "2025-06-16T12:00:00Z", "active": true, "closed": false
			}]
		},
		{
			"id": "2", "title": "Ethereum Up or Down - June 15", "active": true, "closed": false,
			"markets": [{
				"id": "m2", "conditionId": "0xbbb", "question": "Ethereum Up or Down?",
				"slug": "eth-june-15", "outcomePrices": "[\"0.50\", \"0.48\"]",
				"active": true, "closed": false
			}]
		},
		{
			"id": "3", "title": "Will Bitcoin hit 200k?", "active": true, "closed": false,
			"markets": [{
				"id": "m3", "conditionId": "0xccc", "question": "200k?",
				"outcomePrices": "[\"0.30\", \"0.68\"]", "active": true, "closed": false
			}]
		},
		{
			"id": "4", "title": "Bitcoin Up or Down - June 14", "active": false, "closed": true,
			"markets": [{
				"id": "m4", "conditionId": "0xddd", "question": "old",
				"outcomePrices": "[\"0.50\", \"0.50\"]", "active": true, "closed": false
			}]
		}
	]`
	srv := jsonServer(t, fixture)
	client := polymarket.NewClient(srv.URL, srv.URL)

	markets, err := client.Discover(context.Background(), ports.MarketFilter{Keyword: "Bitcoin"})
	require.NoError(t, err)

	// Solo el evento 1: el 2 no matchea keyword, el 3 no es "up or down",
	// el 4 está cerrado
	require.Len(t, markets, 1)
	assert.Equal(t, "0xaaa", markets[0].ConditionID)
	assert.Equal(t, "111", markets[0].YesTokenID)
	assert.InDelta(t, 0.52, markets[0].YesPrice, 1e-9)
}

func TestDiscover_NoKeywordMatchesAllUpOrDown(t *testing.T) {
	fixture := `[
		{
			"id": "1", "title": "Bitcoin Up or Down", "active": true, "closed": false,
			"markets": [{"id": "m1", "conditionId": "0xaaa", "outcomePrices": "[\"0.5\", \"0.48\"]", "active": true}]
		},
		{
			"id": "2", "title": "Ethereum Up or Down", "active": true, "closed": false,
			"markets": [{"id": "m2", "conditionId": "0xbbb", "outcomePrices": "[\"0.5\", \"0.48\"]", "active": true}]
		}
	]`
	srv := jsonServer(t, fixture)
	client := polymarket.NewClient(srv.URL, srv.URL)

	markets, err := client.Discover(context.Background(), ports.MarketFilter{})
	require.NoError(t, err)
	assert.Len(t, markets, 2)
}

func TestDiscover_UpstreamErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	}))
	defer srv.Close()
	client := polymarket.NewClient(srv.URL, srv.URL)

	_, err := client.Discover(context.Background(), ports.MarketFilter{Keyword: "Bitcoin"})
	assert.ErrorIs(t, err, domain.ErrDataSourceUnavailable)
}

func TestRefreshPrices_SkipsClosedMarkets(t *testing.T) {
	fixture := `[
		{
			"id": "m1", "conditionId": "0xaaa", "question": "q1",
			"outcomePrices": ["0.48", "0.47"], "active": true, "closed": false
		},
		{
			"id": "m2", "conditionId": "0xbbb", "question": "q2",
			"outcomePrices": ["0.50", "0.50"], "active": false, "closed": true
		}
	]`
	srv := jsonServer(t, fixture)
	client := polymarket.NewClient(srv.URL, srv.URL)

	markets, err := client.RefreshPrices(context.Background(), []string{"0xaaa", "0xbbb"})
	require.NoError(t, err)

	// El mercado resuelto cae en silencio
	require.Len(t, markets, 1)
	assert.Equal(t, "0xaaa", markets[0].ConditionID)
	assert.InDelta(t, 0.48, markets[0].YesPrice, 1e-9)
}

func TestRefreshPrices_EmptyInput(t *testing.T) {
	client := polymarket.NewClient("http://invalid", "http://invalid")

	markets, err := client.RefreshPrices(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, markets)
}

func TestRefreshPrices_AllBatchesFailedIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()
	client := polymarket.NewClient(srv.URL, srv.URL)

	_, err := client.RefreshPrices(context.Background(), []string{"0xaaa"})
	assert.ErrorIs(t, err, domain.ErrDataSourceUnavailable)
}
