package polymarket

// events.go — discovery y refresh de mercados vía Gamma API.
//
// Discover (caro): GET /events paginado, filtra eventos "Up or Down" por
// keyword y extrae sus mercados binarios activos.
// RefreshPrices (barato): GET /markets?condition_ids=... en batches, solo
// para los IDs ya conocidos. Los IDs que Gamma ya no devuelve se omiten.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
	"github.com/alejandrodnm/gabagool/internal/ports"
)

const (
	gammaEventsPath   = "/events"
	gammaMarketsPath  = "/markets"
	eventsPageLimit   = 100
	gammaConditionMax = 20 // máx condition_ids por request a /markets
)

// Discover devuelve todos los mercados binarios activos cuyos eventos pasan
// el filtro de keyword. Los registros malformados se saltan en el mapping.
func (c *Client) Discover(ctx context.Context, filter ports.MarketFilter) ([]domain.Market, error) {
	url := fmt.Sprintf("%s%s?limit=%d&order=startDate&ascending=false",
		c.gammaBase, gammaEventsPath, eventsPageLimit)

	var events gammaEventsResponse
	if err := c.get(ctx, c.gammaLimiter, url, &events); err != nil {
		return nil, fmt.Errorf("polymarket.Discover: %w: %v", domain.ErrDataSourceUnavailable, err)
	}

	now := time.Now().UTC()
	keyword := strings.ToLower(filter.Keyword)

	var markets []domain.Market
	matched := 0
	for _, ev := range events {
		title := strings.ToLower(ev.Title)
		if !ev.Active || ev.Closed {
			continue
		}
		if keyword != "" && !strings.Contains(title, keyword) {
			continue
		}
		// Solo eventos de par binario complementario ("X up or down")
		if !strings.Contains(title, "up or down") {
			continue
		}
		matched++

		for _, raw := range ev.Markets {
			if !raw.Active || raw.Closed {
				continue
			}
			if m, ok := mapGammaMarket(raw, now); ok {
				markets = append(markets, m)
			}
		}
	}

	slog.Info("market discovery complete",
		"events", len(events),
		"matched_events", matched,
		"markets", len(markets),
		"keyword", filter.Keyword,
	)
	return markets, nil
}

// RefreshPrices re-obtiene los mercados con los conditionIDs dados, en
// batches. Un batch fallido se loggea y se salta — el caller decide qué
// hacer con el subset que sí llegó. Si ningún batch responde, devuelve
// domain.ErrDataSourceUnavailable.
func (c *Client) RefreshPrices(ctx context.Context, conditionIDs []string) ([]domain.Market, error) {
	if len(conditionIDs) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	var markets []domain.Market
	failedBatches := 0
	totalBatches := 0

	for i := 0; i < len(conditionIDs); i += gammaConditionMax {
		end := i + gammaConditionMax
		if end > len(conditionIDs) {
			end = len(conditionIDs)
		}
		batch := conditionIDs[i:end]
		totalBatches++

		url := fmt.Sprintf("%s%s?condition_ids=%s&limit=%d",
			c.gammaBase,
			gammaMarketsPath,
			strings.Join(batch, ","),
			gammaConditionMax,
		)

		var resp gammaMarketsResponse
		if err := c.get(ctx, c.gammaLimiter, url, &resp); err != nil {
			slog.Debug("price refresh batch failed, skipping",
				"batch", fmt.Sprintf("%d-%d", i, end),
				"err", err,
			)
			failedBatches++
			continue
		}

		for _, raw := range resp {
			if raw.Closed {
				continue // resuelto upstream: se deja caer en silencio
			}
			if m, ok := mapGammaMarket(raw, now); ok {
				markets = append(markets, m)
			}
		}
	}

	if failedBatches == totalBatches {
		return nil, fmt.Errorf("polymarket.RefreshPrices: all %d batches failed: %w",
			totalBatches, domain.ErrDataSourceUnavailable)
	}

	slog.Debug("price refresh complete",
		"requested", len(conditionIDs),
		"returned", len(markets),
	)
	return markets, nil
}
