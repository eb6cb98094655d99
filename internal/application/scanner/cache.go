package scanner

// cache.go — cache de snapshots de mercado.
//
// Distingue el discovery completo (caro, reemplaza la cache entera) del
// refresh de precios (barato, solo re-precia los IDs ya conocidos). La
// cadencia la decide el controller; la cache solo recuerda cuándo fue el
// último discovery. Solo la usa el loop del controller — un único goroutine.

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
	"github.com/alejandrodnm/gabagool/internal/ports"
)

// Cache mantiene el último set de mercados descubiertos y sus precios.
type Cache struct {
	source        ports.MarketSource
	markets       []domain.Market
	lastDiscovery time.Time
}

// NewCache crea una cache vacía sobre el source dado.
func NewCache(source ports.MarketSource) *Cache {
	return &Cache{source: source}
}

// Discover hace el scan completo y reemplaza la cache entera.
func (c *Cache) Discover(ctx context.Context, filter ports.MarketFilter) ([]domain.Market, error) {
	markets, err := c.source.Discover(ctx, filter)
	if err != nil {
		return nil, err
	}

	c.markets = markets
	c.lastDiscovery = time.Now()
	return markets, nil
}

// Refresh re-precia los mercados ya conocidos.
//
//   - Cache vacía: devuelve domain.ErrEmptyCache — señal para que el caller
//     haga fallback a Discover, no un fallo.
//   - Upstream inaccesible (transitorio): devuelve el contenido anterior sin
//     modificar, a costa de staleness, para que el caller siempre tenga un
//     snapshot sobre el que actuar.
//   - IDs que ya no existen upstream se dejan caer en silencio.
func (c *Cache) Refresh(ctx context.Context) ([]domain.Market, error) {
	if len(c.markets) == 0 {
		return nil, domain.ErrEmptyCache
	}

	ids := make([]string, len(c.markets))
	for i, m := range c.markets {
		ids[i] = m.ConditionID
	}

	refreshed, err := c.source.RefreshPrices(ctx, ids)
	if err != nil {
		if errors.Is(err, domain.ErrDataSourceUnavailable) {
			slog.Warn("market data source unavailable, serving stale snapshots",
				"cached", len(c.markets),
				"age", time.Since(c.lastDiscovery).Round(time.Second),
			)
			return c.markets, nil
		}
		return nil, err
	}

	if dropped := len(c.markets) - len(refreshed); dropped > 0 {
		slog.Debug("markets no longer present upstream", "dropped", dropped)
	}

	c.markets = refreshed
	return refreshed, nil
}

// NeedsDiscovery devuelve true si toca un discovery completo.
func (c *Cache) NeedsDiscovery(now time.Time, interval time.Duration) bool {
	return c.lastDiscovery.IsZero() || now.Sub(c.lastDiscovery) >= interval
}

// LastDiscovery devuelve el timestamp del último discovery completo.
func (c *Cache) LastDiscovery() time.Time {
	return c.lastDiscovery
}

// Len devuelve el número de mercados en cache.
func (c *Cache) Len() int {
	return len(c.markets)
}
