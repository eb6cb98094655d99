package ports

import (
	"context"

	"github.com/alejandrodnm/gabagool/internal/domain"
)

// MarketFilter son los criterios de discovery.
type MarketFilter struct {
	Keyword string // filtro por título de evento, ej. "Bitcoin"
}

// MarketSource obtiene snapshots de mercados binarios desde el proveedor
// de market data.
type MarketSource interface {
	// Discover hace el scan completo (caro) y devuelve todos los mercados
	// activos que pasan el filtro. Los registros malformados se saltan.
	Discover(ctx context.Context, filter MarketFilter) ([]domain.Market, error)

	// RefreshPrices re-obtiene precios (barato) solo para los conditionIDs
	// dados. Los IDs que ya no existen upstream se omiten en silencio.
	// Devuelve domain.ErrDataSourceUnavailable si el upstream no responde.
	RefreshPrices(ctx context.Context, conditionIDs []string) ([]domain.Market, error)
}
