package ports

import (
	"context"

	"github.com/alejandrodnm/gabagool/internal/domain"
)

// CycleSummary es lo que el notifier muestra al final de cada ciclo.
type CycleSummary struct {
	CycleNumber   int64
	Markets       int
	Expired       int
	Observed      int
	Actionable    int
	TradesTotal   int
	Discovery     bool
	DurationMilli int64
}

// Notifier presenta el estado del scanner al operador.
type Notifier interface {
	// NotifyCycle muestra el resumen de un ciclo.
	NotifyCycle(ctx context.Context, summary CycleSummary) error

	// NotifyPositions muestra las posiciones abiertas del ledger.
	NotifyPositions(ctx context.Context, positions []domain.Position) error
}
