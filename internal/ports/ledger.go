package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
)

// FillInput son los datos de un fill a registrar en el ledger.
// QtyFilled < 0 significa "sin dato de fill parcial": se asume fill completo
// y se usa QtyRequested.
type FillInput struct {
	Side         domain.Side
	QtyRequested float64
	QtyFilled    float64
	Price        float64
	ExecutionRef string
}

// CycleStats es el resumen persistido de un ciclo de scan.
type CycleStats struct {
	ScannedAt     time.Time
	CycleNumber   int64
	Markets       int
	Opportunities int
	Trades        int
	Discovery     bool // true si el ciclo hizo discovery completo
}

// Ledger es el registro durable de posiciones y fills.
type Ledger interface {
	// CreatePosition crea una fila nueva de posición para el mercado.
	// Llamadas repetidas para el mismo mercado crean filas distintas:
	// la detección de duplicados es responsabilidad del caller.
	CreatePosition(ctx context.Context, conditionID, question string) (int64, error)

	// RecordFill clasifica el fill (filled/partial), lo inserta y acumula
	// qty/cost del lado correspondiente de forma atómica. Una referencia de
	// ejecución repetida devuelve domain.ErrDuplicateExecutionRef sin
	// modificar la posición.
	RecordFill(ctx context.Context, positionID int64, fill FillInput) (domain.Fill, error)

	// GetPosition hace un point read por ID.
	GetPosition(ctx context.Context, positionID int64) (domain.Position, error)

	// OpenPositions devuelve todas las posiciones abiertas.
	OpenPositions(ctx context.Context) ([]domain.Position, error)

	// LogObservedOpportunity registra una oportunidad observada (pasó el
	// techo de coste) para analytics, haya sido ejecutada o no.
	LogObservedOpportunity(ctx context.Context, c domain.Classification) error

	// SaveCycleStats persiste el resumen de un ciclo.
	SaveCycleStats(ctx context.Context, stats CycleStats) error

	// Close cierra la conexión limpiamente.
	Close() error
}
