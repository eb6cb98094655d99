package domain

import (
	"errors"
	"fmt"
)

// Taxonomía de errores del scanner. Cada call site externo clasifica su
// fallo con uno de estos tipos en vez de tragar un error genérico.

var (
	// ErrDataSourceUnavailable: el proveedor de market data no responde.
	// Transitorio — dispara el fallback a cache stale, no falla el ciclo.
	ErrDataSourceUnavailable = errors.New("market data source unavailable")

	// ErrEmptyCache: refresh sin cache previa. Señal para que el caller
	// haga fallback a discovery, no un fallo.
	ErrEmptyCache = errors.New("snapshot cache is empty")

	// ErrDuplicateExecutionRef: segundo RecordFill con la misma referencia.
	// Violación de integridad del ledger — se rechaza el write.
	ErrDuplicateExecutionRef = errors.New("duplicate execution reference")

	// ErrPositionNotFound: point read de una posición inexistente.
	ErrPositionNotFound = errors.New("position not found")
)

// OrderRejectedError: el gateway rechazó un leg. Aborta la ejecución de esa
// oportunidad pero no el ciclo.
type OrderRejectedError struct {
	ConditionID string
	Side        Side
	Reason      string
}

func (e *OrderRejectedError) Error() string {
	return fmt.Sprintf("order rejected: %s %s: %s", e.ConditionID, e.Side, e.Reason)
}

// OneSidedPositionError: el segundo leg falló después de ejecutarse el
// primero. La posición queda desbalanceada con qty=0 en un lado y debe
// señalizarse para remediación — nunca absorberse en silencio.
type OneSidedPositionError struct {
	PositionID  int64
	ConditionID string
	FilledSide  Side
	Cause       error
}

func (e *OneSidedPositionError) Error() string {
	return fmt.Sprintf("one-sided position %d (%s): leg %s filled, other leg failed: %v",
		e.PositionID, e.ConditionID, e.FilledSide, e.Cause)
}

func (e *OneSidedPositionError) Unwrap() error { return e.Cause }

// FatalStopError: se alcanzó el techo de fallos consecutivos de ciclo.
// El controller para de forma permanente; no se reintenta.
type FatalStopError struct {
	ConsecutiveErrors int
	LastErr           error
}

func (e *FatalStopError) Error() string {
	return fmt.Sprintf("scanner stopped: %d consecutive cycle failures (last: %v)",
		e.ConsecutiveErrors, e.LastErr)
}

func (e *FatalStopError) Unwrap() error { return e.LastErr }
