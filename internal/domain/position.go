package domain

import "time"

// PositionStatus es el ciclo de vida de una posición en el ledger.
type PositionStatus string

const (
	PositionOpen   PositionStatus = "open"
	PositionClosed PositionStatus = "closed"
)

// Position es el agregado mutable de un par YES/NO en un mercado.
// Solo acumula: qty y cost por lado son monótonos no decrecientes
// (este diseño no soporta unwind parcial).
type Position struct {
	ID          int64
	ConditionID string
	Question    string
	QtyYes      float64
	CostYes     float64 // USDC total gastado en YES
	QtyNo       float64
	CostNo      float64 // USDC total gastado en NO
	Status      PositionStatus
	CreatedAt   time.Time
	ClosedAt    *time.Time
}

// AvgYes devuelve el coste medio por share YES, 0 si no hay shares.
func (p Position) AvgYes() float64 {
	if p.QtyYes <= 0 {
		return 0
	}
	return p.CostYes / p.QtyYes
}

// AvgNo devuelve el coste medio por share NO, 0 si no hay shares.
func (p Position) AvgNo() float64 {
	if p.QtyNo <= 0 {
		return 0
	}
	return p.CostNo / p.QtyNo
}

// PairCost devuelve el coste medio combinado de la pareja.
func (p Position) PairCost() float64 {
	return p.AvgYes() + p.AvgNo()
}

// GuaranteedProfit devuelve el profit determinista al resolver el mercado:
// min(qtyYes, qtyNo) − coste total. Solo válido con ambos legs llenos;
// hasta entonces el riesgo es unilateral y devuelve 0.
func (p Position) GuaranteedProfit() float64 {
	if p.QtyYes <= 0 || p.QtyNo <= 0 {
		return 0
	}
	return min(p.QtyYes, p.QtyNo) - (p.CostYes + p.CostNo)
}

// IsBalanced devuelve true si las cantidades están dentro de la tolerancia.
// Una posición con algún leg a cero nunca está balanceada.
func (p Position) IsBalanced(tolerance float64) bool {
	if p.QtyYes <= 0 || p.QtyNo <= 0 {
		return false
	}
	ratio := min(p.QtyYes, p.QtyNo) / max(p.QtyYes, p.QtyNo)
	return ratio >= 1.0-tolerance
}

// IsOneSided devuelve true si solo un leg tiene shares — el estado de error
// detectable cuando el segundo leg falló tras ejecutarse el primero.
func (p Position) IsOneSided() bool {
	return (p.QtyYes > 0) != (p.QtyNo > 0)
}

// FillStatus clasifica un fill según la fracción ejecutada.
type FillStatus string

const (
	FillStatusFilled  FillStatus = "filled"
	FillStatusPartial FillStatus = "partial"

	// fillCompleteThreshold: un fill cuenta como completo con >= 99% ejecutado.
	fillCompleteThreshold = 0.99
)

// ClassifyFill devuelve filled si se ejecutó al menos el 99% de lo pedido.
func ClassifyFill(qtyRequested, qtyFilled float64) FillStatus {
	if qtyRequested > 0 && qtyFilled >= qtyRequested*fillCompleteThreshold {
		return FillStatusFilled
	}
	return FillStatusPartial
}

// Fill es un registro append-only de una ejecución (total o parcial).
type Fill struct {
	ID           int64
	PositionID   int64
	Side         Side
	QtyRequested float64
	QtyFilled    float64
	Price        float64
	Cost         float64 // QtyFilled * Price
	ExecutionRef string  // referencia opaca del gateway, única por fill
	Status       FillStatus
	CreatedAt    time.Time
}
