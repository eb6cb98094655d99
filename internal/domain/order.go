package domain

import "time"

// OrderRequest is sent to the execution gateway for one leg.
type OrderRequest struct {
	ConditionID string
	TokenID     string
	Side        Side
	Qty         float64 // shares
	Price       float64 // USDC per share
}

// Spend returns the USDC cost of the request at full fill.
func (r OrderRequest) Spend() float64 {
	return r.Qty * r.Price
}

// OrderHandle identifies a submitted order for later status polling.
type OrderHandle struct {
	CLOBOrderID string // Polymarket order hash (0x...)
	SubmittedAt time.Time
}

// OrderStatus is the lifecycle of a submitted order on the CLOB.
type OrderStatus string

const (
	OrderPending         OrderStatus = "PENDING"
	OrderFilled          OrderStatus = "FILLED"
	OrderPartiallyFilled OrderStatus = "PARTIAL"
	OrderCancelled       OrderStatus = "CANCELLED"
	OrderError           OrderStatus = "ERROR"
)

// Terminal reports whether the order will see no further fills.
func (s OrderStatus) Terminal() bool {
	return s == OrderFilled || s == OrderCancelled || s == OrderError
}

// OrderState is a poll result from the gateway.
type OrderState struct {
	Status    OrderStatus
	FilledQty float64 // shares filled so far
	AvgPrice  float64 // average fill price, 0 if nothing filled
}
