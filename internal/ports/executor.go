package ports

import (
	"context"

	"github.com/alejandrodnm/gabagool/internal/domain"
)

// OrderExecutor submits and monitors real orders on Polymarket CLOB.
// Submission of the two legs of a pair is NOT atomic: the caller is
// responsible for leg sequencing and for surfacing one-sided outcomes.
type OrderExecutor interface {
	// SubmitOrder signs and submits one leg. A CLOB-level rejection is
	// returned as *domain.OrderRejectedError.
	SubmitOrder(ctx context.Context, req domain.OrderRequest) (domain.OrderHandle, error)

	// OrderStatus polls the CLOB for the current fill state of an order.
	OrderStatus(ctx context.Context, handle domain.OrderHandle) (domain.OrderState, error)

	// Balance returns the available USDC balance in the CLOB.
	Balance(ctx context.Context) (float64, error)
}
