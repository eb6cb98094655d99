package scanner

// Fakes compartidos por los tests del paquete. Implementan los ports en
// memoria y registran las llamadas para poder hacer asserts sobre ellas.

import (
	"context"
	"fmt"

	"github.com/alejandrodnm/gabagool/internal/domain"
	"github.com/alejandrodnm/gabagool/internal/ports"
)

// fakeSource implementa ports.MarketSource con respuestas programables.
type fakeSource struct {
	discoverFn    func() ([]domain.Market, error)
	refreshFn     func(ids []string) ([]domain.Market, error)
	discoverCalls int
	refreshCalls  int
}

func (s *fakeSource) Discover(_ context.Context, _ ports.MarketFilter) ([]domain.Market, error) {
	s.discoverCalls++
	if s.discoverFn == nil {
		return nil, nil
	}
	return s.discoverFn()
}

func (s *fakeSource) RefreshPrices(_ context.Context, ids []string) ([]domain.Market, error) {
	s.refreshCalls++
	if s.refreshFn == nil {
		return nil, nil
	}
	return s.refreshFn(ids)
}

// fakeLedger implementa ports.Ledger en memoria.
type fakeLedger struct {
	nextID    int64
	positions map[int64]*domain.Position
	fills     []domain.Fill
	refs      map[string]bool
	observed  []domain.Classification
	cycles    []ports.CycleStats
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{
		positions: make(map[int64]*domain.Position),
		refs:      make(map[string]bool),
	}
}

func (l *fakeLedger) CreatePosition(_ context.Context, conditionID, question string) (int64, error) {
	l.nextID++
	l.positions[l.nextID] = &domain.Position{
		ID:          l.nextID,
		ConditionID: conditionID,
		Question:    question,
		Status:      domain.PositionOpen,
	}
	return l.nextID, nil
}

func (l *fakeLedger) RecordFill(_ context.Context, positionID int64, in ports.FillInput) (domain.Fill, error) {
	if l.refs[in.ExecutionRef] {
		return domain.Fill{}, domain.ErrDuplicateExecutionRef
	}
	p, ok := l.positions[positionID]
	if !ok {
		return domain.Fill{}, domain.ErrPositionNotFound
	}

	qty := in.QtyFilled
	if qty < 0 {
		qty = in.QtyRequested
	}
	cost := qty * in.Price
	if in.Side == domain.SideYes {
		p.QtyYes += qty
		p.CostYes += cost
	} else {
		p.QtyNo += qty
		p.CostNo += cost
	}

	fill := domain.Fill{
		ID:           int64(len(l.fills) + 1),
		PositionID:   positionID,
		Side:         in.Side,
		QtyRequested: in.QtyRequested,
		QtyFilled:    qty,
		Price:        in.Price,
		Cost:         cost,
		ExecutionRef: in.ExecutionRef,
		Status:       domain.ClassifyFill(in.QtyRequested, qty),
	}
	l.refs[in.ExecutionRef] = true
	l.fills = append(l.fills, fill)
	return fill, nil
}

func (l *fakeLedger) GetPosition(_ context.Context, positionID int64) (domain.Position, error) {
	p, ok := l.positions[positionID]
	if !ok {
		return domain.Position{}, domain.ErrPositionNotFound
	}
	return *p, nil
}

func (l *fakeLedger) OpenPositions(_ context.Context) ([]domain.Position, error) {
	var out []domain.Position
	for _, p := range l.positions {
		if p.Status == domain.PositionOpen {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (l *fakeLedger) LogObservedOpportunity(_ context.Context, c domain.Classification) error {
	l.observed = append(l.observed, c)
	return nil
}

func (l *fakeLedger) SaveCycleStats(_ context.Context, stats ports.CycleStats) error {
	l.cycles = append(l.cycles, stats)
	return nil
}

func (l *fakeLedger) Close() error { return nil }

// fakeExecutor implementa ports.OrderExecutor con fallos programables por lado.
type fakeExecutor struct {
	balance    float64
	balanceErr error
	submitErr  map[domain.Side]error
	states     map[string]domain.OrderState
	submitted  []domain.OrderRequest
}

func newFakeExecutor(balance float64) *fakeExecutor {
	return &fakeExecutor{
		balance:   balance,
		submitErr: make(map[domain.Side]error),
		states:    make(map[string]domain.OrderState),
	}
}

func (e *fakeExecutor) SubmitOrder(_ context.Context, req domain.OrderRequest) (domain.OrderHandle, error) {
	if err := e.submitErr[req.Side]; err != nil {
		return domain.OrderHandle{}, err
	}
	e.submitted = append(e.submitted, req)
	return domain.OrderHandle{CLOBOrderID: fmt.Sprintf("order-%s", req.Side)}, nil
}

func (e *fakeExecutor) OrderStatus(_ context.Context, handle domain.OrderHandle) (domain.OrderState, error) {
	if state, ok := e.states[handle.CLOBOrderID]; ok {
		return state, nil
	}
	return domain.OrderState{Status: domain.OrderFilled, FilledQty: -1}, nil
}

func (e *fakeExecutor) Balance(_ context.Context) (float64, error) {
	return e.balance, e.balanceErr
}

// fakeNotifier registra los resúmenes de ciclo.
type fakeNotifier struct {
	summaries []ports.CycleSummary
}

func (n *fakeNotifier) NotifyCycle(_ context.Context, s ports.CycleSummary) error {
	n.summaries = append(n.summaries, s)
	return nil
}

func (n *fakeNotifier) NotifyPositions(_ context.Context, _ []domain.Position) error {
	return nil
}
