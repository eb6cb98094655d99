package scanner

// trade.go — ejecución de una oportunidad accionable.
//
// Protocolo de legs estrictamente secuencial: el leg YES se envía y se
// registra completo antes de tocar el leg NO. Un rechazo del primer leg
// aborta el par sin enviar el segundo; un fallo del segundo tras ejecutarse
// el primero produce una posición one-sided que se señaliza con
// *domain.OneSidedPositionError, nunca se absorbe en silencio.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/gabagool/internal/domain"
	"github.com/alejandrodnm/gabagool/internal/ports"
)

const (
	defaultFillPollAttempts = 5
	defaultFillPollInterval = 2 * time.Second
)

// TraderConfig controla el sizing y el modo de ejecución.
type TraderConfig struct {
	BankrollUSDC         float64
	MaxWalletUtilization float64
	QtyBalanceTolerance  float64
	DryRun               bool
}

// Trader convierte clasificaciones accionables en posiciones del ledger.
type Trader struct {
	cfg      TraderConfig
	executor ports.OrderExecutor
	ledger   ports.Ledger

	fillPollAttempts int
	fillPollInterval time.Duration
}

// NewTrader crea un Trader. executor puede ser nil solo en dry-run.
func NewTrader(cfg TraderConfig, executor ports.OrderExecutor, ledger ports.Ledger) *Trader {
	return &Trader{
		cfg:              cfg,
		executor:         executor,
		ledger:           ledger,
		fillPollAttempts: defaultFillPollAttempts,
		fillPollInterval: defaultFillPollInterval,
	}
}

// Execute dimensiona y ejecuta la oportunidad. En dry-run calcula el sizing
// y loggea sin tocar el gateway; el resto de transiciones de estado ocurren
// igual (el controller cuenta el trade).
func (t *Trader) Execute(ctx context.Context, c domain.Classification) error {
	m := c.Market

	maxSpend, err := t.legBudget(ctx)
	if err != nil {
		return fmt.Errorf("trader.Execute: budget: %w", err)
	}

	size := domain.BalancedSize(m.YesPrice, m.NoPrice, maxSpend, t.cfg.QtyBalanceTolerance)
	if size.IsZero() {
		slog.Warn("no budget for trade", "market", m.Slug, "max_spend", maxSpend)
		return nil
	}

	slog.Info("executing opportunity",
		"market", domain.TruncateQuestion(m.Question, m.ConditionID, 60),
		"yes_price", fmt.Sprintf("%.4f", m.YesPrice),
		"no_price", fmt.Sprintf("%.4f", m.NoPrice),
		"profit_potential", fmt.Sprintf("%.4f", c.ProfitPotential),
		"qty_yes", fmt.Sprintf("%.2f", size.QtyYes),
		"qty_no", fmt.Sprintf("%.2f", size.QtyNo),
		"total_spend", fmt.Sprintf("$%.2f", size.TotalSpend()),
		"dry_run", t.cfg.DryRun,
	)

	if t.cfg.DryRun {
		return nil
	}

	positionID, err := t.ledger.CreatePosition(ctx, m.ConditionID, m.Question)
	if err != nil {
		return fmt.Errorf("trader.Execute: create position: %w", err)
	}

	// Leg YES completo antes de enviar el NO
	if err := t.executeLeg(ctx, positionID, m, domain.SideYes, size.QtyYes); err != nil {
		// Primer leg rechazado: se aborta el par, el segundo nunca se envía
		return fmt.Errorf("trader.Execute: leg YES: %w", err)
	}

	if err := t.executeLeg(ctx, positionID, m, domain.SideNo, size.QtyNo); err != nil {
		// Segundo leg fallido tras ejecutarse el primero: estado one-sided
		return &domain.OneSidedPositionError{
			PositionID:  positionID,
			ConditionID: m.ConditionID,
			FilledSide:  domain.SideYes,
			Cause:       err,
		}
	}

	if pos, err := t.ledger.GetPosition(ctx, positionID); err == nil {
		slog.Info("position executed",
			"position_id", positionID,
			"guaranteed_profit", fmt.Sprintf("$%.2f", pos.GuaranteedProfit()),
			"balanced", pos.IsBalanced(t.cfg.QtyBalanceTolerance),
		)
	}

	return nil
}

// legBudget devuelve el gasto máximo por leg: fracción configurada del
// balance disponible, acotada por el bankroll. En dry-run el balance es el
// bankroll — no hay wallet que consultar.
func (t *Trader) legBudget(ctx context.Context) (float64, error) {
	balance := t.cfg.BankrollUSDC
	if !t.cfg.DryRun {
		b, err := t.executor.Balance(ctx)
		if err != nil {
			return 0, err
		}
		balance = min(b, t.cfg.BankrollUSDC)
	}
	return balance * t.cfg.MaxWalletUtilization, nil
}

// executeLeg envía un leg, espera su fill y lo registra en el ledger.
func (t *Trader) executeLeg(ctx context.Context, positionID int64, m domain.Market, side domain.Side, qty float64) error {
	req := domain.OrderRequest{
		ConditionID: m.ConditionID,
		TokenID:     m.TokenID(side),
		Side:        side,
		Qty:         qty,
		Price:       m.Price(side),
	}

	handle, err := t.executor.SubmitOrder(ctx, req)
	if err != nil {
		return err
	}

	state := t.waitForFill(ctx, handle)

	ref := handle.CLOBOrderID
	if ref == "" {
		ref = uuid.NewString() // el gateway no devolvió hash: ref local
	}

	price := req.Price
	if state.AvgPrice > 0 {
		price = state.AvgPrice
	}

	fill, err := t.ledger.RecordFill(ctx, positionID, ports.FillInput{
		Side:         side,
		QtyRequested: qty,
		QtyFilled:    state.FilledQty,
		Price:        price,
		ExecutionRef: ref,
	})
	if err != nil {
		return fmt.Errorf("record fill %s: %w", side, err)
	}

	if fill.Status == domain.FillStatusPartial {
		// No es un error: queda en el ledger para reconciliación posterior
		slog.Warn("partial fill recorded",
			"position_id", positionID,
			"side", side,
			"requested", fmt.Sprintf("%.2f", qty),
			"filled", fmt.Sprintf("%.2f", fill.QtyFilled),
		)
	}

	return nil
}

// waitForFill hace polling del estado del order hasta que sea terminal o se
// agoten los intentos. Devuelve el último estado observado; si el gateway no
// responde a ningún poll, asume fill completo optimista (igual que quedaría
// un fill notificado sin qty) — la reconciliación corrige después.
func (t *Trader) waitForFill(ctx context.Context, handle domain.OrderHandle) domain.OrderState {
	last := domain.OrderState{Status: domain.OrderPending, FilledQty: -1}

	for attempt := 0; attempt < t.fillPollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return last
		case <-time.After(t.fillPollInterval):
		}

		state, err := t.executor.OrderStatus(ctx, handle)
		if err != nil {
			slog.Debug("order status poll failed",
				"order", handle.CLOBOrderID,
				"attempt", attempt+1,
				"err", err,
			)
			continue
		}

		last = state
		if state.Status.Terminal() {
			break
		}
	}

	return last
}
