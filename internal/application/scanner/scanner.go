package scanner

// scanner.go — loop principal de escaneo.
//
// Máquina de estados por ciclo:
//   Idle → Discovering | Refreshing → Evaluating → (Executing)* → Sleeping
// con ErrorBackoff alcanzable desde cualquier fase del ciclo. Un ciclo
// fallido duerme pollInterval * 2^consecutiveErrors; cuando los fallos
// consecutivos superan el techo configurado, el loop para de forma
// permanente con *domain.FatalStopError (no se reintenta).
//
// La cancelación es cooperativa: la señal de stop se observa entre ciclos,
// nunca a mitad de uno — el ciclo en curso siempre completa o falla.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
	"github.com/alejandrodnm/gabagool/internal/ports"
)

// Config contiene la configuración del scanner.
type Config struct {
	PollInterval         time.Duration
	DiscoveryInterval    time.Duration
	MaxConsecutiveErrors int
	Workers              int // goroutines para clasificación paralela (0 = NumCPU*2)
	DryRun               bool
	RunOnce              bool
	Filter               ports.MarketFilter
	Detector             domain.DetectorConfig
}

// Stats son los contadores del proceso, reset solo al arrancar.
type Stats struct {
	Cycles        int64
	Opportunities int64
	Trades        int64
}

// Scanner es el orquestador del loop de escaneo.
type Scanner struct {
	cfg      Config
	cache    *Cache
	detector *Detector
	trader   *Trader
	ledger   ports.Ledger
	notifier ports.Notifier

	stats             Stats
	consecutiveErrors int

	// sleep se inyecta en tests para no dormir de verdad
	sleep func(ctx context.Context, d time.Duration) error
}

// New crea un Scanner con todas las dependencias inyectadas.
func New(cfg Config, cache *Cache, trader *Trader, ledger ports.Ledger, notifier ports.Notifier) *Scanner {
	return &Scanner{
		cfg:      cfg,
		cache:    cache,
		detector: NewDetector(cfg.Detector),
		trader:   trader,
		ledger:   ledger,
		notifier: notifier,
		sleep:    sleepCtx,
	}
}

// Stats devuelve los contadores actuales.
func (s *Scanner) Stats() Stats {
	return s.stats
}

// Run ejecuta el loop hasta que el contexto se cancele, RunOnce complete un
// ciclo, o se alcance el techo de fallos consecutivos (fatal).
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"poll_interval", s.cfg.PollInterval,
		"discovery_interval", s.cfg.DiscoveryInterval,
		"max_consecutive_errors", s.cfg.MaxConsecutiveErrors,
		"dry_run", s.cfg.DryRun,
	)

	for {
		// Stop cooperativo: solo entre ciclos
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped", "cycles", s.stats.Cycles)
			return nil
		default:
		}

		err := s.runCycle(ctx)
		if err == nil {
			if s.consecutiveErrors > 0 {
				slog.Info("recovered from error state", "after_failures", s.consecutiveErrors)
				s.consecutiveErrors = 0
			}
			if s.cfg.RunOnce {
				return nil
			}
			if err := s.sleep(ctx, s.cfg.PollInterval); err != nil {
				return nil // contexto cancelado durante el sleep
			}
			continue
		}

		if ctx.Err() != nil {
			return nil
		}

		s.consecutiveErrors++
		slog.Error("scan cycle failed",
			"consecutive", s.consecutiveErrors,
			"max", s.cfg.MaxConsecutiveErrors,
			"err", err,
		)

		if s.consecutiveErrors > s.cfg.MaxConsecutiveErrors {
			fatal := &domain.FatalStopError{
				ConsecutiveErrors: s.consecutiveErrors,
				LastErr:           err,
			}
			slog.Error("FATAL: consecutive failure ceiling exceeded, stopping permanently",
				"failures", s.consecutiveErrors)
			return fatal
		}

		backoff := backoffDelay(s.cfg.PollInterval, s.consecutiveErrors)
		slog.Warn("backing off before retry", "wait", backoff)
		if err := s.sleep(ctx, backoff); err != nil {
			return nil
		}
	}
}

// backoffDelay devuelve base * 2^consecutiveErrors.
func backoffDelay(base time.Duration, consecutiveErrors int) time.Duration {
	return time.Duration(float64(base) * math.Pow(2, float64(consecutiveErrors)))
}

// runCycle ejecuta un ciclo completo: snapshot → filtro → clasificación →
// ejecución → persistencia del resumen.
func (s *Scanner) runCycle(ctx context.Context) error {
	s.stats.Cycles++
	start := time.Now()
	now := start.UTC()

	// Discovery caro vs refresh barato, según cadencia
	discovery := s.cache.NeedsDiscovery(start, s.cfg.DiscoveryInterval)

	var markets []domain.Market
	var err error
	if discovery {
		markets, err = s.cache.Discover(ctx, s.cfg.Filter)
	} else {
		markets, err = s.cache.Refresh(ctx)
		if errors.Is(err, domain.ErrEmptyCache) {
			// Cache vacía: fallback a discovery
			discovery = true
			markets, err = s.cache.Discover(ctx, s.cfg.Filter)
		}
	}
	if err != nil {
		return fmt.Errorf("scanner.runCycle: snapshot: %w", err)
	}

	// Filtrar mercados expirados o a punto de expirar
	active := markets[:0:0]
	for _, m := range markets {
		if m.ExpiresWithin(now, s.cfg.Detector.ExpiryBuffer) {
			slog.Debug("skipping expiring market", "slug", m.Slug, "end", m.EndDate)
			continue
		}
		active = append(active, m)
	}
	expired := len(markets) - len(active)

	classifications := classifyConcurrent(s.detector, active, now, s.cfg.Workers)

	observed, actionable := 0, 0
	for _, c := range classifications {
		if !c.Observed {
			slog.Debug("market skipped",
				"slug", c.Market.Slug,
				"reason", c.Reason.String(),
				"combined_cost", fmt.Sprintf("%.4f", c.Market.CombinedCost()),
			)
			continue
		}

		observed++
		s.stats.Opportunities++
		if err := s.ledger.LogObservedOpportunity(ctx, c); err != nil {
			slog.Warn("failed to log observed opportunity", "slug", c.Market.Slug, "err", err)
		}

		if !c.Actionable {
			slog.Debug("opportunity below margin",
				"slug", c.Market.Slug,
				"profit_potential", fmt.Sprintf("%.4f", c.ProfitPotential),
			)
			continue
		}

		actionable++
		slog.Info("OPPORTUNITY",
			"n", s.stats.Opportunities,
			"market", domain.TruncateQuestion(c.Market.Question, c.Market.ConditionID, 60),
			"yes", fmt.Sprintf("%.4f", c.Market.YesPrice),
			"no", fmt.Sprintf("%.4f", c.Market.NoPrice),
			"profit", fmt.Sprintf("%.4f", c.ProfitPotential),
		)

		// Ejecución aislada por instrumento: un fallo no aborta el batch
		if err := s.executeOne(ctx, c); err == nil {
			s.stats.Trades++
		}
	}

	if err := s.ledger.SaveCycleStats(ctx, ports.CycleStats{
		ScannedAt:     now,
		CycleNumber:   s.stats.Cycles,
		Markets:       len(markets),
		Opportunities: observed,
		Trades:        int(s.stats.Trades),
		Discovery:     discovery,
	}); err != nil {
		slog.Warn("failed to save cycle stats", "err", err)
	}

	if err := s.notifier.NotifyCycle(ctx, ports.CycleSummary{
		CycleNumber:   s.stats.Cycles,
		Markets:       len(markets),
		Expired:       expired,
		Observed:      observed,
		Actionable:    actionable,
		TradesTotal:   int(s.stats.Trades),
		Discovery:     discovery,
		DurationMilli: time.Since(start).Milliseconds(),
	}); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	return nil
}

// executeOne ejecuta una oportunidad y clasifica su fallo. Las posiciones
// one-sided se elevan a ERROR: requieren remediación, no pueden quedarse en
// silencio.
func (s *Scanner) executeOne(ctx context.Context, c domain.Classification) error {
	err := s.trader.Execute(ctx, c)
	if err == nil {
		return nil
	}

	var oneSided *domain.OneSidedPositionError
	var rejected *domain.OrderRejectedError
	switch {
	case errors.As(err, &oneSided):
		slog.Error("ONE-SIDED POSITION: second leg failed after first fill, needs remediation",
			"position_id", oneSided.PositionID,
			"condition_id", oneSided.ConditionID,
			"filled_side", oneSided.FilledSide,
			"cause", oneSided.Cause,
		)
	case errors.As(err, &rejected):
		slog.Warn("order rejected, opportunity aborted",
			"condition_id", rejected.ConditionID,
			"side", rejected.Side,
			"reason", rejected.Reason,
		)
	default:
		slog.Warn("trade execution failed", "slug", c.Market.Slug, "err", err)
	}
	return err
}

// sleepCtx duerme respetando el contexto.
func sleepCtx(ctx context.Context, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
