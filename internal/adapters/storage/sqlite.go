package storage

// sqlite.go — ledger durable de posiciones y fills.
//
// Tablas:
//   positions              — agregado qty/cost por lado, una fila por posición
//   fills                  — append-only, execution_ref UNIQUE (idempotencia)
//   observed_opportunities — una fila por mercado observado (UPSERT)
//   cycles                 — resumen ligero por ciclo de scan
//
// RecordFill hace insert del fill + incremento del agregado en una sola
// transacción; con SetMaxOpenConns(1) los writes sobre una posición quedan
// serializados (SQLite es single-writer).

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/gabagool/internal/domain"
	"github.com/alejandrodnm/gabagool/internal/ports"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS positions (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    condition_id TEXT NOT NULL,
    question     TEXT,
    qty_yes      REAL NOT NULL DEFAULT 0,
    cost_yes     REAL NOT NULL DEFAULT 0,
    qty_no       REAL NOT NULL DEFAULT 0,
    cost_no      REAL NOT NULL DEFAULT 0,
    status       TEXT NOT NULL DEFAULT 'open',
    created_at   DATETIME NOT NULL,
    closed_at    DATETIME
);

CREATE TABLE IF NOT EXISTS fills (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    position_id   INTEGER NOT NULL,
    side          TEXT NOT NULL,
    qty_requested REAL NOT NULL,
    qty_filled    REAL NOT NULL,
    price         REAL NOT NULL,
    cost          REAL NOT NULL,
    execution_ref TEXT NOT NULL UNIQUE,
    status        TEXT NOT NULL,
    created_at    DATETIME NOT NULL,
    FOREIGN KEY (position_id) REFERENCES positions(id)
);

CREATE TABLE IF NOT EXISTS observed_opportunities (
    condition_id     TEXT PRIMARY KEY,
    question         TEXT,
    slug             TEXT,
    yes_price        REAL NOT NULL DEFAULT 0,
    no_price         REAL NOT NULL DEFAULT 0,
    combined_cost    REAL NOT NULL DEFAULT 0,
    profit_potential REAL NOT NULL DEFAULT 0,
    actionable       INTEGER NOT NULL DEFAULT 0,
    times_seen       INTEGER NOT NULL DEFAULT 1,
    best_profit      REAL NOT NULL DEFAULT 0,
    first_seen       DATETIME NOT NULL,
    last_seen        DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS cycles (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    scanned_at    DATETIME NOT NULL,
    cycle_number  INTEGER NOT NULL,
    markets       INTEGER NOT NULL DEFAULT 0,
    opportunities INTEGER NOT NULL DEFAULT 0,
    trades        INTEGER NOT NULL DEFAULT 0,
    discovery     INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_positions_status ON positions(status);
CREATE INDEX IF NOT EXISTS idx_fills_position   ON fills(position_id);
CREATE INDEX IF NOT EXISTS idx_obs_last         ON observed_opportunities(last_seen DESC);
CREATE INDEX IF NOT EXISTS idx_cycles_at        ON cycles(scanned_at DESC);
`

const (
	retentionCycles   = 30 * 24 * time.Hour // ciclos: 30 días
	retentionObserved = 14 * 24 * time.Hour // observadas: los mercados 15m resuelven mucho antes
)

// SQLiteLedger implementa ports.Ledger usando SQLite (pure Go, sin CGo).
type SQLiteLedger struct {
	db *sql.DB
}

// NewSQLiteLedger abre (o crea) la base de datos en la ruta dada,
// aplica el schema y limpia datos antiguos.
func NewSQLiteLedger(path string) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteLedger: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteLedger: apply schema: %w", err)
	}

	l := &SQLiteLedger{db: db}
	l.pruneOld(context.Background())
	return l, nil
}

// CreatePosition crea una fila nueva para el mercado dado.
// No deduplica: llamadas repetidas crean posiciones distintas.
func (l *SQLiteLedger) CreatePosition(ctx context.Context, conditionID, question string) (int64, error) {
	res, err := l.db.ExecContext(ctx,
		`INSERT INTO positions (condition_id, question, status, created_at)
		 VALUES (?, ?, 'open', ?)`,
		conditionID, question, time.Now().UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("storage.CreatePosition: insert: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage.CreatePosition: last id: %w", err)
	}
	return id, nil
}

// RecordFill clasifica el fill y lo registra de forma atómica:
// insert en fills + incremento de qty/cost del lado correspondiente.
// Una execution_ref repetida devuelve domain.ErrDuplicateExecutionRef
// sin tocar la posición.
func (l *SQLiteLedger) RecordFill(ctx context.Context, positionID int64, in ports.FillInput) (domain.Fill, error) {
	actualQty := in.QtyFilled
	if actualQty < 0 {
		actualQty = in.QtyRequested // sin dato de parcialidad: fill completo
	}
	cost := actualQty * in.Price
	status := domain.ClassifyFill(in.QtyRequested, actualQty)
	now := time.Now().UTC()

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Fill{}, fmt.Errorf("storage.RecordFill: begin tx: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM fills WHERE execution_ref = ?`, in.ExecutionRef,
	).Scan(&exists); err != nil {
		return domain.Fill{}, fmt.Errorf("storage.RecordFill: check ref: %w", err)
	}
	if exists > 0 {
		return domain.Fill{}, fmt.Errorf("storage.RecordFill: ref %q: %w",
			in.ExecutionRef, domain.ErrDuplicateExecutionRef)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO fills (position_id, side, qty_requested, qty_filled, price, cost, execution_ref, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		positionID, string(in.Side), in.QtyRequested, actualQty, in.Price, cost, in.ExecutionRef, string(status), now,
	)
	if err != nil {
		return domain.Fill{}, fmt.Errorf("storage.RecordFill: insert fill: %w", err)
	}
	fillID, _ := res.LastInsertId()

	column := "no"
	if in.Side == domain.SideYes {
		column = "yes"
	}
	upd, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE positions SET qty_%[1]s = qty_%[1]s + ?, cost_%[1]s = cost_%[1]s + ? WHERE id = ?`, column),
		actualQty, cost, positionID,
	)
	if err != nil {
		return domain.Fill{}, fmt.Errorf("storage.RecordFill: update position: %w", err)
	}
	if n, _ := upd.RowsAffected(); n == 0 {
		return domain.Fill{}, fmt.Errorf("storage.RecordFill: position %d: %w",
			positionID, domain.ErrPositionNotFound)
	}

	if err := tx.Commit(); err != nil {
		return domain.Fill{}, fmt.Errorf("storage.RecordFill: commit: %w", err)
	}

	return domain.Fill{
		ID:           fillID,
		PositionID:   positionID,
		Side:         in.Side,
		QtyRequested: in.QtyRequested,
		QtyFilled:    actualQty,
		Price:        in.Price,
		Cost:         cost,
		ExecutionRef: in.ExecutionRef,
		Status:       status,
		CreatedAt:    now,
	}, nil
}

// GetPosition hace un point read por ID.
func (l *SQLiteLedger) GetPosition(ctx context.Context, positionID int64) (domain.Position, error) {
	row := l.db.QueryRowContext(ctx,
		`SELECT id, condition_id, question, qty_yes, cost_yes, qty_no, cost_no, status, created_at, closed_at
		 FROM positions WHERE id = ?`, positionID)

	p, err := scanPosition(row)
	if err == sql.ErrNoRows {
		return domain.Position{}, fmt.Errorf("storage.GetPosition: id %d: %w",
			positionID, domain.ErrPositionNotFound)
	}
	if err != nil {
		return domain.Position{}, fmt.Errorf("storage.GetPosition: %w", err)
	}
	return p, nil
}

// OpenPositions devuelve todas las posiciones abiertas, más recientes primero.
func (l *SQLiteLedger) OpenPositions(ctx context.Context) ([]domain.Position, error) {
	rows, err := l.db.QueryContext(ctx,
		`SELECT id, condition_id, question, qty_yes, cost_yes, qty_no, cost_no, status, created_at, closed_at
		 FROM positions WHERE status = 'open' ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("storage.OpenPositions: query: %w", err)
	}
	defer rows.Close()

	var positions []domain.Position
	for rows.Next() {
		p, err := scanPosition(rows)
		if err != nil {
			return nil, fmt.Errorf("storage.OpenPositions: scan: %w", err)
		}
		positions = append(positions, p)
	}
	return positions, rows.Err()
}

// LogObservedOpportunity hace upsert de una oportunidad observada.
// first_seen se conserva; times_seen y best_profit se acumulan.
func (l *SQLiteLedger) LogObservedOpportunity(ctx context.Context, c domain.Classification) error {
	now := time.Now().UTC()
	actionable := 0
	if c.Actionable {
		actionable = 1
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO observed_opportunities
			(condition_id, question, slug, yes_price, no_price, combined_cost,
			 profit_potential, actionable, times_seen, best_profit, first_seen, last_seen)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?, ?)
		ON CONFLICT(condition_id) DO UPDATE SET
			question         = excluded.question,
			yes_price        = excluded.yes_price,
			no_price         = excluded.no_price,
			combined_cost    = excluded.combined_cost,
			profit_potential = excluded.profit_potential,
			actionable       = MAX(actionable, excluded.actionable),
			times_seen       = times_seen + 1,
			best_profit      = MAX(best_profit, excluded.best_profit),
			last_seen        = excluded.last_seen
	`,
		c.Market.ConditionID, c.Market.Question, c.Market.Slug,
		c.Market.YesPrice, c.Market.NoPrice, c.Market.CombinedCost(),
		c.ProfitPotential, actionable, c.ProfitPotential, now, now,
	)
	if err != nil {
		return fmt.Errorf("storage.LogObservedOpportunity: upsert %s: %w", c.Market.ConditionID, err)
	}
	return nil
}

// SaveCycleStats persiste el resumen de un ciclo — siempre una fila ligera.
func (l *SQLiteLedger) SaveCycleStats(ctx context.Context, stats ports.CycleStats) error {
	discovery := 0
	if stats.Discovery {
		discovery = 1
	}
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO cycles (scanned_at, cycle_number, markets, opportunities, trades, discovery)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		stats.ScannedAt.UTC(), stats.CycleNumber, stats.Markets, stats.Opportunities, stats.Trades, discovery,
	)
	if err != nil {
		return fmt.Errorf("storage.SaveCycleStats: insert: %w", err)
	}
	return nil
}

// Close cierra la conexión a la base de datos.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

// --- helpers internos ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPosition(row rowScanner) (domain.Position, error) {
	var p domain.Position
	var status string
	var closedAt sql.NullTime

	if err := row.Scan(
		&p.ID, &p.ConditionID, &p.Question,
		&p.QtyYes, &p.CostYes, &p.QtyNo, &p.CostNo,
		&status, &p.CreatedAt, &closedAt,
	); err != nil {
		return domain.Position{}, err
	}

	p.Status = domain.PositionStatus(status)
	if closedAt.Valid {
		t := closedAt.Time
		p.ClosedAt = &t
	}
	return p, nil
}

// pruneOld elimina datos antiguos para mantener la DB ligera.
// Las posiciones no se podan: son el registro contable.
func (l *SQLiteLedger) pruneOld(ctx context.Context) {
	cutoffCycles := time.Now().UTC().Add(-retentionCycles)
	cutoffObserved := time.Now().UTC().Add(-retentionObserved)
	l.db.ExecContext(ctx, `DELETE FROM cycles WHERE scanned_at < ?`, cutoffCycles)
	l.db.ExecContext(ctx, `DELETE FROM observed_opportunities WHERE last_seen < ?`, cutoffObserved)
}
