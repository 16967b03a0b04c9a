package storage

// sqlite.go — archivo duradero de trades liquidados.
//
// El state file solo retiene los últimos 5 settled (formato compacto que
// leen otros consumidores); el resto del histórico vive aquí. El upsert por
// position id hace que re-archivar un trade sea idempotente.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/polytrack/internal/domain"
	_ "modernc.org/sqlite"
)

const archiveSchema = `
CREATE TABLE IF NOT EXISTS settled_trades (
    id                 TEXT PRIMARY KEY,
    market_id          TEXT NOT NULL,
    question           TEXT,
    side               TEXT NOT NULL,
    entry_price        REAL NOT NULL,
    position_size      REAL NOT NULL,
    shares             REAL NOT NULL,
    edge               REAL NOT NULL DEFAULT 0,
    settlement_outcome TEXT NOT NULL,
    won                INTEGER NOT NULL,
    pnl                REAL NOT NULL,
    opened_at          DATETIME NOT NULL,
    settled_at         DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_settled_at     ON settled_trades(settled_at);
CREATE INDEX IF NOT EXISTS idx_settled_market ON settled_trades(market_id);
`

// SQLiteArchive implementa ports.TradeArchive usando SQLite (pure Go, sin CGo).
type SQLiteArchive struct {
	db *sql.DB
}

// NewSQLiteArchive abre (o crea) la base de datos en la ruta dada y aplica
// el schema.
func NewSQLiteArchive(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteArchive: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(archiveSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteArchive: apply schema: %w", err)
	}
	return &SQLiteArchive{db: db}, nil
}

// SaveSettled archiva un trade liquidado. Upsert por position id.
func (a *SQLiteArchive) SaveSettled(ctx context.Context, pos domain.Position) error {
	if pos.Status != domain.StatusSettled || pos.SettlementOutcome == nil ||
		pos.Won == nil || pos.PnL == nil || pos.SettledAt == nil {
		return fmt.Errorf("storage.SaveSettled: position %s is not settled", pos.ID)
	}

	won := 0
	if *pos.Won {
		won = 1
	}

	_, err := a.db.ExecContext(ctx, `
		INSERT INTO settled_trades (id, market_id, question, side, entry_price,
		                            position_size, shares, edge, settlement_outcome,
		                            won, pnl, opened_at, settled_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
		    settlement_outcome = excluded.settlement_outcome,
		    won                = excluded.won,
		    pnl                = excluded.pnl,
		    settled_at         = excluded.settled_at`,
		pos.ID, pos.MarketID, pos.Question, pos.Side, pos.EntryPrice,
		pos.Size, pos.Shares, pos.Edge, *pos.SettlementOutcome,
		won, *pos.PnL,
		pos.OpenedAt.UTC().Format(time.RFC3339),
		pos.SettledAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("storage.SaveSettled: %w", err)
	}
	return nil
}

// ListSettled devuelve el histórico completo en orden cronológico de settlement.
func (a *SQLiteArchive) ListSettled(ctx context.Context) ([]domain.Position, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, market_id, question, side, entry_price, position_size,
		       shares, edge, settlement_outcome, won, pnl, opened_at, settled_at
		FROM settled_trades ORDER BY settled_at ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("storage.ListSettled: %w", err)
	}
	defer rows.Close()

	var out []domain.Position
	for rows.Next() {
		var p domain.Position
		var outcome, openedAt, settledAt string
		var won int
		var pnl float64

		if err := rows.Scan(
			&p.ID, &p.MarketID, &p.Question, &p.Side, &p.EntryPrice, &p.Size,
			&p.Shares, &p.Edge, &outcome, &won, &pnl, &openedAt, &settledAt,
		); err != nil {
			return nil, fmt.Errorf("storage.ListSettled: scan: %w", err)
		}

		p.Status = domain.StatusSettled
		p.SettlementOutcome = &outcome
		w := won == 1
		p.Won = &w
		pnlCopy := pnl
		p.PnL = &pnlCopy
		p.OpenedAt, _ = time.Parse(time.RFC3339, openedAt)
		if t, err := time.Parse(time.RFC3339, settledAt); err == nil {
			p.SettledAt = &t
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (a *SQLiteArchive) Close() error {
	return a.db.Close()
}
