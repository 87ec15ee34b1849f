package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/domain/repository"
)

// ClickHouseJournalStore persists trade samples. ReplacingMergeTree keyed
// by trade_id gives upsert semantics; deletes are tombstone rows with the
// deleted flag set, filtered out on read.
type ClickHouseJournalStore struct {
	db       *sql.DB
	database string
	table    string
}

func NewClickHouseJournalStore(db *sql.DB, database string) repository.JournalStore {
	return &ClickHouseJournalStore{db: db, database: database, table: database + ".trade_samples"}
}

func (s *ClickHouseJournalStore) Init(ctx context.Context) error {
	for _, stmt := range SchemaStatements(s.database) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseJournalStore) Upsert(ctx context.Context, t *models.TradeSample) error {
	if t.TradeID == "" {
		return fmt.Errorf("upsert trade: empty trade id")
	}
	q := fmt.Sprintf(`INSERT INTO %s
		(trade_id, ts_utc, local_time, symbol, direction, timeframe, entry, sl, tp,
		 psych_level, psych_level_kind, psych_step, touched_level, rejection, confirmation,
		 atr14, result_r, notes, deleted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 0)`, s.table)
	local := t.LocalTime
	if local.IsZero() {
		local = t.TimestampUTC
	}
	_, err := s.db.ExecContext(ctx, q,
		t.TradeID, t.TimestampUTC.UTC(), local, t.Symbol,
		t.Direction.String(), t.Timeframe, t.Entry, t.Stop, t.Target,
		t.LevelValue, t.LevelKind.String(), t.LevelStep,
		boolToUInt8(t.Touched), boolToUInt8(t.Rejection), boolToUInt8(t.Confirmation),
		t.ATR, t.ResultR, t.Notes,
	)
	return err
}

func (s *ClickHouseJournalStore) List(ctx context.Context, limit int) ([]models.TradeSample, error) {
	q := fmt.Sprintf(`SELECT trade_id, ts_utc, local_time, symbol, direction, timeframe,
		entry, sl, tp, psych_level, psych_level_kind, psych_step,
		touched_level, rejection, confirmation, atr14, result_r, notes
		FROM %s FINAL WHERE deleted = 0 ORDER BY ts_utc DESC LIMIT ?`, s.table)
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.TradeSample
	for rows.Next() {
		var t models.TradeSample
		var direction, kind string
		var level, step, atr, result sql.NullFloat64
		var touched, rejection, confirmation uint8
		if err := rows.Scan(&t.TradeID, &t.TimestampUTC, &t.LocalTime, &t.Symbol, &direction, &t.Timeframe,
			&t.Entry, &t.Stop, &t.Target, &level, &kind, &step,
			&touched, &rejection, &confirmation, &atr, &result, &t.Notes); err != nil {
			return nil, err
		}
		t.Direction, _ = models.ParseDirection(direction)
		t.LevelKind = models.ParseLevelKind(kind)
		t.LevelValue = nullablePtr(level)
		t.LevelStep = nullablePtr(step)
		t.ATR = nullablePtr(atr)
		t.ResultR = nullablePtr(result)
		t.Touched = touched != 0
		t.Rejection = rejection != 0
		t.Confirmation = confirmation != 0
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *ClickHouseJournalStore) Delete(ctx context.Context, tradeID string) error {
	// tombstone supersedes every prior version of the row
	q := fmt.Sprintf("INSERT INTO %s (trade_id, ts_utc, deleted, ver) VALUES (?, ?, 1, now() + 1)", s.table)
	_, err := s.db.ExecContext(ctx, q, tradeID, time.Now().UTC())
	return err
}

func (s *ClickHouseJournalStore) Count(ctx context.Context) (int, error) {
	q := fmt.Sprintf("SELECT count() FROM %s FINAL WHERE deleted = 0", s.table)
	var count uint64
	if err := s.db.QueryRowContext(ctx, q).Scan(&count); err != nil {
		return 0, err
	}
	return int(count), nil
}

func boolToUInt8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
