package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"GoldDesk/internal/domain/models"
	"GoldDesk/internal/domain/repository"
)

// ClickHouseSnapshotStore stores one row per trading day. The backing table
// is a ReplacingMergeTree keyed by trade_date, so re-upserting a day simply
// supersedes the old version.
type ClickHouseSnapshotStore struct {
	db       *sql.DB
	database string
	table    string
}

func NewClickHouseSnapshotStore(db *sql.DB, database string) repository.SnapshotStore {
	return &ClickHouseSnapshotStore{db: db, database: database, table: database + ".asia_open_daily"}
}

func (s *ClickHouseSnapshotStore) Init(ctx context.Context) error {
	for _, stmt := range SchemaStatements(s.database) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

const snapshotColumns = "trade_date, open_time_local, open_price, h1_high, h1_low, h1_close, h3_high, h3_low, h3_close, atr14, source, notes"

func (s *ClickHouseSnapshotStore) Upsert(ctx context.Context, snapshots []models.DailySnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}
	const chunkSize = 1000
	for start := 0; start < len(snapshots); start += chunkSize {
		end := start + chunkSize
		if end > len(snapshots) {
			end = len(snapshots)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*12)
		for _, r := range snapshots[start:end] {
			date, err := time.Parse("2006-01-02", r.TradeDate)
			if err != nil {
				return fmt.Errorf("upsert snapshot: bad trade date %q: %w", r.TradeDate, err)
			}
			values = append(values, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
			args = append(args,
				date, r.OpenTime, r.Open,
				r.H1High, r.H1Low, r.H1Close,
				r.H3High, r.H3Low, r.H3Close,
				r.ATR14, r.Source, r.Notes,
			)
		}
		q := fmt.Sprintf("INSERT INTO %s (%s) VALUES %s", s.table, snapshotColumns, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseSnapshotStore) Fetch(ctx context.Context, fromDate, toDate string) ([]models.DailySnapshot, error) {
	q := fmt.Sprintf("SELECT %s FROM %s FINAL WHERE trade_date >= ? AND trade_date <= ? ORDER BY trade_date ASC", snapshotColumns, s.table)
	rows, err := s.db.QueryContext(ctx, q, fromDate, toDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.DailySnapshot
	for rows.Next() {
		var r models.DailySnapshot
		var date time.Time
		var h1h, h1l, h1c, h3h, h3l, h3c, atr sql.NullFloat64
		if err := rows.Scan(&date, &r.OpenTime, &r.Open, &h1h, &h1l, &h1c, &h3h, &h3l, &h3c, &atr, &r.Source, &r.Notes); err != nil {
			return nil, err
		}
		r.TradeDate = date.Format("2006-01-02")
		r.H1High = nullablePtr(h1h)
		r.H1Low = nullablePtr(h1l)
		r.H1Close = nullablePtr(h1c)
		r.H3High = nullablePtr(h3h)
		r.H3Low = nullablePtr(h3l)
		r.H3Close = nullablePtr(h3c)
		r.ATR14 = nullablePtr(atr)
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *ClickHouseSnapshotStore) Stats(ctx context.Context) (int, string, string, error) {
	q := fmt.Sprintf("SELECT count(), min(trade_date), max(trade_date) FROM %s FINAL", s.table)
	var count uint64
	var minDate, maxDate time.Time
	if err := s.db.QueryRowContext(ctx, q).Scan(&count, &minDate, &maxDate); err != nil {
		return 0, "", "", err
	}
	if count == 0 {
		return 0, "", "", nil
	}
	return int(count), minDate.Format("2006-01-02"), maxDate.Format("2006-01-02"), nil
}

func nullablePtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
