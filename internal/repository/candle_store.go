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

// ClickHouseCandleStore implements CandleStore for ClickHouse.
type ClickHouseCandleStore struct {
	db       *sql.DB
	database string
	table    string
}

// NewClickHouseCandleStore creates the candle store.
func NewClickHouseCandleStore(db *sql.DB, database string) repository.CandleStore {
	return &ClickHouseCandleStore{db: db, database: database, table: database + ".candles_m5"}
}

func (s *ClickHouseCandleStore) Init(ctx context.Context) error {
	for _, stmt := range SchemaStatements(s.database) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

func (s *ClickHouseCandleStore) Store(ctx context.Context, c *models.Candle) error {
	if err := c.Validate(); err != nil {
		return err
	}
	q := fmt.Sprintf("INSERT INTO %s (ts, open, high, low, close, volume) VALUES (?, ?, ?, ?, ?, ?)", s.table)
	_, err := s.db.ExecContext(ctx, q, c.Time.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume)
	return err
}

func (s *ClickHouseCandleStore) StoreBatch(ctx context.Context, candles []*models.Candle) error {
	if len(candles) == 0 {
		return nil
	}
	// Multi-row VALUES insert to cut round-trips; malformed candles are
	// skipped so one bad record never fails the batch.
	const chunkSize = 2000
	for start := 0; start < len(candles); start += chunkSize {
		end := start + chunkSize
		if end > len(candles) {
			end = len(candles)
		}
		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*6)
		for _, c := range candles[start:end] {
			if c == nil || c.Validate() != nil {
				continue
			}
			values = append(values, "(?, ?, ?, ?, ?, ?)")
			args = append(args, c.Time.UTC(), c.Open, c.High, c.Low, c.Close, c.Volume)
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (ts, open, high, low, close, volume) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return err
		}
	}
	return nil
}

func (s *ClickHouseCandleStore) Query(ctx context.Context, from, to time.Time, limit int) ([]models.Candle, error) {
	q := fmt.Sprintf("SELECT ts, open, high, low, close, volume FROM %s WHERE ts >= ? AND ts <= ? ORDER BY ts ASC LIMIT ?", s.table)
	rows, err := s.db.QueryContext(ctx, q, from.UTC(), to.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Candle
	for rows.Next() {
		var c models.Candle
		if err := rows.Scan(&c.Time, &c.Open, &c.High, &c.Low, &c.Close, &c.Volume); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *ClickHouseCandleStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseCandleStore) Close() error {
	return nil // pool is managed by pkg/clickhouse
}
