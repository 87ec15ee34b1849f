package repository

// SchemaStatements returns the idempotent DDL for all GoldDesk tables.
// ReplacingMergeTree keyed by the natural id gives the daily snapshots and
// the trade journal their upsert semantics; candles are append-only.
func SchemaStatements(database string) []string {
	return []string{
		`CREATE DATABASE IF NOT EXISTS ` + database,
		`CREATE TABLE IF NOT EXISTS ` + database + `.candles_m5 (
			ts       DateTime64(3, 'UTC'),
			open     Float64,
			high     Float64,
			low      Float64,
			close    Float64,
			volume   Float64,
			source   String DEFAULT 'oanda'
		) ENGINE = ReplacingMergeTree
		ORDER BY ts`,
		`CREATE TABLE IF NOT EXISTS ` + database + `.asia_open_daily (
			trade_date      Date,
			open_time_local String,
			open_price      Float64,
			h1_high         Nullable(Float64),
			h1_low          Nullable(Float64),
			h1_close        Nullable(Float64),
			h3_high         Nullable(Float64),
			h3_low          Nullable(Float64),
			h3_close        Nullable(Float64),
			atr14           Nullable(Float64),
			source          String,
			notes           String,
			ver             DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(ver)
		ORDER BY trade_date`,
		`CREATE TABLE IF NOT EXISTS ` + database + `.trade_samples (
			trade_id         String,
			ts_utc           DateTime('UTC'),
			local_time       DateTime,
			symbol           String,
			direction        String,
			timeframe        String,
			entry            Float64,
			sl               Float64,
			tp               Float64,
			psych_level      Nullable(Float64),
			psych_level_kind String,
			psych_step       Nullable(Float64),
			touched_level    UInt8,
			rejection        UInt8,
			confirmation     UInt8,
			atr14            Nullable(Float64),
			result_r         Nullable(Float64),
			notes            String,
			deleted          UInt8 DEFAULT 0,
			ver              DateTime DEFAULT now()
		) ENGINE = ReplacingMergeTree(ver)
		ORDER BY trade_id`,
	}
}
