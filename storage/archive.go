package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"pricewatch/models"
)

// SQLArchive persists catalog generations to PostgreSQL or SQLite. Every
// archive instance gets its own run id since generation numbers restart
// with each process.
type SQLArchive struct {
	db     *sql.DB
	driver string
	runID  string
}

// NewSQLArchive opens the database, runs schema migrations, and returns a
// ready-to-use archive. driver is "postgres" or "sqlite".
func NewSQLArchive(driver, dsn string) (*SQLArchive, error) {
	if driver != "postgres" && driver != "sqlite" {
		return nil, fmt.Errorf("archive: unsupported driver %q", driver)
	}
	if driver == "sqlite" && dsn != ":memory:" && !strings.HasPrefix(dsn, "file:") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, fmt.Errorf("archive: create dir: %w", err)
		}
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("archive: open: %w", err)
	}
	if driver == "sqlite" {
		// One connection keeps :memory: databases shared and avoids SQLITE_BUSY.
		db.SetMaxOpenConns(1)
	}

	attempts := 1
	if driver == "postgres" {
		attempts = 10
	}
	for i := 0; i < attempts; i++ {
		if err = db.Ping(); err == nil || i == attempts-1 {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: ping failed after retries: %w", err)
	}

	a := &SQLArchive{db: db, driver: driver, runID: uuid.NewString()}
	if err := a.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("archive: migrate: %w", err)
	}
	return a, nil
}

// RunID identifies this archive instance's generations.
func (a *SQLArchive) RunID() string {
	return a.runID
}

func (a *SQLArchive) migrate() error {
	id := "id SERIAL PRIMARY KEY"
	if a.driver == "sqlite" {
		id = "id INTEGER PRIMARY KEY AUTOINCREMENT"
	}

	_, err := a.db.Exec(`
		CREATE TABLE IF NOT EXISTS catalog_snapshots (
			` + id + `,
			run_id               VARCHAR(36)      NOT NULL,
			generation           BIGINT           NOT NULL,
			position             INTEGER          NOT NULL,
			platform             VARCHAR(50)      NOT NULL DEFAULT '',
			title                TEXT             NOT NULL DEFAULT '',
			current_price        DOUBLE PRECISION,
			current_rating       DOUBLE PRECISION,
			price_trend          VARCHAR(20)      NOT NULL DEFAULT '',
			price_change_percent DOUBLE PRECISION,
			highest_price        DOUBLE PRECISION,
			lowest_price         DOUBLE PRECISION,
			first_seen           TEXT             NOT NULL DEFAULT '',
			last_seen            TEXT             NOT NULL DEFAULT '',
			times_scraped        INTEGER          NOT NULL DEFAULT 0,
			archived_at          TIMESTAMP        NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return err
	}

	_, err = a.db.Exec(`CREATE INDEX IF NOT EXISTS idx_snapshots_run_gen ON catalog_snapshots(run_id, generation)`)
	return err
}

// Archive stores one catalog generation in batches inside a transaction.
func (a *SQLArchive) Archive(ctx context.Context, generation uint64, records []models.ProductRecord) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("archive: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	const batchSize = 50
	for i := 0; i < len(records); i += batchSize {
		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		if err := a.insertBatch(ctx, tx, generation, i, records[i:end]); err != nil {
			return fmt.Errorf("archive: insert batch: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("archive: commit: %w", err)
	}
	return nil
}

const snapshotColumns = 14

func (a *SQLArchive) insertBatch(ctx context.Context, tx *sql.Tx, generation uint64, offset int, batch []models.ProductRecord) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*snapshotColumns)

	for idx, r := range batch {
		base := idx * snapshotColumns
		ph := make([]string, snapshotColumns)
		for j := range ph {
			ph[j] = a.placeholder(base + j + 1)
		}
		valueStrings = append(valueStrings, "("+strings.Join(ph, ",")+")")
		valueArgs = append(valueArgs,
			a.runID, int64(generation), offset+idx, r.Platform, r.Title,
			nullArg(r.CurrentPrice), nullArg(r.CurrentRating), r.PriceTrend, nullArg(r.PriceChangePercent),
			nullArg(r.HighestPrice), nullArg(r.LowestPrice), r.FirstSeen, r.LastSeen, r.TimesScraped)
	}

	query := fmt.Sprintf(`
		INSERT INTO catalog_snapshots (run_id, generation, position, platform, title,
			current_price, current_rating, price_trend, price_change_percent,
			highest_price, lowest_price, first_seen, last_seen, times_scraped)
		VALUES %s
	`, strings.Join(valueStrings, ","))

	_, err := tx.ExecContext(ctx, query, valueArgs...)
	return err
}

// FetchGeneration retrieves one archived generation of this run in its
// original order.
func (a *SQLArchive) FetchGeneration(ctx context.Context, generation uint64) ([]models.ProductRecord, error) {
	rows, err := a.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT platform, title, current_price, current_rating, price_trend,
			price_change_percent, highest_price, lowest_price,
			first_seen, last_seen, times_scraped
		FROM catalog_snapshots
		WHERE run_id = %s AND generation = %s
		ORDER BY position
	`, a.placeholder(1), a.placeholder(2)), a.runID, int64(generation))
	if err != nil {
		return nil, fmt.Errorf("archive: fetch generation: %w", err)
	}
	defer rows.Close()

	var records []models.ProductRecord
	for rows.Next() {
		var r models.ProductRecord
		var price, rating, change, highest, lowest sql.NullFloat64
		if err := rows.Scan(
			&r.Platform, &r.Title, &price, &rating, &r.PriceTrend,
			&change, &highest, &lowest, &r.FirstSeen, &r.LastSeen, &r.TimesScraped,
		); err != nil {
			return nil, fmt.Errorf("archive: scan row: %w", err)
		}
		r.CurrentPrice = nullable(price)
		r.CurrentRating = nullable(rating)
		r.PriceChangePercent = nullable(change)
		r.HighestPrice = nullable(highest)
		r.LowestPrice = nullable(lowest)
		records = append(records, r)
	}
	return records, rows.Err()
}

// GenerationOrCurrent reads generation back from the archive. It returns
// current, with the reason, when there is no archive or the archived copy
// is missing or incomplete.
func GenerationOrCurrent(ctx context.Context, archive CatalogArchive, generation uint64, current []models.ProductRecord) ([]models.ProductRecord, error) {
	if archive == nil {
		return current, errors.New("archive: not configured")
	}
	archived, err := archive.FetchGeneration(ctx, generation)
	if err != nil {
		return current, err
	}
	if len(archived) != len(current) {
		return current, fmt.Errorf("archive: generation %d has %d of %d records", generation, len(archived), len(current))
	}
	return archived, nil
}

func (a *SQLArchive) Close() error {
	return a.db.Close()
}

// placeholder returns the n-th bind parameter in the driver's dialect.
func (a *SQLArchive) placeholder(n int) string {
	if a.driver == "postgres" {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func nullArg(p *float64) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func nullable(n sql.NullFloat64) *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Float64
	return &v
}
