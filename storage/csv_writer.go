package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"pricewatch/models"
)

var catalogHeader = []string{
	"platform", "title", "current_price", "current_rating", "price_trend",
	"price_change_percent", "highest_price", "lowest_price",
	"first_seen", "last_seen", "times_scraped",
}

// CSVWriter writes catalog snapshots to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(catalogHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// WriteCatalog appends one row per record. Absent values are written as
// empty cells, never as zero.
func (c *CSVWriter) WriteCatalog(records []models.ProductRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, r := range records {
		row := []string{
			r.Platform,
			r.Title,
			optFloat(r.CurrentPrice),
			optFloat(r.CurrentRating),
			r.PriceTrend,
			optFloat(r.PriceChangePercent),
			optFloat(r.HighestPrice),
			optFloat(r.LowestPrice),
			r.FirstSeen,
			r.LastSeen,
			strconv.Itoa(r.TimesScraped),
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

func optFloat(p *float64) string {
	if p == nil {
		return ""
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}
