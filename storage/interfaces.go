package storage

import (
	"context"

	"pricewatch/models"
)

// CatalogArchive is the interface any snapshot store must satisfy.
type CatalogArchive interface {
	Archive(ctx context.Context, generation uint64, records []models.ProductRecord) error
	FetchGeneration(ctx context.Context, generation uint64) ([]models.ProductRecord, error)
	Close() error
}

// CatalogExporter writes a catalog generation to a flat file.
type CatalogExporter interface {
	WriteCatalog(records []models.ProductRecord) error
	Close() error
}

var (
	_ CatalogArchive  = (*SQLArchive)(nil)
	_ CatalogExporter = (*CSVWriter)(nil)
)
