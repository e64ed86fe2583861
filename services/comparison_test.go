package services

import (
	"errors"
	"testing"

	"pricewatch/models"
)

func TestComparePicksCheaperProduct(t *testing.T) {
	c := NewCatalogCache()
	c.Replace(sampleRecords())

	cmp, err := c.Compare(c.Select(0), c.Select(1))
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	p := cmp.Price
	if p == nil {
		t.Fatal("price block missing")
	}
	if p.Cheaper != "Product 2" || p.CheaperSlot != 2 {
		t.Errorf("cheaper: got %s (%d), want Product 2", p.Cheaper, p.CheaperSlot)
	}
	if p.Diff != 200 {
		t.Errorf("diff: got %v, want 200", p.Diff)
	}
	if p.SavingPercent != 20.0 {
		t.Errorf("saving: got %v, want 20.0", p.SavingPercent)
	}
	if p.Summary != "Product 2 is ₹200 cheaper (20.0% saving)" {
		t.Errorf("summary: got %q", p.Summary)
	}
	if len(cmp.Rows) != 7 || cmp.Rows[1].First != "AMAZON" || cmp.Rows[1].Second != "FLIPKART" {
		t.Errorf("rows: got %+v", cmp.Rows)
	}
}

func TestCompareIsSymmetric(t *testing.T) {
	c := NewCatalogCache()
	c.Replace(sampleRecords())

	ab, _ := c.Compare(c.Select(0), c.Select(1))
	ba, _ := c.Compare(c.Select(1), c.Select(0))
	if ab.Price.Diff != ba.Price.Diff || ab.Price.SavingPercent != ba.Price.SavingPercent {
		t.Errorf("swap changed numbers: %+v vs %+v", ab.Price, ba.Price)
	}
	if ba.Price.Cheaper != "Product 1" {
		t.Errorf("swapped cheaper: got %s, want Product 1", ba.Price.Cheaper)
	}
}

func TestCompareEqualPricesReportsSecond(t *testing.T) {
	cmp := CompareRecords(
		models.ProductRecord{CurrentPrice: models.Float(500)},
		models.ProductRecord{CurrentPrice: models.Float(500)},
	)
	if cmp.Price.Cheaper != "Product 2" || cmp.Price.Diff != 0 || cmp.Price.SavingPercent != 0 {
		t.Errorf("tie: got %+v", cmp.Price)
	}
}

func TestCompareZeroPrices(t *testing.T) {
	cmp := CompareRecords(
		models.ProductRecord{CurrentPrice: models.Float(0)},
		models.ProductRecord{CurrentPrice: models.Float(0)},
	)
	if cmp.Price == nil {
		t.Fatal("zero prices should still compare")
	}
	if cmp.Price.SavingPercent != 0 {
		t.Errorf("saving with zero max: got %v, want 0", cmp.Price.SavingPercent)
	}
}

func TestCompareAbsentPriceOmitsBlock(t *testing.T) {
	cmp := CompareRecords(
		models.ProductRecord{CurrentPrice: models.Float(500)},
		models.ProductRecord{},
	)
	if cmp.Price != nil {
		t.Errorf("price block should be absent, got %+v", cmp.Price)
	}
	if cmp.Rows[2].Second != Placeholder {
		t.Errorf("absent price row: got %q", cmp.Rows[2].Second)
	}
}

func TestCompareRejections(t *testing.T) {
	c := NewCatalogCache()
	if _, err := c.Compare(Selection{}, Selection{Index: 1}); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("empty catalog: got %v, want ErrNotLoaded", err)
	}

	c.Replace(sampleRecords())
	if _, err := c.Compare(c.Select(1), c.Select(1)); !errors.Is(err, ErrSameProduct) {
		t.Errorf("same index: got %v, want ErrSameProduct", err)
	}

	stale := c.Select(0)
	c.Replace(sampleRecords())
	if _, err := c.Compare(stale, c.Select(1)); !errors.Is(err, ErrNotLoaded) {
		t.Errorf("stale selection: got %v, want ErrNotLoaded", err)
	}
}
