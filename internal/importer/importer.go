package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"shekinah-backend/internal/domain"
)

type ProductWriter interface {
	Insert(ctx context.Context, product domain.Product) (string, error)
}

// CSVImporter reads catalog CSV files and inserts products in bulk. Expected
// headers: id, category, name, price, stock, description, badge. Description
// entries are separated by '|'.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

// Run parses CSV rows and inserts one product per row. It stops at the first
// invalid row and reports how many products were imported before it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		product, err := parseRow(record, index)
		if err != nil {
			return imported, err
		}
		if product == nil {
			continue
		}

		if _, err := i.productRepo.Insert(ctx, *product); err != nil {
			return imported, fmt.Errorf("insert %s: %w", product.ID, err)
		}
		imported++
	}

	return imported, nil
}

func parseRow(record []string, index map[string]int) (*domain.Product, error) {
	id := field(record, index, "id")
	name := field(record, index, "name")
	if id == "" && name == "" {
		return nil, nil // blank row
	}
	if id == "" || name == "" {
		return nil, fmt.Errorf("invalid row: id and name are required (id=%q name=%q)", id, name)
	}

	category := domain.Category(field(record, index, "category"))
	if !category.Valid() {
		return nil, fmt.Errorf("invalid category %q for id %s", category, id)
	}

	price, err := decimal.NewFromString(field(record, index, "price"))
	if err != nil || price.IsNegative() {
		return nil, fmt.Errorf("invalid price for id %s", id)
	}

	stock := 0
	if raw := field(record, index, "stock"); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("invalid stock for id %s", id)
		}
	}

	var description []string
	for _, part := range strings.Split(field(record, index, "description"), "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			description = append(description, trimmed)
		}
	}

	return &domain.Product{
		ID:          id,
		Category:    category,
		Name:        name,
		Price:       price,
		Stock:       stock,
		Description: description,
		Badge:       field(record, index, "badge"),
	}, nil
}

func headerIndex(headers []string) map[string]int {
	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return index
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
