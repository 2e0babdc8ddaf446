package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/BruksfildServices01/kingdom-dashboard/internal/models"
	"github.com/BruksfildServices01/kingdom-dashboard/internal/schema"
)

const productsFile = "productos"

// FileBackend reads one CSV or XLSX file per entity from a directory.
type FileBackend struct {
	dir     string
	mapping *schema.Mapping
}

func NewFileBackend(dir string, mapping *schema.Mapping) *FileBackend {
	return &FileBackend{dir: dir, mapping: mapping}
}

func (b *FileBackend) Name() string       { return "file" }
func (b *FileBackend) Descriptor() string { return "file:" + b.dir }

func (b *FileBackend) Fetch(ctx context.Context, entity models.Entity) (RawTable, error) {
	if err := ctx.Err(); err != nil {
		return RawTable{}, err
	}
	path, err := b.locate(b.mapping.File(entity))
	if err != nil {
		return RawTable{}, fmt.Errorf("%s: %w", entity, err)
	}

	header, rows, err := readTable(path)
	if err != nil {
		return RawTable{}, fmt.Errorf("%s: %w", entity, err)
	}
	return RawTable{Entity: entity, Source: path, Header: header, Rows: rows}, nil
}

// FetchProducts reads productos.csv/.xlsx when present; a missing file is
// an empty catalog.
func (b *FileBackend) FetchProducts(ctx context.Context) ([]map[string]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := b.locate(productsFile)
	if errors.Is(err, ErrNotFound) {
		return []map[string]string{}, nil
	}
	if err != nil {
		return nil, err
	}
	header, rows, err := readTable(path)
	if err != nil {
		return nil, fmt.Errorf("products: %w", err)
	}
	return RawTable{Header: header, Rows: rows}.Records(), nil
}

// locate resolves a base name to name.csv, then name.xlsx. Names that
// already carry an extension are used as is.
func (b *FileBackend) locate(name string) (string, error) {
	candidates := []string{name + ".csv", name + ".xlsx"}
	if ext := filepath.Ext(name); ext != "" {
		candidates = []string{name}
	}
	for _, c := range candidates {
		path := filepath.Join(b.dir, c)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s in %s", ErrNotFound, name, b.dir)
}

func readTable(path string) ([]string, [][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return readXLSX(path)
	default:
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, err
		}
		return readCSV(data)
	}
}

func readCSV(data []byte) ([]string, [][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(data)
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("empty file")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read csv header: %w", err)
	}

	var rows [][]string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read csv: %w", err)
		}
		rows = append(rows, rec)
	}
	return header, rows, nil
}

// Spanish locale exports use ';'.
func detectDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	if bytes.Count(line, []byte(";")) > bytes.Count(line, []byte(",")) {
		return ';'
	}
	return ','
}

func readXLSX(path string) ([]string, [][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("empty sheet %q", sheet)
	}
	return rows[0], rows[1:], nil
}
