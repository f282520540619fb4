package rvtools

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

var ErrUnsupportedFormat = errors.New("unsupported file format")

// Source is one input file. Load is called once per ingestion.
type Source struct {
	Name string
	Load func(ctx context.Context) ([]byte, error)
}

func FileSource(path string) Source {
	return Source{
		Name: filepath.Base(path),
		Load: func(ctx context.Context) ([]byte, error) {
			return os.ReadFile(path)
		},
	}
}

func BytesSource(name string, content []byte) Source {
	return Source{
		Name: name,
		Load: func(ctx context.Context) ([]byte, error) {
			return content, nil
		},
	}
}

// ReadSources decodes every source concurrently. The result holds the tables
// of sources[i] at index i. The first failing source aborts the whole read.
func ReadSources(ctx context.Context, sources []Source) ([][]Table, error) {
	results := make([][]Table, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			content, err := src.Load(gctx)
			if err != nil {
				return errors.Wrapf(err, "reading %s", src.Name)
			}
			tables, err := Decode(src.Name, content)
			if err != nil {
				return errors.Wrapf(err, "decoding %s", src.Name)
			}
			results[i] = tables
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Decode turns the content of a file into tables. Workbooks yield one table
// per sheet, csv files a single table.
func Decode(name string, content []byte) ([]Table, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return decodeWorkbook(name, content)
	case ".xls":
		// BIFF workbooks are not readable; only renamed xlsx content gets through.
		if IsExcelFile(content) {
			return decodeWorkbook(name, content)
		}
		return nil, fmt.Errorf("%w: %s (legacy .xls workbooks must be saved as .xlsx)", ErrUnsupportedFormat, name)
	case ".csv", ".txt":
		return decodeCSV(name, content)
	}
	if IsExcelFile(content) {
		return decodeWorkbook(name, content)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

func decodeWorkbook(name string, content []byte) ([]Table, error) {
	excelFile, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("error opening Excel file: %w", err)
	}
	defer excelFile.Close()

	sheets := excelFile.GetSheetList()
	tables := make([]Table, 0, len(sheets))
	for _, sheet := range sheets {
		rows, err := excelFile.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("error reading sheet %s: %w", sheet, err)
		}
		tables = append(tables, buildTable(fmt.Sprintf("%s → %s", name, sheet), rows))
	}

	zap.S().Named("rvtools").Debugf("decoded %d sheets from %s", len(tables), name)
	return tables, nil
}

func decodeCSV(name string, content []byte) ([]Table, error) {
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = detectDelimiter(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error parsing csv: %w", err)
	}
	return []Table{buildTable(name, rows)}, nil
}

func buildTable(label string, rows [][]string) Table {
	header, data := splitSheet(rows)
	headers := trimHeaders(header)

	table := Table{Label: label, Rows: make([]Row, 0, len(data))}
	for _, values := range data {
		if isBlankRow(values) {
			continue
		}
		table.Rows = append(table.Rows, buildRow(headers, values))
	}
	return table
}

// detectDelimiter picks the most frequent candidate separator on the header line.
func detectDelimiter(content []byte) rune {
	line := content
	if idx := bytes.IndexByte(content, '\n'); idx >= 0 {
		line = content[:idx]
	}

	best, bestCount := ',', 0
	for _, candidate := range []rune{',', ';', '\t', '|'} {
		if count := bytes.Count(line, []byte(string(candidate))); count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}
