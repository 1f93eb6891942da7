package source

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Options controls how delimited files are parsed
type Options struct {
	// Delimiter is the CSV field separator, "," when empty
	Delimiter string
}

// Read parses a whole source file and resolves its header against schema
func Read(r io.Reader, format Format, schema Schema, opts Options) (*Table, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(r, schema)
	case FormatCSV, "":
		return readCSV(r, schema, opts)
	default:
		return nil, fmt.Errorf("unsupported source format: %s", format)
	}
}

func readCSV(r io.Reader, schema Schema, opts Options) (*Table, error) {
	cr := csv.NewReader(stripUTF8BOM(bufio.NewReader(r)))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	if opts.Delimiter != "" {
		cr.Comma = []rune(opts.Delimiter)[0]
	}

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s file is empty: missing header", schema.Kind)
		}
		return nil, fmt.Errorf("failed to read %s header: %w", schema.Kind, err)
	}

	index, err := resolveHeader(header, schema)
	if err != nil {
		return nil, err
	}

	table := &Table{Kind: schema.Kind}
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read %s file: %w", schema.Kind, err)
		}
		line, _ := cr.FieldPos(0)
		if blankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, NewRow(line, project(record, index)))
	}
	return table, nil
}

func readXLSX(r io.Reader, schema Schema) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s workbook: %w", schema.Kind, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s workbook has no sheets", schema.Kind)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s sheet %q: %w", schema.Kind, sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%s file is empty: missing header", schema.Kind)
	}

	index, err := resolveHeader(rows[0], schema)
	if err != nil {
		return nil, err
	}

	table := &Table{Kind: schema.Kind}
	for i, record := range rows[1:] {
		if blankRecord(record) {
			continue
		}
		table.Rows = append(table.Rows, NewRow(i+2, project(record, index)))
	}
	return table, nil
}

func stripUTF8BOM(r *bufio.Reader) *bufio.Reader {
	b, err := r.Peek(3)
	if err == nil && len(b) == 3 && b[0] == 0xEF && b[1] == 0xBB && b[2] == 0xBF {
		_, _ = r.Discard(3)
	}
	return r
}

var fold = cases.Fold()

// normalizeHeader makes header matching tolerant of a BOM prefix, stray
// whitespace, letter case and composed/decomposed accents.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.TrimSpace(h)
	return fold.String(norm.NFC.String(h))
}

// resolveHeader maps each declared column to its position in the header.
// The first header matching any alias wins.
func resolveHeader(header []string, schema Schema) (map[string]int, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if _, seen := positions[key]; !seen {
			positions[key] = i
		}
	}

	index := make(map[string]int, len(schema.Columns))
	for _, col := range schema.Columns {
		for _, alias := range col.Aliases {
			if pos, ok := positions[normalizeHeader(alias)]; ok {
				index[col.Name] = pos
				break
			}
		}
		if _, ok := index[col.Name]; !ok && col.Required {
			return nil, missingColumnError(schema.Kind, col)
		}
	}
	return index, nil
}

func project(record []string, index map[string]int) map[string]string {
	values := make(map[string]string, len(index))
	for name, pos := range index {
		if pos < len(record) {
			values[name] = record[pos]
		}
	}
	return values
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
