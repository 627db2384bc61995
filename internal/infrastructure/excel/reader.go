package excel

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sheetboard-api/internal/domain"
	"github.com/xuri/excelize/v2"
)

const (
	emptyHeader = "__EMPTY"

	// Bound on how far the xlsx zip may inflate relative to the upload cap.
	inflateRatio  = 20
	xmlPartCap    = 16 << 20
	minUnzipLimit = xmlPartCap
)

// Reader converts the first worksheet of an xlsx workbook into header-keyed rows.
type Reader struct {
	maxBytes int64
}

// NewReader returns a Reader that refuses workbooks larger than maxBytes.
func NewReader(maxBytes int64) *Reader {
	return &Reader{maxBytes: maxBytes}
}

// ReadFirstSheet parses src and returns the first sheet in workbook order.
// The first non-blank row supplies the keys. Blank data rows are skipped and
// empty cells are left out of their row. Unreadable input wraps domain.ErrParse.
func (r *Reader) ReadFirstSheet(src io.Reader) (*domain.Sheet, error) {
	data, err := io.ReadAll(io.LimitReader(src, r.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read workbook: %w", err)
	}
	if int64(len(data)) > r.maxBytes {
		return nil, fmt.Errorf("workbook exceeds %d bytes: %w", r.maxBytes, domain.ErrParse)
	}

	unzipLimit := r.maxBytes * inflateRatio
	if unzipLimit < minUnzipLimit {
		unzipLimit = minUnzipLimit
	}
	f, err := excelize.OpenReader(bytes.NewReader(data), excelize.Options{
		UnzipSizeLimit:    unzipLimit,
		UnzipXMLSizeLimit: xmlPartCap,
	})
	if err != nil {
		return nil, fmt.Errorf("open workbook: %v: %w", err, domain.ErrParse)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &domain.Sheet{Rows: []domain.Row{}}, nil
	}
	name := sheets[0]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %v: %w", name, err, domain.ErrParse)
	}

	headerIdx := -1
	width := 0
	for i, row := range raw {
		if headerIdx < 0 && !blank(row) {
			headerIdx = i
		}
		if headerIdx >= 0 && len(row) > width {
			width = len(row)
		}
	}
	if headerIdx < 0 {
		return &domain.Sheet{Rows: []domain.Row{}}, nil
	}

	headers := headerNames(raw[headerIdx], width)
	rows := make([]domain.Row, 0, len(raw)-headerIdx-1)
	for i := headerIdx + 1; i < len(raw); i++ {
		if blank(raw[i]) {
			continue
		}
		row := make(domain.Row, len(raw[i]))
		for c, v := range raw[i] {
			if v == "" {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(c+1, i+1)
			if err != nil {
				return nil, fmt.Errorf("cell name: %v: %w", err, domain.ErrParse)
			}
			typ, err := f.GetCellType(name, cell)
			if err != nil {
				return nil, fmt.Errorf("cell %s type: %v: %w", cell, err, domain.ErrParse)
			}
			row[headers[c]] = coerce(typ, v)
		}
		rows = append(rows, row)
	}
	return &domain.Sheet{Headers: headers, Rows: rows}, nil
}

// headerNames names every column up to width. Blank headers become __EMPTY and
// repeats get a numeric suffix (__EMPTY_1, name_1, ...).
func headerNames(row []string, width int) []string {
	out := make([]string, width)
	used := make(map[string]bool, width)
	for c := 0; c < width; c++ {
		base := ""
		if c < len(row) {
			base = row[c]
		}
		if strings.TrimSpace(base) == "" {
			base = emptyHeader
		}
		name := base
		for n := 1; used[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		used[name] = true
		out[c] = name
	}
	return out
}

func coerce(typ excelize.CellType, v string) interface{} {
	switch typ {
	case excelize.CellTypeBool:
		return v == "1" || strings.EqualFold(v, "true")
	case excelize.CellTypeUnset, excelize.CellTypeNumber, excelize.CellTypeDate:
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return v
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
