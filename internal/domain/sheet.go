package domain

// Row maps a column header to its typed cell value (float64, bool or string).
// Empty cells are absent from the map.
type Row map[string]interface{}

// Sheet is the parsed first worksheet of a workbook.
type Sheet struct {
	Headers []string
	Rows    []Row
}

// SheetSummary aggregates one value column labelled by another column.
type SheetSummary struct {
	Columns  []string    `json:"columns"`
	LabelKey string      `json:"labelKey"`
	ValueKey string      `json:"valueKey"`
	Count    int         `json:"count"`
	Sum      float64     `json:"sum"`
	Average  float64     `json:"avg"`
	Max      float64     `json:"max"`
	MaxLabel interface{} `json:"maxLabel"`
	Min      float64     `json:"min"`
	MinLabel interface{} `json:"minLabel"`
}
