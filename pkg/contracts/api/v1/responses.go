package api

import "time"

// Response statuses
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// SuccessResponse wraps every successful JSON payload
type SuccessResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// NewSuccessResponse wraps data in a success envelope
func NewSuccessResponse(data interface{}) SuccessResponse {
	return SuccessResponse{Status: StatusSuccess, Data: data}
}

// Column describes one column of a table
type Column struct {
	Name string `json:"name"`
	Kind string `json:"kind"`
}

// Table is a tabular preview. A nil cell is a missing value.
type Table struct {
	Columns []Column    `json:"columns"`
	Rows    [][]*string `json:"rows"`
}

// ColumnQuality is the per-column part of a QualityReport
type ColumnQuality struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Missing int    `json:"missing"`
}

// QualityReport summarizes the data quality of a dataset
type QualityReport struct {
	Rows             int             `json:"rows"`
	Columns          int             `json:"columns"`
	MissingTotal     int             `json:"missing_total"`
	MissingPerColumn map[string]int  `json:"missing_per_column"`
	ColumnDetails    []ColumnQuality `json:"column_details"`
	DuplicateRows    int             `json:"duplicate_rows"`
}

// ColumnStatistics summarizes a numeric column
type ColumnStatistics struct {
	Column string   `json:"column"`
	Count  int      `json:"count"`
	Mean   float64  `json:"mean"`
	StdDev *float64 `json:"std,omitempty"`
	Min    float64  `json:"min"`
	P25    float64  `json:"p25"`
	Median float64  `json:"median"`
	P75    float64  `json:"p75"`
	Max    float64  `json:"max"`
}

// InspectResponse is the profile of an uploaded file before cleaning
type InspectResponse struct {
	Filename   string             `json:"filename"`
	Format     string             `json:"format"`
	Report     QualityReport      `json:"report"`
	Preview    Table              `json:"preview"`
	Statistics []ColumnStatistics `json:"statistics,omitempty"`
}

// AppliedOptions echoes the normalized options a cleaning run used
type AppliedOptions struct {
	MissingStrategy string  `json:"missing_strategy"`
	CustomFillValue *string `json:"custom_fill_value,omitempty"`
	Deduplicate     bool    `json:"deduplicate"`
}

// DownloadInfo names the file a download request would return
type DownloadInfo struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// CleanResponse is the outcome of one cleaning run
type CleanResponse struct {
	Filename    string             `json:"filename"`
	Options     AppliedOptions     `json:"options"`
	Before      QualityReport      `json:"before"`
	After       QualityReport      `json:"after"`
	Preview     Table              `json:"preview"`
	Statistics  []ColumnStatistics `json:"statistics,omitempty"`
	RowsRemoved int                `json:"rows_removed"`
	CellsFilled int                `json:"cells_filled"`
	Download    DownloadInfo       `json:"download"`
	Duration    time.Duration      `json:"duration_ns"`
}

// ExportResponse carries an exported file. Content is base64 in JSON.
type ExportResponse struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Format      string `json:"format"`
	Size        int    `json:"size"`
	Content     []byte `json:"content"`
}

// StrategyInfo documents one missing-value strategy
type StrategyInfo struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	RequiresValue bool   `json:"requires_value"`
}
