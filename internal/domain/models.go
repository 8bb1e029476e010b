package domain

// ConversionResult reports one file of a bulk upload.
type ConversionResult struct {
	Filename    string `json:"filename"`
	SVGFilename string `json:"svgFilename"`
	Success     bool   `json:"success"`
	SVG         string `json:"svg,omitempty"`
	Error       string `json:"error,omitempty"`
}

// BulkSummary aggregates a bulk upload. ProcessingTime is wall-clock
// seconds.
type BulkSummary struct {
	Total          int     `json:"total"`
	Successful     int     `json:"successful"`
	Failed         int     `json:"failed"`
	ProcessingTime float64 `json:"processing_time"`
}

type BulkReport struct {
	Summary BulkSummary        `json:"summary"`
	Results []ConversionResult `json:"results"`
}

// ArchiveEntry describes an SVG stored in the archive bucket.
type ArchiveEntry struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}
