package ocr

import (
	"unicode/utf8"

	"biblioaccess/internal/textutil"
)

// Document is the processing result for one uploaded file. The JSON shape is
// shared with the remote processor and the CLI viewer, so field names are part
// of the wire contract.
type Document struct {
	Status   string   `json:"status"`
	Message  string   `json:"message"`
	Metadata Metadata `json:"metadata"`
	Pages    []Page   `json:"pages"`
}

// Metadata describes the processed file and its aggregate statistics.
type Metadata struct {
	FileName       string     `json:"fileName"`
	FileSize       int64      `json:"fileSize"`
	TotalPages     int        `json:"totalPages"`
	ProcessingTime float64    `json:"processingTime"`
	Statistics     Statistics `json:"statistics"`
}

// Statistics aggregates per-page counts. Averages are computed over the total
// page count, not over non-empty pages.
type Statistics struct {
	TotalCharacters          int     `json:"totalCharacters"`
	TotalWords               int     `json:"totalWords"`
	AverageCharactersPerPage float64 `json:"averageCharactersPerPage"`
	AverageWordsPerPage      float64 `json:"averageWordsPerPage"`
	AverageConfidence        float64 `json:"averageConfidence,omitempty"`
}

// Page holds the extracted text for one page and its derived counts.
type Page struct {
	Number     int     `json:"number"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	Characters int     `json:"characters"`
	Words      int     `json:"words"`
}

// CountPage recomputes the character and word counts from the page text.
func (p *Page) CountPage() {
	p.Characters = utf8.RuneCountInString(p.Text)
	p.Words = textutil.CountWords(p.Text)
}

// RecomputeStatistics rebuilds the aggregate statistics from the full set of
// per-page counts. Call after any page text changes.
func (d *Document) RecomputeStatistics() {
	var stats Statistics
	var confidenceSum float64
	for _, page := range d.Pages {
		stats.TotalCharacters += page.Characters
		stats.TotalWords += page.Words
		confidenceSum += page.Confidence
	}
	total := d.Metadata.TotalPages
	if total <= 0 {
		total = len(d.Pages)
		d.Metadata.TotalPages = total
	}
	if total > 0 {
		stats.AverageCharactersPerPage = float64(stats.TotalCharacters) / float64(total)
		stats.AverageWordsPerPage = float64(stats.TotalWords) / float64(total)
	}
	if len(d.Pages) > 0 {
		stats.AverageConfidence = confidenceSum / float64(len(d.Pages))
	}
	d.Metadata.Statistics = stats
}

// PageByNumber returns the page with the given 1-based number, or nil.
func (d *Document) PageByNumber(number int) *Page {
	for i := range d.Pages {
		if d.Pages[i].Number == number {
			return &d.Pages[i]
		}
	}
	return nil
}
