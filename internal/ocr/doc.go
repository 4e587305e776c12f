// Package ocr models processed documents and the page-by-page review flow.
//
// A Document carries per-page extracted text with character and word counts
// plus aggregate statistics recomputed from the full page set. Review wraps a
// document in an editing buffer: navigate, edit one page at a time, save (which
// recounts and persists) or cancel. Processor implementations produce
// documents either locally with pdfcpu or through a remote HTTP service.
package ocr
