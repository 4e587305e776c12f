// Package textutil provides text processing utilities shared across the
// repository.
//
// The primary use cases are:
//   - Folding accented characters and normalizing enum-like labels so user
//     input such as "en revision" matches the canonical "EnRevisión"
//   - Counting whitespace-delimited words in extracted document text
//   - Ordering Spanish-language names with locale-aware collation
package textutil
