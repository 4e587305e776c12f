package ocr

import (
	"context"

	"biblioaccess/internal/services"
)

// Saver persists a reviewed document between sessions. The session store
// implements it; a nil Saver keeps edits in memory only.
type Saver interface {
	SaveDocument(ctx context.Context, doc *Document) error
}

// Review is the page-by-page correction buffer over a processed document.
// Navigation is 1-based. At most one page is being edited at a time, and
// navigating away discards the in-flight edit.
type Review struct {
	doc     *Document
	page    int
	editing bool
	draft   string
	saver   Saver
}

// NewReview loads a document into a review buffer positioned on page 1 with
// editing off.
func NewReview(doc *Document, saver Saver) (*Review, error) {
	if doc == nil || len(doc.Pages) == 0 {
		return nil, services.Wrap(services.ErrValidation, "ocr", "review", "document has no pages", nil)
	}
	return &Review{doc: doc, page: 1, saver: saver}, nil
}

// Document returns the underlying document.
func (r *Review) Document() *Document { return r.doc }

// PageNumber returns the 1-based number of the current page.
func (r *Review) PageNumber() int { return r.page }

// TotalPages returns the page count of the document under review.
func (r *Review) TotalPages() int { return len(r.doc.Pages) }

// CurrentPage returns the page the buffer is positioned on.
func (r *Review) CurrentPage() *Page {
	return r.doc.PageByNumber(r.page)
}

// IsEditing reports whether an edit is in flight on the current page.
func (r *Review) IsEditing() bool { return r.editing }

// GoToPage moves the buffer to the given page. Requests outside [1, total]
// are ignored. Any in-flight edit is discarded on navigation, including a
// same-page request.
func (r *Review) GoToPage(number int) bool {
	if number < 1 || number > len(r.doc.Pages) {
		return false
	}
	r.page = number
	r.editing = false
	r.draft = ""
	return true
}

// NextPage advances to the following page when one exists.
func (r *Review) NextPage() bool { return r.GoToPage(r.page + 1) }

// PrevPage moves to the preceding page when one exists.
func (r *Review) PrevPage() bool { return r.GoToPage(r.page - 1) }

// StartEditing begins an edit on the current page, seeding the draft with the
// page's current text. Calling it while already editing keeps the draft.
func (r *Review) StartEditing() {
	if r.editing {
		return
	}
	if page := r.CurrentPage(); page != nil {
		r.draft = page.Text
	}
	r.editing = true
}

// Draft returns the in-flight edit text.
func (r *Review) Draft() string { return r.draft }

// SetDraft replaces the in-flight edit text. Ignored when not editing.
func (r *Review) SetDraft(text string) {
	if !r.editing {
		return
	}
	r.draft = text
}

// CancelEditing discards the in-flight edit without touching the document.
func (r *Review) CancelEditing() {
	r.editing = false
	r.draft = ""
}

// SaveChanges commits the draft to the current page, recomputes the page
// counts and the document aggregates, and persists the document. Saving while
// not editing is an accepted no-op.
func (r *Review) SaveChanges(ctx context.Context) error {
	if !r.editing {
		return nil
	}
	page := r.CurrentPage()
	if page == nil {
		return services.Wrap(services.ErrNotFound, "ocr", "save changes", "current page missing", nil)
	}
	page.Text = r.draft
	page.CountPage()
	r.doc.RecomputeStatistics()
	r.editing = false
	r.draft = ""
	if r.saver == nil {
		return nil
	}
	return r.saver.SaveDocument(ctx, r.doc)
}
