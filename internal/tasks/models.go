package tasks

import (
	"strings"
	"time"

	"biblioaccess/internal/textutil"
)

// Status represents the workflow state of a task.
type Status string

const (
	StatusPendiente  Status = "Pendiente"
	StatusEnProceso  Status = "EnProceso"
	StatusEnRevision Status = "EnRevisión"
	StatusCompletada Status = "Completada"
	StatusDenegada   Status = "Denegada"
)

var allStatuses = []Status{
	StatusPendiente,
	StatusEnProceso,
	StatusEnRevision,
	StatusCompletada,
	StatusDenegada,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var statusByKey = func() map[string]Status {
	index := make(map[string]Status, len(allStatuses))
	for _, status := range allStatuses {
		index[textutil.CanonicalKey(string(status))] = status
	}
	return index
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts user input into a known Status. Matching ignores case,
// whitespace, and diacritics, so "en revision" and "En Proceso" both parse.
func ParseStatus(value string) (Status, bool) {
	key := textutil.CanonicalKey(value)
	if key == "" {
		return "", false
	}
	status, ok := statusByKey[key]
	return status, ok
}

// Valid reports whether the status is one of the known workflow states.
func (s Status) Valid() bool {
	_, ok := statusSet[s]
	return ok
}

// IsTerminal reports whether no further transitions leave the status.
func (s Status) IsTerminal() bool {
	return s == StatusCompletada || s == StatusDenegada
}

// Task represents a library work item persisted in SQLite.
type Task struct {
	ID                int64
	Name              string
	Description       string
	DueDate           time.Time
	Status            Status
	FilePath          string
	AssignedVolunteer int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// NewTask carries the caller-supplied fields for task creation. Status is not
// included: every task starts in Pendiente.
type NewTask struct {
	Name        string
	Description string
	DueDate     time.Time
	FilePath    string
}

// HasFile reports whether a document is attached to the task.
func (t Task) HasFile() bool {
	return t.FilePath != ""
}

// FileName returns the base name of the attached document. Stored paths may
// use either separator depending on the uploading client.
func (t Task) FileName() string {
	if t.FilePath == "" {
		return ""
	}
	idx := strings.LastIndexAny(t.FilePath, `/\`)
	return t.FilePath[idx+1:]
}

// HealthSummary describes aggregated task counts per workflow state.
type HealthSummary struct {
	Total      int
	Pendiente  int
	EnProceso  int
	EnRevision int
	Completada int
	Denegada   int
}
