package tasks

import "biblioaccess/internal/users"

// legalEdges is the workflow transition table. Any status change not listed
// here, other than a same-status no-op, is rejected.
var legalEdges = map[Status][]Status{
	StatusPendiente:  {StatusEnProceso},
	StatusEnProceso:  {StatusEnRevision},
	StatusEnRevision: {StatusCompletada, StatusDenegada},
}

// NextStatuses returns the statuses reachable from the given state.
func NextStatuses(from Status) []Status {
	targets := legalEdges[from]
	cp := make([]Status, len(targets))
	copy(cp, targets)
	return cp
}

// CanTransition reports whether moving between the two statuses follows the
// workflow edge table. A same-status change is accepted as a no-op.
func CanTransition(from, to Status) bool {
	if !from.Valid() || !to.Valid() {
		return false
	}
	if from == to {
		return true
	}
	for _, target := range legalEdges[from] {
		if target == to {
			return true
		}
	}
	return false
}

// AllowedTransition reports whether the acting role may perform the status
// change. Volunteers start tasks and submit them for review, administrative
// volunteers resolve reviews, and librarian-level roles may perform any legal
// edge. A same-status no-op is permitted for every role.
func AllowedTransition(role users.Role, from, to Status) bool {
	if !CanTransition(from, to) {
		return false
	}
	if from == to {
		return true
	}
	switch role {
	case users.RoleBibliotecario, users.RoleAdmin:
		return true
	case users.RoleVoluntario:
		return (from == StatusPendiente && to == StatusEnProceso) ||
			(from == StatusEnProceso && to == StatusEnRevision)
	case users.RoleVoluntarioAdmin:
		return from == StatusEnRevision && (to == StatusCompletada || to == StatusDenegada)
	default:
		return false
	}
}
