package tasks

import (
	"context"
	"fmt"
	"time"

	"biblioaccess/internal/services"
)

// ChangeStatus is the single entry point for workflow mutations. It validates
// the requested edge against the transition table, records the acting
// volunteer when a task leaves Pendiente, and rejects illegal edges. A
// same-status request is accepted and returns the task unchanged.
func (s *Store) ChangeStatus(ctx context.Context, id int64, target Status, actorID int64) (*Task, error) {
	if !target.Valid() {
		return nil, services.Wrap(services.ErrValidation, "tasks", "change status",
			fmt.Sprintf("unknown status %q", string(target)), nil)
	}

	task, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, services.Wrap(services.ErrNotFound, "tasks", "change status",
			fmt.Sprintf("task %d does not exist", id), nil)
	}

	if task.Status == target {
		return task, nil
	}
	if !CanTransition(task.Status, target) {
		return nil, services.Wrap(services.ErrIllegalTransition, "tasks", "change status",
			fmt.Sprintf("%s -> %s is not a legal edge", task.Status, target), nil)
	}

	assigned := task.AssignedVolunteer
	if task.Status == StatusPendiente && actorID > 0 {
		assigned = actorID
	}

	now := time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE tasks SET status = ?, assigned_volunteer = ?, updated_at = ? WHERE id = ?`,
		target,
		nullableID(assigned),
		now.Format(time.RFC3339Nano),
		id,
	); err != nil {
		return nil, fmt.Errorf("change status: %w", err)
	}

	return s.GetByID(ctx, id)
}
