package tasks

import "biblioaccess/internal/users"

// hiddenFromVolunteers lists the states a plain volunteer never sees: work
// that is already claimed, under review, or published.
var hiddenFromVolunteers = map[Status]struct{}{
	StatusEnProceso:  {},
	StatusEnRevision: {},
	StatusCompletada: {},
}

// VisibleStatuses returns the workflow states the given role may observe.
// Unknown roles see nothing.
func VisibleStatuses(role users.Role) []Status {
	switch role {
	case users.RoleBibliotecario, users.RoleAdmin:
		return AllStatuses()
	case users.RoleVoluntario:
		visible := make([]Status, 0, len(allStatuses))
		for _, status := range allStatuses {
			if _, hidden := hiddenFromVolunteers[status]; hidden {
				continue
			}
			visible = append(visible, status)
		}
		return visible
	case users.RoleVoluntarioAdmin:
		return []Status{StatusEnRevision}
	case users.RoleAlumno:
		return []Status{StatusCompletada}
	default:
		return nil
	}
}

// CanSee reports whether the role may observe a task in the given status.
func CanSee(role users.Role, status Status) bool {
	for _, visible := range VisibleStatuses(role) {
		if visible == status {
			return true
		}
	}
	return false
}

// VisibleTasks filters tasks down to those the role may observe. The filter is
// a read-time view, reapplied on every fetch rather than stored.
func VisibleTasks(role users.Role, items []*Task) []*Task {
	if len(items) == 0 {
		return nil
	}
	visible := make([]*Task, 0, len(items))
	for _, task := range items {
		if task == nil {
			continue
		}
		if CanSee(role, task.Status) {
			visible = append(visible, task)
		}
	}
	return visible
}
