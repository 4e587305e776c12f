package api

import (
	"biblioaccess/internal/tasks"
	"biblioaccess/internal/users"
)

// FromTask converts a stored task to its wire representation.
func FromTask(task *tasks.Task) Task {
	if task == nil {
		return Task{}
	}
	return Task{
		ID:                task.ID,
		Name:              task.Name,
		Description:       task.Description,
		DueDate:           task.DueDate,
		Status:            string(task.Status),
		FilePath:          task.FilePath,
		FileName:          task.FileName(),
		AssignedVolunteer: task.AssignedVolunteer,
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}
}

// FromTasks converts a task list to its wire representation.
func FromTasks(items []*tasks.Task) []Task {
	out := make([]Task, 0, len(items))
	for _, task := range items {
		if task == nil {
			continue
		}
		out = append(out, FromTask(task))
	}
	return out
}

// FromUser converts a stored account to its wire representation.
func FromUser(user *users.User) User {
	if user == nil {
		return User{}
	}
	return User{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
	}
}

// FromUsers converts an account list to its wire representation.
func FromUsers(items []*users.User) []User {
	out := make([]User, 0, len(items))
	for _, user := range items {
		if user == nil {
			continue
		}
		out = append(out, FromUser(user))
	}
	return out
}
