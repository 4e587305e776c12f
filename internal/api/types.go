package api

import "time"

// LoginRequest is the credential payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse carries the issued bearer token and the signed-in identity.
type LoginResponse struct {
	Token  string `json:"token"`
	UserID int64  `json:"userId"`
	Role   string `json:"role"`
}

// User is the wire representation of an account.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Task is the wire representation of a work item.
type Task struct {
	ID                int64     `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description,omitempty"`
	DueDate           time.Time `json:"dueDate"`
	Status            string    `json:"status"`
	FilePath          string    `json:"filePath,omitempty"`
	FileName          string    `json:"fileName,omitempty"`
	AssignedVolunteer int64     `json:"assignedVolunteer,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// ChangeStatusRequest is the payload for PUT /OrderManagment/changeStatus.
type ChangeStatusRequest struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// TaskUpdateRequest carries content-only edits for PUT /order/{id}. Status is
// deliberately absent: it mutates only through the changeStatus endpoint.
type TaskUpdateRequest struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	DueDate     time.Time `json:"dueDate"`
}

// ErrorResponse is the uniform error body for non-2xx answers.
type ErrorResponse struct {
	Error string `json:"error"`
}
