package types

// Error is the stable failure envelope. Every non-success response carries
// it; Success is always false here so clients can branch on one field.
// Detail exists for developer visibility only and must never be rendered in
// the UI.
type Error struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Field         string `json:"field,omitempty"`
	Detail        any    `json:"detail,omitempty"`
	TimeRemaining int    `json:"timeRemaining,omitempty"`
}

// Result is the minimal success body.
type Result struct {
	Success bool `json:"success"`
}

func StringError(msg string) Error {
	return Error{Message: msg}
}

func FieldError(field, msg string) Error {
	return Error{Message: msg, Field: field}
}

func DetailError(msg string, detail any) Error {
	return Error{Message: msg, Detail: detail}
}

func Ok() Result {
	return Result{Success: true}
}
