package errors

import "fmt"

var (
	ErrUsernameTaken      = fmt.Errorf("username already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid username or password")
	ErrUnauthorized       = fmt.Errorf("authentication required")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrInvalidInput       = fmt.Errorf("invalid input")
)
