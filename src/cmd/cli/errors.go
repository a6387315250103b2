package main

import (
	"errors"
	"fmt"

	"versioning-backend/src/builds"
	"versioning-backend/src/config"
	"versioning-backend/src/github"
	"versioning-backend/src/store"
)

// UserError wraps errors with user-friendly messages
type UserError struct {
	Message string
	Hint    string
	Err     error
}

func (e *UserError) Error() string {
	msg := e.Message
	if e.Hint != "" {
		msg += "\n\nHint: " + e.Hint
	}
	if e.Err != nil {
		msg += fmt.Sprintf("\n\nDetails: %v", e.Err)
	}
	return msg
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// wrapError converts backend errors to user-friendly messages
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	var configErr *config.ConfigError
	var authErr *github.AuthError

	switch {
	case errors.As(err, &configErr):
		return &UserError{
			Message: "Invalid configuration",
			Hint:    "Check the --config file and the GITHUB_*, DATABASE_URL and REDPANDA_BROKERS environment variables.",
			Err:     err,
		}
	case errors.As(err, &authErr):
		hint := "Check GITHUB_APP_ID and that the private key belongs to the App."
		if github.IsUnauthorized(err) {
			hint = "GitHub rejected the App JWT. The private key may be revoked or the server clock skewed."
		}
		return &UserError{Message: "GitHub App authentication failed", Hint: hint, Err: err}
	case errors.Is(err, store.ErrNotFound):
		return &UserError{
			Message: "Build not found",
			Hint:    "Build IDs are printed by 'builds start'. The in-memory store does not survive between commands; set DATABASE_URL.",
			Err:     err,
		}
	case errors.Is(err, store.ErrTerminalState):
		return &UserError{
			Message: "Build is already published",
			Hint:    "GUARD_PUBLISHED is enabled; published builds accept no further reports.",
			Err:     err,
		}
	case errors.Is(err, builds.ErrInvalidInput):
		return &UserError{Message: "Invalid build report", Err: err}
	}

	return err
}
