// Package services defines the business logic for users and messages.
// This file centralizes common service-level error values so that they can be
// consistently returned by service methods and checked by callers.
//
// These errors are intended for internal use by the service layer and translation
// into user-facing messages or HTTP status codes should be performed at the
// handler/controller layer. Storage failures are not redeclared here; they
// arrive wrapped with store.ErrWrite or store.ErrRead.
package services

import "errors"

var (
	// ErrEmptyText is returned when a message is empty after trimming.
	ErrEmptyText = errors.New("message text is empty")

	// ErrTooLong is returned when a message exceeds the configured rune limit.
	ErrTooLong = errors.New("message text too long")

	// ErrEmptyName is returned when a user is created without a name.
	ErrEmptyName = errors.New("user name is empty")

	// ErrUserNotFound indicates that the sending user does not exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmptyQuery is returned when a search query is blank.
	ErrEmptyQuery = errors.New("search query is empty")

	// ErrInvalidStatus is returned when a status cannot be stored
	// (unknown, or the client-only "sending").
	ErrInvalidStatus = errors.New("invalid message status")
)
