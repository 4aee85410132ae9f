// Package handlers defines the stable error codes returned by the chat API.
//
// Codes are lowercase snake_case and travel in the "code" field of every
// error envelope; clients branch on them rather than on messages:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "user_not_found",
//	  "message": "user not found"
//	}
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Validation.
	ErrCodeInvalidID   = "invalid_id"
	ErrCodeEmptyText   = "empty_text"
	ErrCodeTextTooLong = "text_too_long"
	ErrCodeEmptyName   = "empty_name"
	ErrCodeEmptyQuery  = "empty_query"

	// Lookups.
	ErrCodeUserNotFound = "user_not_found"

	// Storage.
	ErrCodeStorageUnavailable = "storage_unavailable"
	ErrCodeCreateFailed       = "create_failed"
	ErrCodeListFailed         = "list_failed"
	ErrCodeUpdateFailed       = "update_failed"
	ErrCodeDeleteFailed       = "delete_failed"
)
