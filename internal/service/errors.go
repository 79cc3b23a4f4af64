package service

import "errors"

// Failure reasons surfaced to the user. All of them are human-readable
// text; nothing here is fatal to the process.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrWrongPassword      = errors.New("current password is incorrect")
	ErrPasswordMismatch   = errors.New("new password and confirmation do not match")
	ErrPasswordTooShort   = errors.New("password must be at least 4 characters")
	ErrMissingFields      = errors.New("product number and RFID are required")
	ErrEmptyQuery         = errors.New("search query is required")
	ErrNotFound           = errors.New("product not found")
	ErrDuplicate          = errors.New("an item with this product number and RFID is already registered")
	ErrImportDone         = errors.New("a spreadsheet was already imported in this session")
)
