package membership

import "errors"

var (
	ErrNotFound         = errors.New("record not found")
	ErrPermissionDenied = errors.New("permission denied")
	ErrAlreadyMember    = errors.New("user already a member or invited")
	ErrDuplicateSubject = errors.New("subject already exists")
	ErrValidation       = errors.New("invalid input")
)
