package shared

import "errors"

// Backend request errors. They map to 4xx answers in the HTTP layer.
var (
	ErrorValidation              = errors.New("validation error")
	ErrorAlreadyExists           = errors.New("already exists")
	ErrorInvalidAuthheaderFormat = errors.New("invalid auth header format")
	ErrorInvalidLoginPassword    = errors.New("invalid login/password")
	ErrorUnknownRecordType       = errors.New("unknown record type")
)
