package dirdb

import "errors"

var (
	// ErrRowNotFound is returned when a requested id has no metadata file in its table.
	ErrRowNotFound = errors.New("row not found")
	// ErrSerialization is returned when a metadata mapping or payload cannot be encoded or decoded.
	ErrSerialization = errors.New("serialization failed")
	// ErrNoTableName is returned when an object does not declare the table it belongs to.
	ErrNoTableName = errors.New("object declares no table name")
	// ErrInvalidOptions is returned by Options.Validate.
	ErrInvalidOptions = errors.New("invalid options")
)
