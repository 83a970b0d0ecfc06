package errcodes

import (
	"fmt"
	"net/http"
)

type Error struct {
	HTTPCode int
	Message  string
	Code     string
}

func (err *Error) Error() string {
	return err.Message
}

func (err *Error) As(target interface{}) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	te.HTTPCode = err.HTTPCode
	te.Message = err.Message
	te.Code = err.Code
	return true
}

func (err *Error) Is(target error) bool {
	te, ok := target.(*Error)
	if !ok {
		return false
	}
	return te.HTTPCode == err.HTTPCode &&
		te.Message == err.Message &&
		te.Code == err.Code
}

// NotFound returns a 404 error with a message indicating the given resource.
func NotFound(resource string) error {
	return &Error{
		http.StatusNotFound,
		resource + " not found.",
		"not_found",
	}
}

func Conflict(msg string) error {
	return &Error{
		http.StatusConflict,
		msg,
		"conflict",
	}
}

func ValidationError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_error",
	}
}

func ValidationTypeError(msg string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		msg,
		"validation_type_error",
	}
}

func UnknownParameter(param string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Unknown Parameter %q", param),
		"unknown_parameter",
	}
}

func MalformedPayload() error {
	return &Error{
		http.StatusBadRequest,
		"Malformed Payload",
		"malformed_payload",
	}
}

func EmptyRequestBody() error {
	return &Error{
		http.StatusBadRequest,
		"Request body can't be empty.",
		"empty_request_body",
	}
}

func UnsupportedMediaType() error {
	return &Error{
		http.StatusUnsupportedMediaType,
		"This content type is not supported.",
		"unsupported_media_type",
	}
}

// SourceOpen indicates a source file that is missing, too small, or does not
// carry a Jet/ACE signature. Fatal for that file only.
func SourceOpen(path, reason string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("Can't open source file %s: %s.", path, reason),
		"source_open_error",
	}
}

// NoContentTable indicates discovery found no plausible body-text table.
// Fatal for that file only.
func NoContentTable(path string) error {
	return &Error{
		http.StatusUnprocessableEntity,
		fmt.Sprintf("No content table found in %s.", path),
		"no_content_table",
	}
}

// DestinationUnavailable indicates the destination database can't be reached
// or authenticated against. Fatal for the whole batch.
func DestinationUnavailable() error {
	return &Error{
		http.StatusServiceUnavailable,
		"Destination database is unavailable.",
		"destination_unavailable",
	}
}

// SchemaMigrationFailed indicates the runtime schema-compatibility pass could
// not complete. Fatal for the whole batch.
func SchemaMigrationFailed() error {
	return &Error{
		http.StatusInternalServerError,
		"Destination schema migration failed.",
		"schema_migration_failed",
	}
}

// RowDuplicate indicates a page insert hit an existing internal_index. The
// row is skipped with a warning and ingest continues.
func RowDuplicate(internalIndex int) error {
	return &Error{
		http.StatusConflict,
		fmt.Sprintf("Page with internal index %d already exists.", internalIndex),
		"row_insert_duplicate",
	}
}
