package record

import (
	"errors"
	"fmt"
)

var (
	// ErrCorruptRecord matches every *CorruptRecordError.
	ErrCorruptRecord = errors.New("corrupt build record")
	// ErrUnsupportedSchema matches every *UnsupportedSchemaError.
	ErrUnsupportedSchema = errors.New("unsupported build record schema")
)

// CorruptRecordError reports a byte region that is not a valid record.
type CorruptRecordError struct {
	Reason string
}

func (e *CorruptRecordError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCorruptRecord.Error(), e.Reason)
}

// Is reports whether target is ErrCorruptRecord.
func (e *CorruptRecordError) Is(target error) bool {
	return target == ErrCorruptRecord
}

// UnsupportedSchemaError reports a schema version this package cannot read
// or write.
type UnsupportedSchemaError struct {
	Version uint8
}

func (e *UnsupportedSchemaError) Error() string {
	return fmt.Sprintf("%s: version %d (supported: %d)", ErrUnsupportedSchema.Error(), e.Version, SchemaV1)
}

// Is reports whether target is ErrUnsupportedSchema.
func (e *UnsupportedSchemaError) Is(target error) bool {
	return target == ErrUnsupportedSchema
}

// OverflowError reports a value that was truncated to fit its field.
// It is a notice, not a failure: the truncated record is still valid.
type OverflowError struct {
	Field string
	Width int
	Len   int
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s: value of %d bytes truncated to %d", e.Field, e.Len, e.Width)
}
