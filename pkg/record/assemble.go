package record

import (
	"errors"
	"time"
)

// Fields are the logical values carried by a schema 1 record.
type Fields struct {
	CompileTime time.Time
	ShortHash   string
	Dirty       bool
	TagDescribe string
	LastAuthor  string
}

// Assemble encodes fields behind the header and schema byte and closes the
// record with the footer. It is pure: equal inputs give equal records.
//
// Values longer than their field are truncated and reported as a joined error
// of *OverflowError values. The returned record is complete and valid in that
// case; the caller decides whether truncation is acceptable.
func Assemble(schema uint8, fields Fields) (Record, error) {
	if schema != SchemaV1 {
		return Record{}, &UnsupportedSchemaError{Version: schema}
	}

	var rec Record
	copy(rec[headerOffset:schemaOffset], header[:])
	rec[schemaOffset] = schema

	compileTime := FormatTimestamp(fields.CompileTime)
	putString(rec[compileTimeOffset:shortHashOffset], compileTime)
	putString(rec[shortHashOffset:dirtyOffset], fields.ShortHash)
	rec[dirtyOffset] = EncodeBool(fields.Dirty)
	putString(rec[tagDescribeOffset:lastAuthorOffset], fields.TagDescribe)
	putString(rec[lastAuthorOffset:footerOffset], fields.LastAuthor)

	copy(rec[footerOffset:], footer[:])

	overflow := errors.Join(
		CheckWidth(FieldCompileTime, compileTime, CompileTimeWidth),
		CheckWidth(FieldShortHash, fields.ShortHash, ShortHashWidth),
		CheckWidth(FieldTagDescribe, fields.TagDescribe, TagDescribeWidth),
		CheckWidth(FieldLastAuthor, fields.LastAuthor, LastAuthorWidth),
	)
	return rec, overflow
}

// Overflows extracts the *OverflowError values from an Assemble error.
func Overflows(err error) []*OverflowError {
	if err == nil {
		return nil
	}
	var found []*OverflowError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, inner := range joined.Unwrap() {
			found = append(found, Overflows(inner)...)
		}
		return found
	}
	var overflow *OverflowError
	if errors.As(err, &overflow) {
		found = append(found, overflow)
	}
	return found
}
