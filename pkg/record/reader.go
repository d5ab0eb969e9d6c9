package record

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"
	"unsafe"
)

// Metadata is the decoded form of a record. String fields alias the bytes
// they were decoded from.
type Metadata struct {
	Schema      uint8
	CompileTime string
	ShortHash   string
	Dirty       bool
	TagDescribe string
	LastAuthor  string
}

// BuildTime parses CompileTime.
func (m Metadata) BuildTime() (time.Time, error) {
	if m.CompileTime == "" {
		return time.Time{}, fmt.Errorf("compile time is empty")
	}
	t, err := time.Parse(TimestampLayout, m.CompileTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse compile time %q: %w", m.CompileTime, err)
	}
	return t, nil
}

// Validate checks the length and both sentinels of b.
func Validate(b []byte) error {
	if len(b) != Size {
		return &CorruptRecordError{Reason: fmt.Sprintf("length %d, want %d", len(b), Size)}
	}
	if [HeaderWidth]byte(b[headerOffset:schemaOffset]) != header {
		return &CorruptRecordError{Reason: fmt.Sprintf("header % x does not match % x", b[headerOffset:schemaOffset], header[:])}
	}
	if [FooterWidth]byte(b[footerOffset:]) != footer {
		return &CorruptRecordError{Reason: fmt.Sprintf("footer % x does not match % x", b[footerOffset:], footer[:])}
	}
	return nil
}

// Schema returns the raw schema byte. b must be at least schemaOffset+1 bytes;
// call Validate first.
func Schema(b []byte) uint8 {
	return b[schemaOffset]
}

// DecodeString recovers the logical string from a zero-padded buffer: the
// prefix up to and including the last non-zero byte. An all-zero buffer
// decodes to "".
//
// A value whose last byte is a real NUL cannot be told apart from padding
// and decodes short. None of the record's fields can contain NUL; do not
// reuse this encoding for arbitrary payloads.
//
// The returned string shares memory with buf and does not allocate, so buf
// must not be modified afterwards.
func DecodeString(buf []byte) string {
	n := len(buf)
	// Scan backwards: fields are usually more than half full.
	for n > 0 && buf[n-1] == 0 {
		n--
	}
	if n == 0 {
		return ""
	}
	return unsafe.String(&buf[0], n)
}

// DecodeBool reports whether b is non-zero.
func DecodeBool(b byte) bool {
	return b != 0
}

// Decode validates b and decodes its fields. Records with an unknown schema
// fail with *UnsupportedSchemaError and are not interpreted further.
func Decode(b []byte) (Metadata, error) {
	if err := Validate(b); err != nil {
		return Metadata{}, err
	}
	schema := Schema(b)
	if schema != SchemaV1 {
		return Metadata{}, &UnsupportedSchemaError{Version: schema}
	}
	return Metadata{
		Schema:      schema,
		CompileTime: DecodeString(b[compileTimeOffset:shortHashOffset]),
		ShortHash:   DecodeString(b[shortHashOffset:dirtyOffset]),
		Dirty:       DecodeBool(b[dirtyOffset]),
		TagDescribe: DecodeString(b[tagDescribeOffset:lastAuthorOffset]),
		LastAuthor:  DecodeString(b[lastAuthorOffset:footerOffset]),
	}, nil
}

// Metadata decodes the record. The result aliases r.
func (r *Record) Metadata() (Metadata, error) {
	return Decode(r[:])
}

// Hex returns the record as lowercase hex, the form used with -ldflags -X.
func (r *Record) Hex() string {
	return hex.EncodeToString(r[:])
}

// FromHex decodes a hex string into a validated record. Surrounding
// whitespace is ignored.
func FromHex(s string) (Record, error) {
	var rec Record
	s = strings.TrimSpace(s)
	if hex.DecodedLen(len(s)) != Size {
		return Record{}, &CorruptRecordError{Reason: fmt.Sprintf("hex length %d, want %d", len(s), hex.EncodedLen(Size))}
	}
	if _, err := hex.Decode(rec[:], []byte(s)); err != nil {
		return Record{}, &CorruptRecordError{Reason: fmt.Sprintf("invalid hex: %v", err)}
	}
	if err := Validate(rec[:]); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// FromBytes copies b into a validated record.
func FromBytes(b []byte) (Record, error) {
	if err := Validate(b); err != nil {
		return Record{}, err
	}
	return Record(b), nil
}

// Load reads a record stored in its own file, such as one shipped next to
// the executable.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("read build record %s: %w", path, err)
	}
	rec, err := FromBytes(data)
	if err != nil {
		return Record{}, fmt.Errorf("load build record %s: %w", path, err)
	}
	return rec, nil
}
