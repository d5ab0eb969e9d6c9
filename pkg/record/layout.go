// Package record defines the fixed 80-byte build provenance record and its
// encode/decode contract.
//
// The package has no dependencies outside the standard library so that it can
// be imported by any program that embeds a record. Decoding never allocates.
package record

// Size is the total width of a record in bytes.
const Size = 80

// SchemaV1 is the only field layout currently defined.
const SchemaV1 uint8 = 1

// Field widths for schema 1.
const (
	HeaderWidth      = 4
	SchemaWidth      = 1
	CompileTimeWidth = 20
	ShortHashWidth   = 10
	DirtyWidth       = 1
	TagDescribeWidth = 20
	LastAuthorWidth  = 20
	FooterWidth      = 4
)

// Field offsets for schema 1.
const (
	headerOffset      = 0
	schemaOffset      = headerOffset + HeaderWidth
	compileTimeOffset = schemaOffset + SchemaWidth
	shortHashOffset   = compileTimeOffset + CompileTimeWidth
	dirtyOffset       = shortHashOffset + ShortHashWidth
	tagDescribeOffset = dirtyOffset + DirtyWidth
	lastAuthorOffset  = tagDescribeOffset + TagDescribeWidth
	footerOffset      = lastAuthorOffset + LastAuthorWidth
)

// Compile-time check that the field widths add up to Size.
var _ [Size - (footerOffset + FooterWidth)]struct{}
var _ [(footerOffset + FooterWidth) - Size]struct{}

var (
	header = [HeaderWidth]byte{0xFF, 0xFE, 0xFD, 0xFC}
	footer = [FooterWidth]byte{0x01, 0x02, 0x03, 0x04}
)

// Header returns the sentinel that opens every record.
func Header() [HeaderWidth]byte { return header }

// Footer returns the sentinel that closes every record.
func Footer() [FooterWidth]byte { return footer }

// Field names used in errors.
const (
	FieldCompileTime = "compile_time"
	FieldShortHash   = "short_hash"
	FieldTagDescribe = "tag_describe"
	FieldLastAuthor  = "last_author"
)

// Record is one encoded build record. A Record returned by Assemble is frozen:
// nothing in this package writes to it afterwards.
type Record [Size]byte

// Bytes returns the record as a byte slice backed by the record itself.
func (r *Record) Bytes() []byte {
	return r[:]
}
