package record

import "time"

// TimestampLayout is the UTC, second precision layout of the compile time
// field. Formatted values are exactly CompileTimeWidth bytes for years 0-9999.
const TimestampLayout = "2006-01-02T15:04:05Z"

// EncodeString returns value left-aligned in width bytes. Longer values are
// truncated at the byte level, which can split a multi-byte UTF-8 sequence.
// Unused trailing bytes are zero.
func EncodeString(value string, width int) []byte {
	buf := make([]byte, width)
	putString(buf, value)
	return buf
}

// putString copies value into dst, truncating, and zeroes the remainder.
func putString(dst []byte, value string) {
	n := copy(dst, value)
	clear(dst[n:])
}

// EncodeBool returns 1 for true and 0 for false.
func EncodeBool(value bool) byte {
	if value {
		return 1
	}
	return 0
}

// EncodeTimestamp formats instant in UTC with second precision and encodes it
// like a string field.
func EncodeTimestamp(instant time.Time, width int) []byte {
	return EncodeString(FormatTimestamp(instant), width)
}

// FormatTimestamp returns the textual form stored in the compile time field.
func FormatTimestamp(instant time.Time) string {
	return instant.UTC().Truncate(time.Second).Format(TimestampLayout)
}

// CheckWidth returns an *OverflowError when value does not fit in width bytes.
func CheckWidth(field, value string, width int) error {
	if len(value) <= width {
		return nil
	}
	return &OverflowError{Field: field, Width: width, Len: len(value)}
}
