package csvio

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"unicode/utf8"
	"unsafe"

	"github.com/shopspring/decimal"
)

var (
	// ErrBareQuote is returned when an unexpected quote is found in an unquoted field.
	ErrBareQuote = errors.New("csvio: bare quote in non-quoted field")
	// ErrUnterminatedQuote is returned when a quoted field is not closed before EOF.
	ErrUnterminatedQuote = errors.New("csvio: unterminated quoted field")
	// ErrNotSingleChar is returned when a character cell holds more than one rune.
	ErrNotSingleChar = errors.New("csvio: field is not a single character")
)

// ParseError contains location information for CSV parsing errors.
type ParseError struct {
	Line   int
	Column int
	Err    error
}

// Error formats the parse error message with the stored line, column, and Err values.
func (e *ParseError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("csvio: parse error on line %d, column %d: %v", e.Line, e.Column, e.Err)
}

// Unwrap returns the underlying Err so ParseError participates in errors.Unwrap.
func (e *ParseError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Reader scans one CSV input buffer. It exposes the field, separator,
// end-of-line, and comment primitives the compiled codecs orchestrate,
// plus one read operation per primitive kind. A Reader is owned by one
// deserialize call at a time and is not safe for concurrent use.
//
// Typed reads treat an empty cell as the kind's zero value.
type Reader struct {
	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// Comment is the comment line marker. Default is '#'.
	Comment byte

	data      []byte
	pos       int
	line      int
	lineStart int
	field     []byte
}

// NewReader creates a Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{
		Comma:   ',',
		Quote:   '"',
		Comment: '#',
		data:    data,
		line:    1,
		field:   make([]byte, 0, 64),
	}
}

// NewStreamReader slurps src and returns a Reader over its contents.
func NewStreamReader(src io.Reader) (*Reader, error) {
	if src == nil {
		panic("csvio: reader source cannot be nil")
	}
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return NewReader(data), nil
}

// Remaining reports how many unread bytes are left.
func (r *Reader) Remaining() int {
	return len(r.data) - r.pos
}

// TryReadEndOfLine consumes a line terminator if one is next and
// reports whether the current row ends here. End of input counts as an
// end of line and consumes nothing.
func (r *Reader) TryReadEndOfLine() bool {
	if r.pos >= len(r.data) {
		return true
	}
	switch r.data[r.pos] {
	case '\n':
		r.pos++
		r.advanceLine()
		return true
	case '\r':
		r.pos++
		if r.pos < len(r.data) && r.data[r.pos] == '\n' {
			r.pos++
		}
		r.advanceLine()
		return true
	}
	return false
}

// TryReadSeparator consumes the field delimiter if it is next.
func (r *Reader) TryReadSeparator() bool {
	if r.pos < len(r.data) && r.data[r.pos] == r.comma() {
		r.pos++
		return true
	}
	return false
}

// TrySkipComment skips an entire comment line, marker included, and
// reports whether one was consumed.
func (r *Reader) TrySkipComment() bool {
	if r.pos >= len(r.data) || r.data[r.pos] != r.comment() {
		return false
	}
	r.SkipLine()
	return true
}

// SkipLine discards everything up to and including the next line
// terminator. Quoting is not interpreted.
func (r *Reader) SkipLine() {
	for r.pos < len(r.data) {
		c := r.data[r.pos]
		r.pos++
		if c == '\n' {
			r.advanceLine()
			return
		}
		if c == '\r' {
			if r.pos < len(r.data) && r.data[r.pos] == '\n' {
				r.pos++
			}
			r.advanceLine()
			return
		}
	}
}

// SkipField consumes one field, quoting included, and discards it.
func (r *Reader) SkipField() error {
	_, err := r.readFieldBytes()
	return err
}

// ReadUTF8Bytes returns the unescaped bytes of the next field. The
// returned slice is only valid until the next read call.
func (r *Reader) ReadUTF8Bytes() ([]byte, error) {
	return r.readFieldBytes()
}

// ReadString reads one text cell.
func (r *Reader) ReadString() (string, error) {
	b, err := r.readFieldBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadChar reads one single-character cell.
func (r *Reader) ReadChar() (rune, error) {
	b, err := r.readFieldBytes()
	if err != nil {
		return 0, err
	}
	if len(b) == 0 {
		return 0, nil
	}
	c, size := utf8.DecodeRune(b)
	if size != len(b) {
		return 0, r.wrapError(ErrNotSingleChar)
	}
	return c, nil
}

// ReadBool reads one boolean cell.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.readFieldBytes()
	if err != nil || len(b) == 0 {
		return false, err
	}
	v, err := strconv.ParseBool(bytesToString(b))
	if err != nil {
		return false, r.wrapError(err)
	}
	return v, nil
}

func (r *Reader) ReadInt8() (int8, error) {
	v, err := r.readInt(8)
	return int8(v), err
}

func (r *Reader) ReadInt16() (int16, error) {
	v, err := r.readInt(16)
	return int16(v), err
}

func (r *Reader) ReadInt32() (int32, error) {
	v, err := r.readInt(32)
	return int32(v), err
}

func (r *Reader) ReadInt64() (int64, error) {
	return r.readInt(64)
}

func (r *Reader) ReadUint8() (uint8, error) {
	v, err := r.readUint(8)
	return uint8(v), err
}

func (r *Reader) ReadUint16() (uint16, error) {
	v, err := r.readUint(16)
	return uint16(v), err
}

func (r *Reader) ReadUint32() (uint32, error) {
	v, err := r.readUint(32)
	return uint32(v), err
}

func (r *Reader) ReadUint64() (uint64, error) {
	return r.readUint(64)
}

func (r *Reader) ReadFloat32() (float32, error) {
	b, err := r.readFieldBytes()
	if err != nil || len(b) == 0 {
		return 0, err
	}
	v, err := strconv.ParseFloat(bytesToString(b), 32)
	if err != nil {
		return 0, r.wrapError(err)
	}
	return float32(v), nil
}

func (r *Reader) ReadFloat64() (float64, error) {
	b, err := r.readFieldBytes()
	if err != nil || len(b) == 0 {
		return 0, err
	}
	v, err := strconv.ParseFloat(bytesToString(b), 64)
	if err != nil {
		return 0, r.wrapError(err)
	}
	return v, nil
}

// ReadDecimal reads one high-precision decimal cell.
func (r *Reader) ReadDecimal() (decimal.Decimal, error) {
	b, err := r.readFieldBytes()
	if err != nil || len(b) == 0 {
		return decimal.Decimal{}, err
	}
	v, err := decimal.NewFromString(string(b))
	if err != nil {
		return decimal.Decimal{}, r.wrapError(err)
	}
	return v, nil
}

func (r *Reader) readInt(bitSize int) (int64, error) {
	b, err := r.readFieldBytes()
	if err != nil || len(b) == 0 {
		return 0, err
	}
	v, err := strconv.ParseInt(bytesToString(b), 10, bitSize)
	if err != nil {
		return 0, r.wrapError(err)
	}
	return v, nil
}

func (r *Reader) readUint(bitSize int) (uint64, error) {
	b, err := r.readFieldBytes()
	if err != nil || len(b) == 0 {
		return 0, err
	}
	v, err := strconv.ParseUint(bytesToString(b), 10, bitSize)
	if err != nil {
		return 0, r.wrapError(err)
	}
	return v, nil
}

// readFieldBytes consumes exactly one field's content and returns its
// unescaped bytes, leaving the position at the separator, line
// terminator, or end of input that follows. Plain fields alias the
// input buffer; quoted fields are unescaped into internal scratch.
func (r *Reader) readFieldBytes() ([]byte, error) {
	if r.pos >= len(r.data) {
		return nil, nil
	}

	comma, quote := r.comma(), r.quote()

	if r.data[r.pos] == quote {
		r.pos++
		r.field = r.field[:0]
		for {
			if r.pos >= len(r.data) {
				return nil, r.wrapError(ErrUnterminatedQuote)
			}
			c := r.data[r.pos]
			r.pos++
			if c == quote {
				// Doubled quote inside quotes represents an escaped quote.
				if r.pos < len(r.data) && r.data[r.pos] == quote {
					r.pos++
					r.field = append(r.field, quote)
					continue
				}
				return r.field, nil
			}
			if c == '\n' {
				r.line++
			}
			r.field = append(r.field, c)
		}
	}

	start := r.pos
	for r.pos < len(r.data) {
		switch r.data[r.pos] {
		case comma, '\n', '\r':
			return r.data[start:r.pos], nil
		case quote:
			return nil, r.wrapError(ErrBareQuote)
		}
		r.pos++
	}
	return r.data[start:], nil
}

func (r *Reader) advanceLine() {
	r.line++
	r.lineStart = r.pos
}

func (r *Reader) wrapError(err error) error {
	return &ParseError{Line: r.line, Column: r.pos - r.lineStart + 1, Err: err}
}

func (r *Reader) comma() byte {
	if r.Comma == 0 {
		return ','
	}
	return r.Comma
}

func (r *Reader) quote() byte {
	if r.Quote == 0 {
		return '"'
	}
	return r.Quote
}

func (r *Reader) comment() byte {
	if r.Comment == 0 {
		return '#'
	}
	return r.Comment
}

// bytesToString reinterprets b as a string without copying. Callers
// must not let the result outlive the read that produced b.
func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
