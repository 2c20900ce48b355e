package csvio

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

var (
	errNilWriter      = errors.New("csvio: writer is nil")
	errWriterNoTarget = errors.New("csvio: writer destination cannot be nil")
)

// QuoteMode controls which cells a Writer wraps in quote characters.
type QuoteMode int

const (
	// QuoteMinimal quotes a cell only when its content requires it.
	QuoteMinimal QuoteMode = iota
	// QuoteNonNumeric quotes text and character cells unconditionally.
	QuoteNonNumeric
	// QuoteAll quotes every cell, numeric cells included.
	QuoteAll
)

// Writer provides buffered CSV emission with configurable delimiters
// and quoting rules. It exposes one write operation per primitive kind
// plus the raw separator and end-of-line primitives the compiled
// codecs orchestrate. A Writer is not safe for concurrent use.
type Writer struct {
	dst *bufio.Writer

	// Comma is the field delimiter. Default is ','.
	Comma byte
	// Quote is the quote character. Default is '"'.
	Quote byte
	// Quoting selects the quoting mode. Default is QuoteMinimal.
	Quoting QuoteMode
	// UseCRLF writes \r\n line terminators when set.
	UseCRLF bool

	scratch []byte
	err     error
}

const defaultBufferSize = 1 << 10 // 1024 bytes

// NewWriter creates a new Writer with internal buffering tuned for bulk writes.
func NewWriter(w io.Writer) *Writer {
	if w == nil {
		panic(errWriterNoTarget.Error())
	}
	return &Writer{
		dst:     bufio.NewWriterSize(w, defaultBufferSize),
		Comma:   ',',
		Quote:   '"',
		scratch: make([]byte, 0, 32),
	}
}

// Reset updates the underlying writer while preserving the configuration flags.
func (w *Writer) Reset(dst io.Writer) {
	if dst == nil {
		panic(errWriterNoTarget.Error())
	}
	if w.dst == nil {
		w.dst = bufio.NewWriterSize(dst, defaultBufferSize)
	} else {
		w.dst.Reset(dst)
	}
	w.err = nil
}

// WriteRaw writes b verbatim, with no quoting or escaping.
func (w *Writer) WriteRaw(b []byte) error {
	if w.err != nil {
		return w.err
	}
	if _, err := w.dst.Write(b); err != nil {
		w.err = err
	}
	return w.err
}

// WriteSeparator writes the configured field delimiter.
func (w *Writer) WriteSeparator() error {
	if w.err != nil {
		return w.err
	}
	if err := w.dst.WriteByte(w.comma()); err != nil {
		w.err = err
	}
	return w.err
}

// WriteEndOfLine writes the configured line terminator.
func (w *Writer) WriteEndOfLine() error {
	if w.err != nil {
		return w.err
	}
	var err error
	if w.UseCRLF {
		_, err = w.dst.Write([]byte{'\r', '\n'})
	} else {
		err = w.dst.WriteByte('\n')
	}
	if err != nil {
		w.err = err
	}
	return w.err
}

// WriteString writes one text cell, quoting and escaping per the
// configured mode and the cell content.
func (w *Writer) WriteString(s string) error {
	if w.err != nil {
		return w.err
	}
	comma, quote := w.comma(), w.quote()

	needsQuote := w.Quoting != QuoteMinimal
	if !needsQuote {
		needsQuote = fieldNeedsQuote(s, comma, quote)
	}
	if !needsQuote {
		if _, err := w.dst.WriteString(s); err != nil {
			w.err = err
		}
		return w.err
	}
	if err := w.writeQuoted(s, quote); err != nil {
		w.err = err
	}
	return w.err
}

// WriteChar writes one single-character cell.
func (w *Writer) WriteChar(c rune) error {
	if c == 0 {
		return w.err
	}
	var buf [utf8.UTFMax]byte
	n := utf8.EncodeRune(buf[:], c)
	return w.WriteString(string(buf[:n]))
}

// WriteBool writes "true" or "false".
func (w *Writer) WriteBool(v bool) error {
	if v {
		return w.writeNumeric([]byte("true"))
	}
	return w.writeNumeric([]byte("false"))
}

func (w *Writer) WriteInt8(v int8) error   { return w.WriteInt64(int64(v)) }
func (w *Writer) WriteInt16(v int16) error { return w.WriteInt64(int64(v)) }
func (w *Writer) WriteInt32(v int32) error { return w.WriteInt64(int64(v)) }

func (w *Writer) WriteInt64(v int64) error {
	w.scratch = strconv.AppendInt(w.scratch[:0], v, 10)
	return w.writeNumeric(w.scratch)
}

func (w *Writer) WriteUint8(v uint8) error   { return w.WriteUint64(uint64(v)) }
func (w *Writer) WriteUint16(v uint16) error { return w.WriteUint64(uint64(v)) }
func (w *Writer) WriteUint32(v uint32) error { return w.WriteUint64(uint64(v)) }

func (w *Writer) WriteUint64(v uint64) error {
	w.scratch = strconv.AppendUint(w.scratch[:0], v, 10)
	return w.writeNumeric(w.scratch)
}

func (w *Writer) WriteFloat32(v float32) error {
	w.scratch = strconv.AppendFloat(w.scratch[:0], float64(v), 'g', -1, 32)
	return w.writeNumeric(w.scratch)
}

func (w *Writer) WriteFloat64(v float64) error {
	w.scratch = strconv.AppendFloat(w.scratch[:0], v, 'g', -1, 64)
	return w.writeNumeric(w.scratch)
}

// WriteDecimal writes a high-precision decimal cell.
func (w *Writer) WriteDecimal(v decimal.Decimal) error {
	return w.writeNumeric([]byte(v.String()))
}

// Flush flushes pending buffered data to the underlying writer.
func (w *Writer) Flush() error {
	if w.dst == nil {
		return errWriterNoTarget
	}
	if w.err != nil {
		return w.err
	}
	if err := w.dst.Flush(); err != nil {
		w.err = err
	}
	return w.err
}

// Error reports the first error encountered by the writer.
func (w *Writer) Error() error {
	return w.err
}

// writeNumeric writes a cell whose bytes never require escaping.
// Numeric cells are quoted only in QuoteAll mode.
func (w *Writer) writeNumeric(b []byte) error {
	if w.err != nil {
		return w.err
	}
	quote := w.quote()
	if w.Quoting == QuoteAll {
		if err := w.dst.WriteByte(quote); err != nil {
			w.err = err
			return w.err
		}
	}
	if _, err := w.dst.Write(b); err != nil {
		w.err = err
		return w.err
	}
	if w.Quoting == QuoteAll {
		if err := w.dst.WriteByte(quote); err != nil {
			w.err = err
		}
	}
	return w.err
}

func (w *Writer) writeQuoted(s string, quote byte) error {
	if err := w.dst.WriteByte(quote); err != nil {
		return err
	}

	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == quote {
			if start < i {
				if _, err := w.dst.WriteString(s[start:i]); err != nil {
					return err
				}
			}
			if _, err := w.dst.Write([]byte{quote, quote}); err != nil {
				return err
			}
			start = i + 1
		}
	}
	if start < len(s) {
		if _, err := w.dst.WriteString(s[start:]); err != nil {
			return err
		}
	}
	return w.dst.WriteByte(quote)
}

func (w *Writer) comma() byte {
	if w.Comma == 0 {
		return ','
	}
	return w.Comma
}

func (w *Writer) quote() byte {
	if w.Quote == 0 {
		return '"'
	}
	return w.Quote
}

func fieldNeedsQuote(field string, comma, quote byte) bool {
	for i := 0; i < len(field); i++ {
		switch field[i] {
		case quote, comma, '\n', '\r':
			return true
		}
	}
	return false
}
