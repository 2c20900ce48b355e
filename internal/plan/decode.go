package plan

import (
	"errors"
	"unsafe"

	"csvcast/csvio"
	"csvcast/formatter"
	"csvcast/internal/common"
	"csvcast/internal/schema"
)

// ErrHeaderRequired is returned when a named-mode read finds no header
// row to resolve column identity from.
var ErrHeaderRequired = errors.New("csvcast: named mode requires a header row")

// Decoder is the compiled read path for one schema: header/column-map
// construction in named mode, the per-row field dispatch state
// machine, and short-row default handling. The record slot passed to
// DecodeRow must be freshly zeroed; fields the row never reaches keep
// their kind's default that way.
type Decoder struct {
	sc       *schema.Schema
	procs    []fieldProc
	byIndex  []int // physical column index -> field slot, -1 skips
	header   bool
	comments bool
}

// NewDecoder compiles the read path. header marks the input as
// carrying a header row; comments enables comment-line skipping.
func NewDecoder(sc *schema.Schema, reg *formatter.Registry, header, comments bool) *Decoder {
	return &Decoder{
		sc:       sc,
		procs:    compileProcs(sc, reg),
		byIndex:  columnSlots(sc),
		header:   header,
		comments: comments,
	}
}

// columnSlots maps physical column positions 0..MaxIndex to field
// slots; positions with no declared field map to -1.
func columnSlots(sc *schema.Schema) []int {
	slots := make([]int, sc.MaxIndex+1)
	for i := range slots {
		slots[i] = -1
	}
	for slot := range sc.Fields {
		slots[sc.Fields[slot].Index] = slot
	}
	return slots
}

// Prepare consumes the stream preamble before the first data row and
// returns the column map for named mode (nil in positional mode). The
// column map is scoped to this one stream and never shared.
func (d *Decoder) Prepare(r *csvio.Reader) ([]int, error) {
	if d.sc.Strategy == schema.Named {
		if !d.header {
			return nil, ErrHeaderRequired
		}
		return d.readColumnMap(r)
	}
	if d.header {
		d.SkipInterstitial(r)
		if r.Remaining() > 0 {
			r.SkipLine()
		}
	}
	return nil, nil
}

// SkipInterstitial consumes blank lines and, when enabled, comment
// lines until a data row or end of input.
func (d *Decoder) SkipInterstitial(r *csvio.Reader) {
	for r.Remaining() > 0 {
		if d.comments && r.TrySkipComment() {
			continue
		}
		if r.TryReadEndOfLine() {
			continue
		}
		break
	}
}

// DecodeRow parses one row into the zeroed record at rec. cols is the
// column map from Prepare; nil selects positional dispatch.
func (d *Decoder) DecodeRow(r *csvio.Reader, rec unsafe.Pointer, cols []int) error {
	if cols == nil {
		return d.decodeRow(r, rec, d.byIndex)
	}
	return d.decodeRow(r, rec, cols)
}

// decodeRow is the row state machine: iterate physical positions in
// order, dispatch the fast-path read for mapped slots and skip the
// rest; an end of line before the last position ends the row early and
// leaves the remaining fields at their defaults; a row that never
// reached an end of line still has unread columns, which are skipped
// to the line terminator.
func (d *Decoder) decodeRow(r *csvio.Reader, rec unsafe.Pointer, cols []int) error {
	reachedEOL := false
	for pos := 0; pos < len(cols); pos++ {
		if slot := cols[pos]; slot >= 0 {
			if err := d.procs[slot].read(r, rec); err != nil {
				return err
			}
		} else if err := r.SkipField(); err != nil {
			return err
		}
		if r.TryReadEndOfLine() {
			reachedEOL = true
			break
		}
		if !r.TryReadSeparator() {
			break
		}
	}
	if !reachedEOL {
		r.SkipLine()
	}
	return nil
}

// readColumnMap reads the header row and resolves each header cell to
// a field slot in physical order; unrecognized columns map to -1 and
// silently skip their content on every data row.
func (d *Decoder) readColumnMap(r *csvio.Reader) ([]int, error) {
	d.SkipInterstitial(r)
	if r.Remaining() == 0 {
		return nil, ErrHeaderRequired
	}

	var cols []int
	for {
		cell, err := r.ReadUTF8Bytes()
		if err != nil {
			return nil, err
		}
		cols = append(cols, d.sc.LookupKey(cell))
		if r.TryReadEndOfLine() {
			break
		}
		if !r.TryReadSeparator() {
			break
		}
	}
	if common.IsEmpty(cols) {
		return nil, ErrHeaderRequired
	}
	return cols, nil
}

// Named reports whether this decoder resolves columns by header name.
func (d *Decoder) Named() bool {
	return d.sc.Strategy == schema.Named
}
