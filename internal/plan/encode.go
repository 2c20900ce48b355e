package plan

import (
	"unsafe"

	"csvcast/csvio"
	"csvcast/formatter"
	"csvcast/internal/schema"
)

// Encoder is the compiled write path for one schema: header emission,
// per-row field emission, and separator/line-end placement. N records
// produce a line terminator before every row except the first emitted
// line and never one after the final row.
type Encoder struct {
	sc     *schema.Schema
	procs  []fieldProc
	order  []int // physical column -> field slot, -1 writes an empty cell
	header bool
}

// NewEncoder compiles the write path. header enables header emission.
func NewEncoder(sc *schema.Schema, reg *formatter.Registry, header bool) *Encoder {
	// Named mode emits columns in declaration order; positional mode
	// emits by column index, which differs when index keys reorder or
	// leave gaps.
	var order []int
	if sc.Strategy == schema.Named {
		order = make([]int, len(sc.Fields))
		for i := range order {
			order[i] = i
		}
	} else {
		order = columnSlots(sc)
	}
	return &Encoder{sc: sc, procs: compileProcs(sc, reg), order: order, header: header}
}

// EncodeSlice serializes n records laid out contiguously from base
// with the given stride, flushing the writer on success.
func (e *Encoder) EncodeSlice(w *csvio.Writer, base unsafe.Pointer, n int, stride uintptr) error {
	wrote := false
	if e.header {
		if err := e.writeHeader(w); err != nil {
			return err
		}
		wrote = true
	}
	for i := 0; i < n; i++ {
		if wrote {
			if err := w.WriteEndOfLine(); err != nil {
				return err
			}
		}
		if err := e.writeRecord(w, unsafe.Add(base, uintptr(i)*stride)); err != nil {
			return err
		}
		wrote = true
	}
	return w.Flush()
}

// EncodeSeq serializes records from a single-pass forward-only source.
// seq pushes a pointer to each record and must stop when yield returns
// false; releasing whatever resource backs the iteration is the
// producer's scoped responsibility on every exit path.
func (e *Encoder) EncodeSeq(w *csvio.Writer, seq func(yield func(rec unsafe.Pointer) bool)) error {
	wrote := false
	if e.header {
		if err := e.writeHeader(w); err != nil {
			return err
		}
		wrote = true
	}

	var err error
	seq(func(rec unsafe.Pointer) bool {
		if wrote {
			if err = w.WriteEndOfLine(); err != nil {
				return false
			}
		}
		if err = e.writeRecord(w, rec); err != nil {
			return false
		}
		wrote = true
		return true
	})
	if err != nil {
		return err
	}
	return w.Flush()
}

// writeHeader writes each field's precomputed key bytes once. Header
// cells are wrapped in quote characters when the writer's quoting mode
// is all or non-numeric.
func (e *Encoder) writeHeader(w *csvio.Writer) error {
	quoted := w.Quoting == csvio.QuoteAll || w.Quoting == csvio.QuoteNonNumeric
	q := [1]byte{w.Quote}
	if q[0] == 0 {
		q[0] = '"'
	}

	for col, slot := range e.order {
		if col > 0 {
			if err := w.WriteSeparator(); err != nil {
				return err
			}
		}
		if slot < 0 {
			continue
		}
		if quoted {
			if err := w.WriteRaw(q[:]); err != nil {
				return err
			}
		}
		if err := w.WriteRaw(e.sc.Fields[slot].HeaderBytes); err != nil {
			return err
		}
		if quoted {
			if err := w.WriteRaw(q[:]); err != nil {
				return err
			}
		}
	}
	return w.Error()
}

func (e *Encoder) writeRecord(w *csvio.Writer, rec unsafe.Pointer) error {
	for col, slot := range e.order {
		if col > 0 {
			if err := w.WriteSeparator(); err != nil {
				return err
			}
		}
		if slot < 0 {
			continue
		}
		if err := e.procs[slot].write(w, rec); err != nil {
			return err
		}
	}
	return nil
}
