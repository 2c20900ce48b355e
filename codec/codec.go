package codec

import (
	"bytes"
	"iter"
	"reflect"
	"unsafe"

	"csvcast/csvio"
	"csvcast/diagnostic"
	"csvcast/formatter"
	"csvcast/internal/plan"
	"csvcast/internal/schema"
)

// ErrHeaderRequired is returned by named-mode reads when the input has
// no header row to resolve column identity from, or when the codec was
// compiled with the header disabled.
var ErrHeaderRequired = plan.ErrHeaderRequired

type options struct {
	header     bool
	comments   bool
	namedKeys  bool
	formatters *formatter.Registry
	diags      *diagnostic.Diagnostics
}

// Option configures codec compilation.
type Option func(*options)

// WithHeader enables header emission on write and header consumption
// on read. This is the default.
func WithHeader() Option {
	return func(o *options) { o.header = true }
}

// WithoutHeader disables the header line on both write and read.
func WithoutHeader() Option {
	return func(o *options) { o.header = false }
}

// WithComments enables skipping of comment lines on read.
func WithComments() Option {
	return func(o *options) { o.comments = true }
}

// WithNamedKeys forces header-name column resolution using field names
// as keys, even when no field declares an explicit string key.
func WithNamedKeys() Option {
	return func(o *options) { o.namedKeys = true }
}

// WithFormatters overrides the fallback formatter registry consulted
// for field types outside the fast-path kind set.
func WithFormatters(reg *formatter.Registry) Option {
	return func(o *options) { o.formatters = reg }
}

// WithDiagnostics collects schema-definition errors and warnings into
// d in addition to returning them from Compile.
func WithDiagnostics(d *diagnostic.Diagnostics) Option {
	return func(o *options) { o.diags = d }
}

func newOptions(opts []Option) options {
	o := options{header: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.formatters == nil {
		o.formatters = formatter.Default()
	}
	return o
}

// Codec is the compiled serializer/deserializer for record type T.
type Codec[T any] struct {
	sc  *schema.Schema
	enc *plan.Encoder
	dec *plan.Decoder
}

// Compile builds the Codec for T: it reflects over T's fields once,
// precomputes header keys, selects the column-resolution strategy, and
// synthesizes the per-field fast paths. Schema-definition errors are
// returned (and recorded via WithDiagnostics); the caller can keep
// compiling sibling types.
func Compile[T any](opts ...Option) (*Codec[T], error) {
	o := newOptions(opts)

	rt := reflect.TypeOf((*T)(nil)).Elem()
	sc, err := schema.Build(rt, o.namedKeys, o.diags)
	if err != nil {
		return nil, err
	}

	return &Codec[T]{
		sc:  sc,
		enc: plan.NewEncoder(sc, o.formatters, o.header),
		dec: plan.NewDecoder(sc, o.formatters, o.header, o.comments),
	}, nil
}

// MustCompile is Compile panicking on schema errors.
func MustCompile[T any](opts ...Option) *Codec[T] {
	c, err := Compile[T](opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Named reports whether the codec resolves columns by header name.
func (c *Codec[T]) Named() bool {
	return c.sc.Strategy == schema.Named
}

// Keys returns the header keys in declaration order.
func (c *Codec[T]) Keys() []string {
	keys := make([]string, len(c.sc.Fields))
	for i := range c.sc.Fields {
		keys[i] = c.sc.Fields[i].Key
	}
	return keys
}

// Write serializes records through w and flushes it. No line
// terminator follows the final row.
func (c *Codec[T]) Write(w *csvio.Writer, records []T) error {
	var base unsafe.Pointer
	if len(records) > 0 {
		base = unsafe.Pointer(&records[0])
	}
	var zero T
	return c.enc.EncodeSlice(w, base, len(records), unsafe.Sizeof(zero))
}

// WriteSeq serializes records from a single-pass forward-only source.
// When an element fails to encode, the range over seq exits early,
// which runs the producer's deferred cleanup before WriteSeq returns.
func (c *Codec[T]) WriteSeq(w *csvio.Writer, seq iter.Seq[T]) error {
	return c.enc.EncodeSeq(w, func(yield func(rec unsafe.Pointer) bool) {
		for v := range seq {
			if !yield(unsafe.Pointer(&v)) {
				return
			}
		}
	})
}

// Read deserializes every row of r into a freshly allocated slice.
func (c *Codec[T]) Read(r *csvio.Reader) ([]T, error) {
	cols, err := c.dec.Prepare(r)
	if err != nil {
		return nil, err
	}

	var out []T
	for {
		c.dec.SkipInterstitial(r)
		if r.Remaining() == 0 {
			break
		}
		var rec T
		if err := c.dec.DecodeRow(r, unsafe.Pointer(&rec), cols); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadInto deserializes rows of r into the caller-supplied dst and
// returns the count written. dst being large enough is the caller's
// contract; overflowing it surfaces as the runtime's bounds failure.
func (c *Codec[T]) ReadInto(r *csvio.Reader, dst []T) (int, error) {
	cols, err := c.dec.Prepare(r)
	if err != nil {
		return 0, err
	}

	n := 0
	var zero T
	for {
		c.dec.SkipInterstitial(r)
		if r.Remaining() == 0 {
			break
		}
		dst[n] = zero
		if err := c.dec.DecodeRow(r, unsafe.Pointer(&dst[n]), cols); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// Marshal compiles a codec for T and serializes records to a byte
// slice with default reader/writer settings. Hot paths should compile
// once and reuse the Codec instead.
func Marshal[T any](records []T, opts ...Option) ([]byte, error) {
	c, err := Compile[T](opts...)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	w := csvio.NewWriter(&buf)
	if err := c.Write(w, records); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal compiles a codec for T and deserializes data.
func Unmarshal[T any](data []byte, opts ...Option) ([]T, error) {
	c, err := Compile[T](opts...)
	if err != nil {
		return nil, err
	}
	return c.Read(csvio.NewReader(data))
}
