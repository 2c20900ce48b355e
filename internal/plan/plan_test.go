package plan

import (
	"bytes"
	"reflect"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvcast/csvio"
	"csvcast/formatter"
	"csvcast/internal/schema"
)

type sample struct {
	A int32
	B string
	C bool
}

type gapped struct {
	High string `csv:"4"`
	Low  string `csv:"1"`
}

func buildSchema(t *testing.T, v any) *schema.Schema {
	t.Helper()
	sc, err := schema.Build(reflect.TypeOf(v), false, nil)
	require.NoError(t, err)
	return sc
}

func TestColumnSlots(t *testing.T) {
	slots := columnSlots(buildSchema(t, sample{}))
	assert.Equal(t, []int{0, 1, 2}, slots)

	slots = columnSlots(buildSchema(t, gapped{}))
	assert.Equal(t, []int{-1, 1, -1, -1, 0}, slots, "undeclared positions map to no slot")
}

func TestProcRoundTrip(t *testing.T) {
	sc := buildSchema(t, sample{})
	procs := compileProcs(sc, formatter.Default())
	require.Len(t, procs, 3)

	in := sample{A: -7, B: "x,y", C: true}
	var buf bytes.Buffer
	w := csvio.NewWriter(&buf)
	for i, p := range procs {
		if i > 0 {
			w.WriteSeparator()
		}
		require.NoError(t, p.write(w, unsafe.Pointer(&in)))
	}
	require.NoError(t, w.Flush())
	assert.Equal(t, `-7,"x,y",true`, buf.String())

	var out sample
	r := csvio.NewReader(buf.Bytes())
	for i, p := range procs {
		if i > 0 {
			require.True(t, r.TryReadSeparator())
		}
		require.NoError(t, p.read(r, unsafe.Pointer(&out)))
	}
	assert.Equal(t, in, out)
}

func TestEncoderGapColumnsEmpty(t *testing.T) {
	sc := buildSchema(t, gapped{})
	enc := NewEncoder(sc, formatter.Default(), false)

	recs := []gapped{{High: "h", Low: "l"}}
	var buf bytes.Buffer
	w := csvio.NewWriter(&buf)
	require.NoError(t, enc.EncodeSlice(w, unsafe.Pointer(&recs[0]), 1, unsafe.Sizeof(recs[0])))
	assert.Equal(t, ",l,,,h", buf.String())
}

func TestDecoderPositionalHeaderSkip(t *testing.T) {
	sc := buildSchema(t, sample{})
	dec := NewDecoder(sc, formatter.Default(), true, false)

	r := csvio.NewReader([]byte("0,1,2\n5,hello,true"))
	cols, err := dec.Prepare(r)
	require.NoError(t, err)
	assert.Nil(t, cols, "positional mode carries no column map")

	var rec sample
	require.NoError(t, dec.DecodeRow(r, unsafe.Pointer(&rec), cols))
	assert.Equal(t, sample{A: 5, B: "hello", C: true}, rec)
}
