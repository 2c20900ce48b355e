package codec_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvcast/codec"
	"csvcast/csvio"
	"csvcast/diagnostic"
	"csvcast/formatter"
	"csvcast/primitive"
)

type reading struct {
	ID    int64
	Label string
	Score float64
	OK    bool
}

var sampleReadings = []reading{
	{ID: 1, Label: "alpha", Score: 1.5, OK: true},
	{ID: 2, Label: "beta, with comma", Score: -2.25, OK: false},
	{ID: 3, Label: `quoted "label"`, Score: 0, OK: true},
}

func TestPositionalRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		recs := sampleReadings[:n]

		data, err := codec.Marshal(recs, codec.WithoutHeader())
		require.NoError(t, err)

		got, err := codec.Unmarshal[reading](data, codec.WithoutHeader())
		require.NoError(t, err)
		require.Len(t, got, n, spew.Sdump(got))
		for i := range recs {
			assert.Equal(t, recs[i], got[i])
		}
	}
}

func TestPositionalRoundTripWithHeader(t *testing.T) {
	data, err := codec.Marshal(sampleReadings)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "0,1,2,3\n"),
		"positional header carries index keys: %q", data)

	got, err := codec.Unmarshal[reading](data)
	require.NoError(t, err)
	assert.Equal(t, sampleReadings, got)
}

func TestLineTerminatorPlacement(t *testing.T) {
	data, err := codec.Marshal(sampleReadings, codec.WithoutHeader())
	require.NoError(t, err)

	s := string(data)
	assert.Equal(t, 2, strings.Count(s, "\n"), "3 records produce exactly 2 internal terminators")
	assert.False(t, strings.HasSuffix(s, "\n"), "no terminator after the final row")

	got, err := codec.Unmarshal[reading](data, codec.WithoutHeader())
	require.NoError(t, err)
	assert.Len(t, got, 3)
}

func TestHeaderOnlyOutput(t *testing.T) {
	data, err := codec.Marshal([]reading{})
	require.NoError(t, err)
	assert.Equal(t, "0,1,2,3", string(data))

	data, err = codec.Marshal([]reading{}, codec.WithoutHeader())
	require.NoError(t, err)
	assert.Empty(t, data)
}

func TestHeaderQuotedPerQuoteMode(t *testing.T) {
	c, err := codec.Compile[reading]()
	require.NoError(t, err)

	var buf bytes.Buffer
	w := csvio.NewWriter(&buf)
	w.Quoting = csvio.QuoteAll
	require.NoError(t, c.Write(w, nil))
	assert.Equal(t, `"0","1","2","3"`, buf.String())
}

func TestShortRowKeepsDefaults(t *testing.T) {
	got, err := codec.Unmarshal[reading]([]byte("7,seven"), codec.WithoutHeader())
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, reading{ID: 7, Label: "seven"}, got[0])
}

func TestLongRowSkipsCleanly(t *testing.T) {
	input := "1,a,2.5,true,extra,more\n2,b,3.5,false"
	got, err := codec.Unmarshal[reading]([]byte(input), codec.WithoutHeader())
	require.NoError(t, err)
	require.Len(t, got, 2, "extra columns must not corrupt the following row")
	assert.Equal(t, reading{ID: 1, Label: "a", Score: 2.5, OK: true}, got[0])
	assert.Equal(t, reading{ID: 2, Label: "b", Score: 3.5, OK: false}, got[1])
}

func TestBlankLinesSkipped(t *testing.T) {
	input := "\n1,a,1.5,true\n\n\n2,b,2.5,false\n"
	got, err := codec.Unmarshal[reading]([]byte(input), codec.WithoutHeader())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCommentLinesSkipped(t *testing.T) {
	input := "# leading comment\n1,a,1.5,true\n# between rows\n2,b,2.5,false"
	got, err := codec.Unmarshal[reading]([]byte(input), codec.WithoutHeader(), codec.WithComments())
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Without the option a comment line is field data and fails to parse.
	_, err = codec.Unmarshal[reading]([]byte(input), codec.WithoutHeader())
	require.Error(t, err)
}

func TestReadInto(t *testing.T) {
	data, err := codec.Marshal(sampleReadings, codec.WithoutHeader())
	require.NoError(t, err)

	c, err := codec.Compile[reading](codec.WithoutHeader())
	require.NoError(t, err)

	dst := make([]reading, 8)
	dst[3] = reading{ID: 99, Label: "stale"}
	n, err := c.ReadInto(csvio.NewReader(data), dst)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, sampleReadings, dst[:n])
}

func TestReadIntoOverflowPanics(t *testing.T) {
	data, err := codec.Marshal(sampleReadings, codec.WithoutHeader())
	require.NoError(t, err)

	c, err := codec.Compile[reading](codec.WithoutHeader())
	require.NoError(t, err)

	assert.Panics(t, func() {
		_, _ = c.ReadInto(csvio.NewReader(data), make([]reading, 1))
	}, "destination capacity is the caller's contract")
}

func TestWriteSeq(t *testing.T) {
	c, err := codec.Compile[reading](codec.WithoutHeader())
	require.NoError(t, err)

	released := false
	seq := func(yield func(reading) bool) {
		defer func() { released = true }()
		for _, r := range sampleReadings {
			if !yield(r) {
				return
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, c.WriteSeq(csvio.NewWriter(&buf), seq))
	assert.True(t, released, "iteration resource released on normal completion")

	want, err := codec.Marshal(sampleReadings, codec.WithoutHeader())
	require.NoError(t, err)
	assert.Equal(t, string(want), buf.String(), "both write variants are logically identical")
}

type stamped struct {
	ID   int64
	When timeField
}

// timeField exercises the fallback path with a type absent from every
// registry.
type timeField struct{ unix int64 }

func TestWriteSeqReleasesOnError(t *testing.T) {
	c, err := codec.Compile[stamped](
		codec.WithoutHeader(),
		codec.WithFormatters(formatter.NewRegistry()),
	)
	require.NoError(t, err, "missing formatters surface at first use, not at compile")

	released := false
	seq := func(yield func(stamped) bool) {
		defer func() { released = true }()
		for i := range 3 {
			if !yield(stamped{ID: int64(i)}) {
				return
			}
		}
	}

	var buf bytes.Buffer
	err = c.WriteSeq(csvio.NewWriter(&buf), seq)
	require.ErrorIs(t, err, formatter.ErrNoFormatter)
	assert.True(t, released, "iteration resource released on the error path too")
}

type priced struct {
	SKU    string
	Price  decimal.Decimal
	Rating primitive.Char
}

func TestDecimalAndCharRoundTrip(t *testing.T) {
	price, err := decimal.NewFromString("19.990000000000000001")
	require.NoError(t, err)

	recs := []priced{
		{SKU: "a-1", Price: price, Rating: 'A'},
		{SKU: "b-2", Price: decimal.Decimal{}, Rating: '★'},
	}

	data, err := codec.Marshal(recs, codec.WithoutHeader())
	require.NoError(t, err)

	got, err := codec.Unmarshal[priced](data, codec.WithoutHeader())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, recs[0].SKU, got[0].SKU)
	assert.True(t, recs[0].Price.Equal(got[0].Price), "decimal survives the trip exactly")
	assert.Equal(t, recs[0].Rating, got[0].Rating)
	assert.Equal(t, recs[1].Rating, got[1].Rating)
}

type shuffled struct {
	B string `csv:"1"`
	A string `csv:"0"`
	D string `csv:"3"`
}

func TestExplicitIndexOrder(t *testing.T) {
	recs := []shuffled{{A: "first", B: "second", D: "fourth"}}

	data, err := codec.Marshal(recs, codec.WithoutHeader())
	require.NoError(t, err)
	assert.Equal(t, "first,second,,fourth", string(data),
		"columns follow index keys, gaps stay empty")

	got, err := codec.Unmarshal[shuffled](data, codec.WithoutHeader())
	require.NoError(t, err)
	assert.Equal(t, recs, got)
}

func TestRegistry(t *testing.T) {
	c, err := codec.Compile[reading]()
	require.NoError(t, err)

	codec.Register(c)
	got, ok := codec.For[reading]()
	require.True(t, ok)
	assert.Same(t, c, got)
	assert.Same(t, c, codec.MustFor[reading]())

	type unregistered struct{ X int }
	_, ok = codec.For[unregistered]()
	assert.False(t, ok)
	assert.Panics(t, func() { codec.MustFor[unregistered]() })
}

func TestTryRegisterBatchContinues(t *testing.T) {
	var d diagnostic.Diagnostics

	assert.False(t, codec.TryRegister[int](&d), "non-struct types are skipped")
	assert.True(t, codec.TryRegister[reading](&d), "siblings keep compiling")

	require.Len(t, d.Errors, 1)
	assert.Equal(t, diagnostic.CodeNotAStruct, d.Errors[0].Code)

	_, ok := codec.For[reading]()
	assert.True(t, ok)
}

func TestCRLFRoundTrip(t *testing.T) {
	c, err := codec.Compile[reading](codec.WithoutHeader())
	require.NoError(t, err)

	var buf bytes.Buffer
	w := csvio.NewWriter(&buf)
	w.UseCRLF = true
	require.NoError(t, c.Write(w, sampleReadings))

	got, err := c.Read(csvio.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, sampleReadings, got)
}
