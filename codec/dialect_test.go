package codec_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"csvcast/codec"
	"csvcast/csvio"
)

func TestParseDialectDefaults(t *testing.T) {
	d, err := codec.ParseDialect(nil)
	require.NoError(t, err)
	assert.Equal(t, codec.DefaultDialect(), d)
}

func TestParseDialectOverrides(t *testing.T) {
	d, err := codec.ParseDialect([]byte(`
comma: ";"
quoting: all
crlf: true
header: false
comments: true
`))
	require.NoError(t, err)
	assert.Equal(t, ";", d.Comma)
	assert.Equal(t, "all", d.Quoting)
	assert.True(t, d.CRLF)
	assert.False(t, d.Header)
	assert.True(t, d.Comments)
}

func TestParseDialectRejectsBadValues(t *testing.T) {
	_, err := codec.ParseDialect([]byte(`comma: "ab"`))
	assert.Error(t, err, "multi-byte delimiter")

	_, err = codec.ParseDialect([]byte(`quoting: sometimes`))
	assert.Error(t, err, "unknown quoting mode")

	_, err = codec.ParseDialect([]byte("comma: [1,2"))
	assert.Error(t, err, "malformed yaml")
}

func TestLoadDialect(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dialect.yaml")
	require.NoError(t, os.WriteFile(path, []byte("comma: \"\\t\"\nheader: false\n"), 0o644))

	d, err := codec.LoadDialect(path)
	require.NoError(t, err)
	assert.Equal(t, "\t", d.Comma)

	_, err = codec.LoadDialect(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDialectWiresCodec(t *testing.T) {
	d, err := codec.ParseDialect([]byte("comma: \";\"\nheader: true\ncomments: true\n"))
	require.NoError(t, err)

	c, err := codec.Compile[person](d.Options()...)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, c.Write(d.NewWriter(&buf), samplePeople))
	assert.Equal(t,
		"name;age;city\nada;36;london\ngrace;85;arlington",
		buf.String())

	got, err := c.Read(d.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, samplePeople, got)
}

func TestDialectQuoteAll(t *testing.T) {
	d, err := codec.ParseDialect([]byte("quoting: all\nheader: false\n"))
	require.NoError(t, err)

	var buf bytes.Buffer
	w := d.NewWriter(&buf)
	assert.Equal(t, csvio.QuoteAll, w.Quoting)

	c, err := codec.Compile[person](d.Options()...)
	require.NoError(t, err)
	require.NoError(t, c.Write(w, samplePeople[:1]))
	assert.Equal(t, `"ada","36","london"`, buf.String())

	got, err := c.Read(d.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, samplePeople[:1], got)
}
