package codec

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"csvcast/csvio"
)

// Dialect is a loadable CSV profile: delimiter, quoting, comment
// marker, line endings, and header presence. Profiles let services
// keep wire settings in configuration instead of code.
type Dialect struct {
	Comma    string `yaml:"comma"`
	Quote    string `yaml:"quote"`
	Quoting  string `yaml:"quoting"` // minimal | nonnumeric | all
	Comment  string `yaml:"comment"`
	CRLF     bool   `yaml:"crlf"`
	Header   bool   `yaml:"header"`
	Comments bool   `yaml:"comments"`
}

// DefaultDialect returns the RFC 4180-ish defaults: comma separated,
// double-quoted when needed, '#' comments disabled, header on.
func DefaultDialect() Dialect {
	return Dialect{
		Comma:   ",",
		Quote:   `"`,
		Quoting: "minimal",
		Comment: "#",
		Header:  true,
	}
}

// LoadDialect reads a YAML dialect profile from path.
func LoadDialect(path string) (Dialect, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Dialect{}, fmt.Errorf("read dialect: %w", err)
	}
	return ParseDialect(data)
}

// ParseDialect parses a YAML dialect profile, applying defaults for
// absent keys and validating the rest.
func ParseDialect(data []byte) (Dialect, error) {
	d := DefaultDialect()
	if err := yaml.Unmarshal(data, &d); err != nil {
		return Dialect{}, fmt.Errorf("parse dialect: %w", err)
	}
	if err := d.validate(); err != nil {
		return Dialect{}, err
	}
	return d, nil
}

func (d Dialect) validate() error {
	for name, v := range map[string]string{
		"comma":   d.Comma,
		"quote":   d.Quote,
		"comment": d.Comment,
	} {
		if len(v) != 1 {
			return fmt.Errorf("dialect %s must be a single byte, got %q", name, v)
		}
	}
	switch d.Quoting {
	case "minimal", "nonnumeric", "all":
	default:
		return fmt.Errorf("dialect quoting must be minimal, nonnumeric, or all, got %q", d.Quoting)
	}
	return nil
}

// NewWriter builds a csvio.Writer over w configured per the dialect.
func (d Dialect) NewWriter(w io.Writer) *csvio.Writer {
	out := csvio.NewWriter(w)
	out.Comma = d.Comma[0]
	out.Quote = d.Quote[0]
	out.UseCRLF = d.CRLF
	out.Quoting = d.quoteMode()
	return out
}

// NewReader builds a csvio.Reader over data configured per the dialect.
func (d Dialect) NewReader(data []byte) *csvio.Reader {
	in := csvio.NewReader(data)
	in.Comma = d.Comma[0]
	in.Quote = d.Quote[0]
	in.Comment = d.Comment[0]
	return in
}

// Options returns the compile options implied by the dialect.
func (d Dialect) Options() []Option {
	opts := make([]Option, 0, 2)
	if d.Header {
		opts = append(opts, WithHeader())
	} else {
		opts = append(opts, WithoutHeader())
	}
	if d.Comments {
		opts = append(opts, WithComments())
	}
	return opts
}

func (d Dialect) quoteMode() csvio.QuoteMode {
	switch d.Quoting {
	case "all":
		return csvio.QuoteAll
	case "nonnumeric":
		return csvio.QuoteNonNumeric
	default:
		return csvio.QuoteMinimal
	}
}
