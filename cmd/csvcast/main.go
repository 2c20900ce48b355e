// Command csvcast rewrites a CSV file from one dialect to another:
// delimiter and quote characters, quoting mode, line endings, and
// optional comment/blank-line stripping, all driven by a YAML config.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"csvcast/csvio"
)

func main() {
	configPath := flag.String("config", "csvcast.yaml", "path to the rewrite config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "csvcast:", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		fmt.Fprintln(os.Stderr, "csvcast:", err)
		os.Exit(1)
	}
}

func run(cfg *rewriteConfig) error {
	data, err := os.ReadFile(cfg.Input)
	if err != nil {
		return err
	}

	var dst io.Writer = os.Stdout
	if cfg.Output != "" {
		f, err := os.Create(cfg.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		dst = f
	}

	r := csvio.NewReader(data)
	r.Comma = cfg.In.Comma[0]
	r.Quote = cfg.In.Quote[0]
	r.Comment = cfg.In.Comment[0]

	w := csvio.NewWriter(dst)
	w.Comma = cfg.Out.Comma[0]
	w.Quote = cfg.Out.Quote[0]
	w.UseCRLF = cfg.Out.CRLF
	switch cfg.Out.Quoting {
	case "all":
		w.Quoting = csvio.QuoteAll
	case "nonnumeric":
		w.Quoting = csvio.QuoteNonNumeric
	case "minimal":
		w.Quoting = csvio.QuoteMinimal
	default:
		return fmt.Errorf("config: out.quoting must be minimal, nonnumeric, or all, got %q", cfg.Out.Quoting)
	}

	if err := rewrite(r, w, cfg); err != nil {
		return err
	}
	return w.Flush()
}

// rewrite streams rows from r to w cell by cell, re-quoting each cell
// for the output dialect.
func rewrite(r *csvio.Reader, w *csvio.Writer, cfg *rewriteConfig) error {
	wrote := false
	for r.Remaining() > 0 {
		if cfg.DropComments && r.TrySkipComment() {
			continue
		}
		if cfg.DropBlank && r.TryReadEndOfLine() {
			continue
		}

		if wrote {
			if err := w.WriteEndOfLine(); err != nil {
				return err
			}
		}
		wrote = true

		for cell := 0; ; cell++ {
			b, err := r.ReadUTF8Bytes()
			if err != nil {
				return err
			}
			if cell > 0 {
				if err := w.WriteSeparator(); err != nil {
					return err
				}
			}
			if err := w.WriteString(string(b)); err != nil {
				return err
			}
			if r.TryReadEndOfLine() {
				break
			}
			if !r.TryReadSeparator() {
				break
			}
		}
	}
	return nil
}
