package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/blob"
	"github.com/npillmayer/tabgen/frontend"
	"github.com/npillmayer/tabgen/generator"
	"github.com/npillmayer/tabgen/graph"
	"github.com/npillmayer/tabgen/lex"
	"github.com/npillmayer/tabgen/lex/charset"
	"github.com/npillmayer/tabgen/lr"
	"github.com/olekukonko/tablewriter"
	"github.com/pterm/pterm"
	"golang.org/x/sync/errgroup"
)

// result collects everything generated for one grammar file.
type result struct {
	file    string
	grammar *frontend.Result
	scanner *generator.ScannerTables
	parser  *generator.ParserTables
	diag    tabgen.Collector
	outputs []string
}

// generate processes grammar files concurrently. Results are returned in the
// order of files, even if generation failed for some of them.
func generate(ctx context.Context, opts *options, files []string, scanner, parser bool) ([]*result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]*result, len(files))
	g, ctx := errgroup.WithContext(ctx)
	for i, file := range files {
		file := file
		results[i] = &result{file: file}
		r := results[i]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.generate(opts, scanner, parser); err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			return nil
		})
	}
	return results, g.Wait()
}

func (r *result) generate(opts *options, scanner, parser bool) error {
	src, err := os.Open(r.file)
	if err != nil {
		return err
	}
	defer src.Close()
	if r.grammar, err = frontend.Load(filepath.Base(r.file), src, &r.diag, opts.starts...); err != nil {
		return err
	}
	if scanner {
		if r.scanner, err = generator.GenerateScanner(r.grammar.NFA, opts.settings, &r.diag); err != nil {
			return err
		}
		if err = r.writeBlob(opts, ".scanner.bin", r.scanner.Blob); err != nil {
			return err
		}
		if opts.dot {
			err = r.writeFile(opts, ".scanner.dot", func(f *os.File) error {
				return graph.ToGraphViz(f, r.scanner.DFA.Graph(),
					func(_ graph.State, d lex.NodeData) string { return d.String() },
					func(set charset.Set) string { return set.String() })
			})
			if err != nil {
				return err
			}
		}
	}
	if parser {
		if r.grammar.Grammar == nil {
			return fmt.Errorf("grammar has no syntactic productions")
		}
		if r.parser, err = generator.GenerateParser(r.grammar.Grammar, opts.settings, &r.diag); err != nil {
			return err
		}
		if err = r.writeBlob(opts, ".parser.bin", r.parser.Blob); err != nil {
			return err
		}
		at := r.parser.Action
		if opts.dot {
			err = r.writeFile(opts, ".parser.dot", func(f *os.File) error {
				return at.ParseGraph().ToGraphViz(f)
			})
			if err != nil {
				return err
			}
		}
		if opts.html {
			err = r.writeFile(opts, ".parser.html", func(f *os.File) error {
				return lr.ActionTableAsHTML(at, f)
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// outputPath returns the path of an output file for the grammar file.
func (r *result) outputPath(opts *options, suffix string) string {
	dir := opts.out
	if dir == "" {
		dir = filepath.Dir(r.file)
	}
	base := strings.TrimSuffix(filepath.Base(r.file), filepath.Ext(r.file))
	return filepath.Join(dir, base+suffix)
}

func (r *result) writeFile(opts *options, suffix string, write func(*os.File) error) error {
	if !opts.write {
		return nil
	}
	path := r.outputPath(opts, suffix)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = write(f); err != nil {
		f.Close()
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	r.outputs = append(r.outputs, path)
	tracer().Infof("wrote %s", path)
	return nil
}

// writeBlob writes a table file: method and element size, then the blob.
func (r *result) writeBlob(opts *options, suffix string, b *blob.CompressedBlob) error {
	data, err := b.Bytes()
	if err != nil {
		return err
	}
	return r.writeFile(opts, suffix, func(f *os.File) error {
		_, err := f.Write(append([]byte{byte(b.Method()), byte(b.ElementSize())}, data...))
		return err
	})
}

// readBlob reads a table file as written by writeBlob.
func readBlob(path string) (*blob.CompressedBlob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if len(data) < 2 {
		return nil, fmt.Errorf("%s: header missing: %w", path, blob.ErrCorrupt)
	}
	size, err := blob.ParseElementSize(int(data[1]))
	if err != nil {
		return nil, err
	}
	return blob.FromBytes(blob.Method(data[0]), size, data[2:])
}

// report prints diagnostics and a summary table.
func report(results []*result) {
	var rows [][]string
	for _, r := range results {
		for _, d := range r.diag.Entries {
			msg := fmt.Sprintf("%s:%v: %s", r.file, d.Location, d.Message)
			if d.Severity == tabgen.Error {
				pterm.Error.Println(msg)
			} else {
				pterm.Warning.Println(msg)
			}
		}
		if r.scanner != nil {
			rows = append(rows, summary(r.file, "scanner", r.scanner.StateCount(), r.scanner.ClassCount(), r.scanner.Blob))
		}
		if r.parser != nil {
			rows = append(rows, summary(r.file, "parser", r.parser.RowCount(), r.parser.ColumnCount(), r.parser.Blob))
		}
	}
	if len(rows) == 0 {
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"GRAMMAR", "TABLE", "STATES", "COLUMNS", "METHOD", "SIZE", "ELEMENTS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(rows)
	table.Render()
}

func summary(file, kind string, states, columns int, b *blob.CompressedBlob) []string {
	return []string{
		file, kind, strconv.Itoa(states), strconv.Itoa(columns), b.Method().String(),
		b.ElementSize().String(), fmt.Sprintf("%d → %d", b.Len(), b.EncodedLen()),
	}
}
