package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/tabgen"
	"github.com/npillmayer/tabgen/lex/scanner"
	"github.com/npillmayer/tabgen/lr"
	"github.com/npillmayer/tabgen/lr/lalr"
	"github.com/olekukonko/tablewriter"
	"github.com/pterm/pterm"
)

// runREPL generates tables for a grammar and starts interactive mode, where
// users enter input lines to be parsed with the generated tables. A line
// starting with ":tokens" is scanned only.
func runREPL(opts *options, file string) error {
	replOpts := *opts
	replOpts.write = false
	r := &result{file: file}
	err := r.generate(&replOpts, true, true)
	report([]*result{r})
	if err != nil {
		pterm.Error.Println(err.Error())
		return err
	}
	rl, err := readline.New("tabgen> ")
	if err != nil {
		tracer().Errorf("%v", err)
		return err
	}
	defer rl.Close()
	intp := &interpreter{result: r}
	pterm.Info.Println("Welcome to tabgen; quit with <ctrl>D")
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		if input, ok := strings.CutPrefix(line, ":tokens"); ok {
			intp.printTokens(strings.TrimSpace(input))
			continue
		}
		tree, err := intp.parse(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		root := pterm.NewTreeFromLeveledList(tree.leveled(line))
		pterm.DefaultTree.WithRoot(root).Render()
	}
	fmt.Println("Good bye!")
	return nil
}

// interpreter parses input with generated tables.
type interpreter struct {
	result *result
}

func (intp *interpreter) tokenizer(input string) (*scanner.TableTokenizer, error) {
	tok, err := scanner.NewTableTokenizer(intp.result.scanner, 0, input,
		scanner.Skip(intp.result.grammar.SkipRules()...))
	if err != nil {
		return nil, err
	}
	tok.SetErrorHandler(func(e error) { pterm.Warning.Println(e.Error()) })
	return tok, nil
}

// column maps token rules to parser columns.
func (intp *interpreter) column(tt tabgen.TokType) (int, bool) {
	at := intp.result.parser.Action
	if tt == scanner.EOF {
		return at.Column(lr.EOF)
	}
	tokens := intp.result.grammar.Tokens
	if int(tt) < 0 || int(tt) >= len(tokens) {
		return 0, false
	}
	return at.Column(tokens[tt].Terminal)
}

func (intp *interpreter) parse(input string) (*parseTree, error) {
	tok, err := intp.tokenizer(input)
	if err != nil {
		return nil, err
	}
	tree := &parseTree{grammar: intp.result.grammar.Grammar}
	p := lalr.NewParser(intp.result.parser, intp.column)
	p.Reduced = tree.reduced
	accepted, err := p.Parse(intp.result.parser.StartRow(0), tok)
	if err != nil {
		return nil, err
	}
	if !accepted {
		return nil, fmt.Errorf("input not accepted")
	}
	return tree, nil
}

func (intp *interpreter) printTokens(input string) {
	tok, err := intp.tokenizer(input)
	if err != nil {
		pterm.Error.Println(err.Error())
		return
	}
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"RULE", "TOKEN", "LEXEME", "SPAN"})
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	for {
		t := tok.NextToken()
		if t.TokType() == scanner.EOF {
			break
		}
		name := intp.result.grammar.Tokens[t.TokType()].Name
		table.Append([]string{strconv.Itoa(int(t.TokType())), name, strconv.Quote(t.Lexeme()), t.Span().String()})
	}
	table.Render()
}

// --- Parse trees -----------------------------------------------------------

type node struct {
	production *lr.Production
	span       tabgen.Span
	children   []*node
}

// parseTree collects reductions into a tree. Reductions arrive in post-order;
// the children of a reduction are the preceding nodes within its span. Unit
// reductions inlined by the optimiser do not show up.
type parseTree struct {
	grammar *lr.Grammar
	stack   []*node
}

func (pt *parseTree) reduced(p int, span tabgen.Span) {
	n := &node{production: pt.grammar.Production(p), span: span}
	i := len(pt.stack)
	for i > 0 && within(pt.stack[i-1].span, span) {
		i--
	}
	n.children = append(n.children, pt.stack[i:]...)
	pt.stack = append(pt.stack[:i], n)
	tracer().Debugf("reduce %v over %v", n.production, span)
}

func within(inner, outer tabgen.Span) bool {
	return inner.From() >= outer.From() && inner.To() <= outer.To()
}

// leveled flattens the tree for display.
func (pt *parseTree) leveled(input string) pterm.LeveledList {
	var ll pterm.LeveledList
	var walk func(*node, int)
	walk = func(n *node, level int) {
		ll = append(ll, pterm.LeveledListItem{
			Level: level,
			Text:  fmt.Sprintf("%v  %q", n.production.Target(), input[n.span.From():n.span.To()]),
		})
		for _, c := range n.children {
			walk(c, level+1)
		}
	}
	for _, n := range pt.stack {
		walk(n, 0)
	}
	return ll
}
