package main

import (
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/tabgen"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// traceKeys are the tracer keys of all packages of this module.
var traceKeys = []string{
	"tabgen", "tabgen.graph", "tabgen.lex", "tabgen.lr", "tabgen.compact",
	"tabgen.blob", "tabgen.frontend", "tabgen.generator", "tabgen.scanner",
}

// options are the flags shared by all commands.
type options struct {
	settings tabgen.Settings
	starts   []string
	out      string // output directory, empty for the grammar's directory
	dot      bool   // write Graphviz files
	html     bool   // write HTML action tables
	write    bool   // write table files
}

// NewCLI creates the root command.
func NewCLI() *cobra.Command {
	opts := &options{write: true}
	var (
		trace       string
		size        int
		compression string
		noOptimise  bool
	)
	rootCmd := &cobra.Command{
		Use:   "tabgen",
		Short: "Scanner and parser table generator",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			setTraceLevel(tracing.TraceLevelFromString(trace))
			settings, err := tabgen.DecodeSettings(map[string]interface{}{
				"element-size": size,
				"compression":  compression,
				"no-optimise":  noOptimise,
			})
			if err != nil {
				return err
			}
			opts.settings = settings
			tracer().Infof("%v", settings)
			return nil
		},
	}
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&trace, "trace", "Error", "Trace level [Debug|Info|Error]")
	flags.IntVar(&size, "size", 2, "Element size of runtime tables in bytes [1|2|4]")
	flags.StringVar(&compression, "compression", "auto", "Table compression [none|simple|ctb|auto]")
	flags.BoolVar(&noOptimise, "no-optimise", false, "Do not optimise the parse graph")
	flags.StringSliceVar(&opts.starts, "start", nil, "Start symbols (default: first syntactic production)")
	flags.StringVarP(&opts.out, "out", "o", "", "Output directory")
	flags.BoolVar(&opts.dot, "dot", false, "Write automata in Graphviz format")
	flags.BoolVar(&opts.html, "html", false, "Write parser action tables in HTML format")

	cobra.EnableCommandSorting = false

	generateCmd := func(use, short string, scanner, parser bool) *cobra.Command {
		return &cobra.Command{
			Use:   use + " GRAMMAR...",
			Short: short,
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				results, err := generate(cmd.Context(), opts, args, scanner, parser)
				report(results)
				if err != nil {
					pterm.Error.Println(err.Error())
				}
				return err
			},
		}
	}
	replCmd := &cobra.Command{
		Use:   "repl GRAMMAR",
		Short: "Parse input lines interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runREPL(opts, args[0])
		},
	}
	rootCmd.AddCommand(
		generateCmd("scanner", "Generate scanner tables", true, false),
		generateCmd("parser", "Generate parser tables", false, true),
		generateCmd("all", "Generate scanner and parser tables", true, true),
		replCmd,
	)
	return rootCmd
}

func setTraceLevel(level tracing.TraceLevel) {
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
