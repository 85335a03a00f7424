package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tailscale/hujson"
	"gopkg.in/yaml.v3"

	"asdb_search/categories"
	"asdb_search/config"
	"asdb_search/query"
	"asdb_search/search"
)

// app holds the state shared by all subcommands.
type app struct {
	configPath string
	verbose    bool
	cfg        *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "asdbq",
		Short: "Build, convert and check antiSMASH database search queries",
		Long: `asdbq works with the query language of the antiSMASH database:
it converts between query strings and their JSON form, builds search
requests and checks queries against a category vocabulary.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
	}
	rootCmd.PersistentFlags().StringVarP(&a.configPath, "config", "c", config.DefaultPath, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "log progress to stderr")

	rootCmd.AddCommand(
		a.renderCmd(),
		a.parseCmd(),
		a.requestCmd(),
		a.modulesCmd(),
		a.checkCmd(),
		a.syntaxCmd(),
		a.exampleCmd(),
	)
	return rootCmd
}

func (a *app) logf(format string, args ...any) {
	if a.verbose {
		log.Printf(format, args...)
	}
}

// loadConfig loads the configuration file. A missing default file falls back
// to the built-in defaults; a missing file named with --config is an error.
func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(a.configPath)
	if err == nil {
		a.logf("Loaded configuration from %s", a.configPath)
		a.cfg = cfg
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		a.logf("No configuration at %s, using defaults", a.configPath)
		a.cfg = config.Default()
		return nil
	}
	return fmt.Errorf("failed to load configuration: %w", err)
}

func (a *app) renderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render [file]",
		Short: "Render a query tree from its JSON form to a query string",
		Long: `Reads the JSON form of a query tree from a file, or from stdin when no
file or "-" is given, and prints it in the query language.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			term, err := query.BuildTerm(data)
			if err != nil {
				return fmt.Errorf("failed to build query: %w", err)
			}
			a.logf("Built %s tree", term.Type())
			fmt.Fprintln(cmd.OutOrStdout(), term.Render())
			return nil
		},
	}
}

func (a *app) parseCmd() *cobra.Command {
	var (
		output   string
		envelope bool
	)
	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Convert a query string to its JSON form",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := strings.Join(args, " ")
			result := query.Convert(input)
			if envelope {
				return writeOutput(cmd.OutOrStdout(), output, result)
			}
			if !result.Valid {
				return describeParseError(result.Error)
			}
			return writeOutput(cmd.OutOrStdout(), output, result.Terms)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "json", "output format (json or yaml)")
	cmd.Flags().BoolVar(&envelope, "result", false, "print the full conversion result, including errors")
	return cmd
}

func (a *app) requestCmd() *cobra.Command {
	var (
		offset     int
		paginate   int
		returnType string
	)
	cmd := &cobra.Command{
		Use:   "request <query>",
		Short: "Build the search request body for a query string",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s := a.cfg.NewSession()
			if err := s.LoadString(strings.Join(args, " ")); err != nil {
				return err
			}
			s.Offset = offset
			if paginate != 0 {
				s.Paginate = paginate
			}
			if returnType != "" {
				s.ReturnType = returnType
			}

			req, err := s.Begin()
			if err != nil {
				return fmt.Errorf("invalid request: %w", err)
			}
			a.logf("Built %s request at offset %d", req.Query.Search, req.Offset)
			return writeJSON(cmd.OutOrStdout(), req)
		},
	}
	cmd.Flags().IntVar(&offset, "offset", 0, "index of the first result")
	cmd.Flags().IntVar(&paginate, "paginate", 0, "results per page (default from configuration)")
	cmd.Flags().StringVar(&returnType, "return-type", "",
		fmt.Sprintf("result format: %s (default from configuration)", strings.Join(search.ReturnTypes, ", ")))
	return cmd
}

func (a *app) modulesCmd() *cobra.Command {
	var (
		removals    []string
		showOptions bool
	)
	cmd := &cobra.Command{
		Use:   "modules <pattern>",
		Short: "Explain a compact module query such as S=Condensation|L=AMP-binding+?",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := query.NewModuleTerm(args[0])
			for _, removal := range removals {
				if err := removeDomain(m, removal); err != nil {
					return err
				}
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i := range m.Steps {
				step := &m.Steps[i]
				fmt.Fprintf(w, "%c\t%s\t%s\n", query.ModulePrefixes[i], step.Title, step.String())
				if showOptions {
					fmt.Fprintf(w, "\t\t(%s)\n", strings.Join(step.Options, " "))
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), m.String())
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&removals, "remove", nil, "remove a domain, given as STEP:ALTERNATIVE:DOMAIN (e.g. L:0:1)")
	cmd.Flags().BoolVar(&showOptions, "options", false, "list the known domains of each step")
	return cmd
}

// removeDomain applies a STEP:ALTERNATIVE:DOMAIN removal to m.
func removeDomain(m *query.ModuleTerm, removal string) error {
	parts := strings.Split(removal, ":")
	if len(parts) != 3 || len(parts[0]) != 1 {
		return fmt.Errorf("invalid removal %q, expected STEP:ALTERNATIVE:DOMAIN", removal)
	}
	step := m.Step(parts[0][0])
	if step == nil {
		return fmt.Errorf("invalid removal %q: unknown step %s", removal, parts[0])
	}
	alt, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid removal %q: %w", removal, err)
	}
	domain, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("invalid removal %q: %w", removal, err)
	}
	step.RemoveDomain(alt, domain)
	return nil
}

func (a *app) checkCmd() *cobra.Command {
	var categoriesFile string
	cmd := &cobra.Command{
		Use:   "check <query>",
		Short: "Check a query string against the category vocabulary",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if categoriesFile == "" {
				categoriesFile = a.cfg.CategoriesFile
			}
			if categoriesFile == "" {
				return errors.New("no category vocabulary configured, use --categories")
			}
			vocabulary, err := categories.Load(categoriesFile)
			if err != nil {
				return err
			}
			if !vocabulary.HasData() {
				log.Printf("Warning: category vocabulary %s has no options or no groups", categoriesFile)
			}

			term, err := query.Parse(strings.Join(args, " "))
			if err != nil {
				var perr *query.ParseError
				if errors.As(err, &perr) {
					return describeParseError(perr)
				}
				return err
			}
			term.Leaves(func(e *query.Expr) {
				if e.Category != "" {
					a.logf("%s: %s", e.Category, vocabulary.Type(e.Category))
				}
			})
			if err := vocabulary.Validate(term); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
	cmd.Flags().StringVar(&categoriesFile, "categories", "", "category vocabulary file (default from configuration)")
	return cmd
}

func (a *app) syntaxCmd() *cobra.Command {
	var asHTML bool
	cmd := &cobra.Command{
		Use:   "syntax",
		Short: "Show the query language reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			md, err := readDocsFile(syntaxDoc)
			if err != nil {
				return fmt.Errorf("documentation not found: %w", err)
			}
			if asHTML {
				md = renderMarkdown(md)
			}
			_, err = cmd.OutOrStdout().Write(md)
			return err
		},
	}
	cmd.Flags().BoolVar(&asHTML, "html", false, "render the reference as HTML")
	return cmd
}

func (a *app) exampleCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "example",
		Short: "Print an example query",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if output == "" {
				fmt.Fprintln(cmd.OutOrStdout(), search.Example().Render())
				return nil
			}
			return writeOutput(cmd.OutOrStdout(), output, search.Example())
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "print the JSON form instead (json or yaml)")
	return cmd
}

// readInput reads the named file, or stdin for no name or "-". Comments and
// trailing commas are stripped.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = os.ReadFile(args[0])
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	data, err = hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse input: %w", err)
	}
	return data, nil
}

func describeParseError(err *query.ParseError) error {
	return fmt.Errorf("%s at position %d", err.Message, err.Position)
}

func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		return writeJSON(w, v)
	case "yaml":
		return writeYAML(w, v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeJSON writes v as formatted JSON.
func writeJSON(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	data, err = hujson.Format(data)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeYAML writes the JSON form of v as block-style YAML, keeping key order.
func writeYAML(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return err
	}
	blockStyle(&node)

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&node); err != nil {
		return err
	}
	return enc.Close()
}

func blockStyle(n *yaml.Node) {
	n.Style &^= yaml.FlowStyle
	for _, child := range n.Content {
		blockStyle(child)
	}
}
