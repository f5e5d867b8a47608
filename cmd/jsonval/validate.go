package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/aretw0/jsonval"
	"github.com/aretw0/jsonval/internal/presentation/tui"
	"github.com/aretw0/jsonval/pkg/adapters/file"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/aretw0/jsonval/pkg/tree"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var validateCmd = &cobra.Command{
	Use:   "validate --schema SCHEMA [INSTANCE...]",
	Short: "Validate JSON or YAML instances against a schema",
	Long: `Validates each instance file (or standard input when none, or "-", is given)
against the schema and prints the report.

References relative to the schema file are loaded from its directory.

Exit status is 0 when every instance is valid, 1 when at least one is invalid
and 2 when validation could not complete.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringP("schema", "s", "", "Schema file, or a URI served by the schema registry")
	validateCmd.Flags().Bool("deep", false, "Keep validating below nodes that already failed")
	validateCmd.Flags().String("report-level", "", "Lowest level recorded in the report")
	validateCmd.Flags().String("threshold", "", "Lowest level that aborts validation")
	validateCmd.Flags().Int("max-depth", 0, "Maximum schema nesting during validation (0 is unbounded)")
	validateCmd.Flags().StringP("format", "f", "auto", "Output format: auto, text, json or markdown")
	_ = validateCmd.MarkFlagRequired("schema")
}

func runValidate(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	opts, err := callOptions(cmd, a.cfg.Validation)
	if err != nil {
		return &exitError{code: 2, err: err}
	}
	format, _ := cmd.Flags().GetString("format")
	if format == "auto" {
		format = "text"
		if f, ok := cmd.OutOrStdout().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			format = "markdown"
		}
	}

	schemaArg, _ := cmd.Flags().GetString("schema")
	v, schema, err := loadSchema(cmd, a, schemaArg)
	if err != nil {
		return &exitError{code: 2, err: err}
	}

	if len(args) == 0 {
		args = []string{"-"}
	}
	code := 0
	for _, name := range args {
		instance, err := readInstance(cmd.InOrStdin(), name)
		if err != nil {
			return &exitError{code: 2, err: err}
		}

		rep, err := v.ValidateWith(cmd.Context(), schema, instance, opts)
		var abort *report.AbortError
		switch {
		case errors.As(err, &abort):
			a.logger.Warn("validation aborted", "instance", name, "error", err)
			code = 2
		case err != nil:
			return &exitError{code: 2, err: err}
		case !rep.IsSuccess() && code == 0:
			code = 1
		}

		if err := printReport(cmd.OutOrStdout(), format, name, rep); err != nil {
			return &exitError{code: 2, err: err}
		}
	}
	if code != 0 {
		return &exitError{code: code}
	}
	return nil
}

// callOptions applies the validate flags over the configured call options.
func callOptions(cmd *cobra.Command, opts jsonval.CallOptions) (jsonval.CallOptions, error) {
	if cmd.Flags().Changed("deep") {
		opts.DeepCheck, _ = cmd.Flags().GetBool("deep")
	}
	if cmd.Flags().Changed("max-depth") {
		opts.MaxDepth, _ = cmd.Flags().GetInt("max-depth")
	}
	for flag, field := range map[string]*report.Level{
		"report-level": &opts.LogLevel,
		"threshold":    &opts.ExceptionThreshold,
	} {
		if !cmd.Flags().Changed(flag) {
			continue
		}
		name, _ := cmd.Flags().GetString(flag)
		l, err := report.ParseLevel(name)
		if err != nil {
			return opts, fmt.Errorf("--%s: %w", flag, err)
		}
		*field = l
	}
	return opts, nil
}

// loadSchema reads a schema file, or resolves a URI through the registry
// when no such file exists.
func loadSchema(cmd *cobra.Command, a *app, arg string) (*jsonval.Validator, tree.Schema, error) {
	data, err := os.ReadFile(arg)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, tree.Schema{}, err
		}
		v := a.validator()
		schema, rerr := v.ResolveSchema(cmd.Context(), arg)
		if rerr != nil {
			return nil, tree.Schema{}, fmt.Errorf("schema %s: %w", arg, rerr)
		}
		return v, schema, nil
	}

	siblings, err := file.New(filepath.Dir(arg))
	if err != nil {
		return nil, tree.Schema{}, err
	}
	v := a.validator(siblings)
	schema, err := v.LoadSchema(file.URI(arg), data)
	return v, schema, err
}

func readInstance(stdin io.Reader, name string) (value.Value, error) {
	var (
		data []byte
		err  error
	)
	if name == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(name)
	}
	if err != nil {
		return value.Value{}, err
	}
	doc, err := jsonval.ParseDocument(name, data)
	if err != nil {
		return value.Value{}, fmt.Errorf("instance %s: %w", name, err)
	}
	return doc, nil
}

func printReport(w io.Writer, format, name string, rep *report.Report) error {
	switch format {
	case "json":
		data, err := rep.MarshalJSON()
		if err != nil {
			return err
		}
		_, err = fmt.Fprintf(w, "%s\n", data)
		return err
	case "markdown":
		width := 0
		if f, ok := w.(*os.File); ok {
			width, _, _ = term.GetSize(int(f.Fd()))
		}
		out, err := tui.RenderReport(name, rep, width)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case "text":
		if _, err := fmt.Fprintf(w, "%s\n", name); err != nil {
			return err
		}
		return tui.WriteText(w, rep)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}
