package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/jsonval/internal/presentation/graph"
	"github.com/aretw0/jsonval/pkg/jsonptr"
	"github.com/aretw0/jsonval/pkg/report"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph --schema SCHEMA [INSTANCE]",
	Short: "Export the schema structure as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph TD) of the schema's fragments, the keywords
linking them and their references. With an instance, fragments that reported
errors are highlighted.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		schemaArg, _ := cmd.Flags().GetString("schema")
		v, schema, err := loadSchema(cmd, a, schemaArg)
		if err != nil {
			return err
		}

		var overlay *graph.Overlay
		if len(args) == 1 {
			instance, err := readInstance(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}
			opts := v.Options()
			opts.DeepCheck = true
			rep, err := v.ValidateWith(cmd.Context(), schema, instance, opts)
			var abort *report.AbortError
			if err != nil && !errors.As(err, &abort) {
				return err
			}
			overlay = &graph.Overlay{}
			prefix := schema.Locator() + "#"
			for _, m := range rep.Messages() {
				frag, ok := strings.CutPrefix(m.Schema, prefix)
				if !ok || m.Level < report.Error {
					continue
				}
				if ptr, err := jsonptr.Parse(frag); err == nil {
					overlay.Failed = append(overlay.Failed, ptr)
				}
			}
		}

		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(schema, overlay))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().StringP("schema", "s", "", "Schema file, or a URI served by the schema registry")
	_ = graphCmd.MarkFlagRequired("schema")
}
