package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/jsonval/pkg/keyword"
	"github.com/aretw0/jsonval/pkg/value"
	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List the supported schema keywords",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		reg := keyword.DraftV4()
		for _, name := range reg.Names() {
			e, _ := reg.Lookup(name)
			kinds := "shape only"
			if e.Build != nil {
				var applies []string
				for k := value.KindNull; k <= value.KindObject; k++ {
					if e.Kinds.Has(k) {
						applies = append(applies, k.String())
					}
				}
				kinds = strings.Join(applies, ", ")
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", name, kinds)
		}
	},
}

func init() {
	rootCmd.AddCommand(keywordsCmd)
}
