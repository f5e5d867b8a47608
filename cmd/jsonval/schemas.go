package main

import (
	"fmt"
	"os"

	"github.com/aretw0/jsonval"
	"github.com/spf13/cobra"
)

// schemasCmd groups the schema registry commands.
var schemasCmd = &cobra.Command{
	Use:   "schemas",
	Short: "Manage the shared schema registry",
	Long: `Lists, stores, prints and removes schemas in the registry: Redis when
--redis-addr is set, otherwise the --schema-dir directory.`,
}

var schemasListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored schema URIs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := registryApp(cmd)
		if err != nil {
			return err
		}
		uris, err := a.store.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, uri := range uris {
			fmt.Fprintln(cmd.OutOrStdout(), uri)
		}
		return nil
	},
}

var schemasPutCmd = &cobra.Command{
	Use:   "put URI FILE",
	Short: "Store a JSON or YAML schema file under URI",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := registryApp(cmd)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(args[1])
		if err != nil {
			return err
		}
		doc, err := jsonval.ParseDocument(args[1], data)
		if err != nil {
			return err
		}
		if err := a.store.Put(cmd.Context(), args[0], doc); err != nil {
			return err
		}
		a.logger.Info("Schema stored", "uri", args[0])
		return nil
	},
}

var schemasGetCmd = &cobra.Command{
	Use:   "get URI",
	Short: "Print a stored schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := registryApp(cmd)
		if err != nil {
			return err
		}
		doc, err := a.store.Resolve(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), doc)
		return nil
	},
}

var schemasDeleteCmd = &cobra.Command{
	Use:   "delete URI",
	Short: "Remove a stored schema",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := registryApp(cmd)
		if err != nil {
			return err
		}
		return a.store.Delete(cmd.Context(), args[0])
	},
}

// registryApp refuses to run against the throwaway in-memory store.
func registryApp(cmd *cobra.Command) (*app, error) {
	a, err := newApp(cmd)
	if err != nil {
		return nil, err
	}
	if a.cfg.Redis.Addr == "" && a.cfg.SchemaDir == "" {
		return nil, fmt.Errorf("no schema registry configured: set --redis-addr or --schema-dir")
	}
	return a, nil
}

func init() {
	rootCmd.AddCommand(schemasCmd)
	schemasCmd.AddCommand(schemasListCmd, schemasPutCmd, schemasGetCmd, schemasDeleteCmd)
}
