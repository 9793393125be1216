package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/routegen-dev/routegen/internal/config"
	"github.com/routegen-dev/routegen/internal/errors"
	"github.com/routegen-dev/routegen/pkg/router"
)

func genCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gen <type>",
		Short: "Generate code",
		Long: `Generate code from the pages directory.

Types:
  routes   Generate the route table from the pages directory

Examples:
  routegen gen routes                 # Regenerate the route table
  routegen gen routes -o routes.go    # Custom output path`,
	}

	cmd.AddCommand(genRoutesCmd())

	return cmd
}

func genRoutesCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Generate the route table from route files",
		Long: `Scan the pages directory and generate the route table source file.

This command scans the pages directory for index.go, _middleware.go,
and _rewrite.go files and compiles them into a dispatch table keyed
by path segment count.

The output is deterministic. Running it multiple times produces
identical output unless the routes change.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenRoutes(output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default from routegen.json)")

	return cmd
}

func runGenRoutes(output string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	routesDir := cfg.RoutesPath()
	if output == "" {
		output = cfg.OutputPath()
	}

	if _, err := os.Stat(routesDir); err != nil {
		return errors.New("R002").
			WithDetail("Looked for " + routesDir).
			WithSuggestion("Create the directory or set \"routes\" in routegen.json")
	}

	info("Scanning %s...", routesDir)

	table, err := router.Compile(os.DirFS(routesDir), nil)
	if err != nil {
		return err
	}

	info("Found %d route modules across %d path lengths", len(table.Modules), len(table.Forest))

	code, err := router.NewGenerator(table, cfg.Package).Generate()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
		return err
	}
	if err := os.WriteFile(output, code, 0644); err != nil {
		return errors.New("R202").
			WithDetail("Could not write " + output).
			Wrap(err)
	}

	success("Generated %s", output)
	return nil
}
