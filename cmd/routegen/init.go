package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/routegen-dev/routegen/internal/config"
	"github.com/routegen-dev/routegen/internal/errors"
)

func initCmd() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a routegen project",
		Long: `Create routegen.json and a starter pages directory.

The starter tree contains a root page and an about page:

  app/pages/index.go
  app/pages/about/index.go

Examples:
  routegen init
  routegen init --name myapp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Project name (default: directory name)")

	return cmd
}

func runInit(name string) error {
	wd, err := os.Getwd()
	if err != nil {
		return err
	}

	if config.Exists(wd) {
		return errors.Newf(errors.CategoryCLI, "routegen.json already exists in %s", wd).
			WithSuggestion("Remove it first to reinitialize")
	}

	if name == "" {
		name = filepath.Base(wd)
	}

	cfg := config.New()
	cfg.Name = name
	if err := cfg.SaveTo(filepath.Join(wd, config.ConfigFileName)); err != nil {
		return err
	}
	success("Created %s", config.ConfigFileName)

	pages := cfg.RoutesPath()
	starter := map[string]string{
		filepath.Join(pages, "index.go"):          starterRootPage,
		filepath.Join(pages, "about", "index.go"): starterAboutPage,
	}
	for path, content := range starter {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
		success("Created %s", path)
	}

	info("")
	info("Run 'routegen gen routes' to generate the route table")
	info("Run 'routegen dev' to start the development server")

	return nil
}

const starterRootPage = `package pages

// Page handles the root route.
func Page() string {
	return "home"
}
`

const starterAboutPage = `package about

// Page handles /about.
func Page() string {
	return "about"
}
`
