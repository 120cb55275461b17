package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/linaspasv/cms/internal/adapter/content"
	"github.com/linaspasv/cms/internal/nav"
	"github.com/linaspasv/cms/internal/nocache"
	"github.com/linaspasv/cms/internal/preferences"
)

type buildOptions struct {
	prefs       []string
	contentFile string
	site        string
	cpRoute     string
}

func newBuildCommand() *cobra.Command {
	opts := buildOptions{site: "http://localhost", cpRoute: "cp"}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Print the navigation tree for a set of preference files",
		Long: strings.TrimSpace(`
Each --prefs file is a preferences document (YAML or JSON). Give them
strongest first, the way user preferences override role preferences and
role preferences override the defaults:

  navctl build --prefs user.yaml --prefs editor.yaml --prefs default.yaml

Without any nav preferences the default tree is printed.
`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tree, err := buildTree(opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]any{"nav": tree})
		},
	}

	cmd.Flags().StringArrayVarP(&opts.prefs, "prefs", "p", nil, "Preferences file, strongest first (repeatable)")
	cmd.Flags().StringVar(&opts.contentFile, "content", "", "Content file supplying the collections")
	cmd.Flags().StringVar(&opts.site, "site", opts.site, "Site url used to make item urls absolute")
	cmd.Flags().StringVar(&opts.cpRoute, "cp", opts.cpRoute, "Control panel route")
	return cmd
}

func buildTree(opts buildOptions) (*nav.Tree, error) {
	catalog, err := content.Load(opts.contentFile)
	if err != nil {
		return nil, err
	}
	registry := nav.NewRegistry(nav.NewURLs(opts.site, opts.cpRoute, nil), catalog)

	layers := make([]*preferences.Bag, 0, len(opts.prefs))
	for _, filename := range opts.prefs {
		bag, err := readBag(filename)
		if err != nil {
			return nil, err
		}
		layers = append(layers, bag)
	}
	merged := preferences.NewMerger(preferences.NavKey).Merge(layers...)

	node, ok := merged.Get(preferences.NavKey)
	if !ok {
		return registry.BuildWithoutPreferences(), nil
	}
	doc := nav.DocumentFromNode(node)
	if doc.Empty() {
		return registry.BuildWithoutPreferences(), nil
	}
	return registry.Build(doc), nil
}

func readBag(filename string) (*preferences.Bag, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}
	bag, err := preferences.ParseBag(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return bag, nil
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <nav.yaml>",
		Short: "Check that a nav preferences document parses",
		Args:  exactArgs(1, "exactly one nav preferences file"),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read nav preferences: %w", err)
			}
			doc, err := nav.ParseDocument(data)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if doc.Empty() {
				_, err = fmt.Fprintln(out, "ok: document is empty")
				return err
			}
			entries := 0
			for _, s := range doc.Sections {
				entries += len(s.Items)
			}
			_, err = fmt.Fprintf(out, "ok: %d sections, %d top-level entries, reorder=%t\n", len(doc.Sections), entries, doc.Reorder)
			return err
		},
	}
}

func newKeyCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "key <url>",
		Short: "Print the store key of the nocache session for a page url",
		Args:  exactArgs(1, "exactly one url"),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), nocache.Key(args[0]))
			return err
		},
	}
}
