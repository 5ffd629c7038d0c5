package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ignite/creative-catalog/internal/datanorm"
	"github.com/ignite/creative-catalog/internal/traits"
)

func frameworkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "framework",
		Short: "Manage the creative trait framework",
	}
	cmd.AddCommand(frameworkBuildCmd())
	cmd.AddCommand(frameworkShowCmd())
	return cmd
}

func frameworkBuildCmd() *cobra.Command {
	var (
		output   string
		freetext []string
	)

	cmd := &cobra.Command{
		Use:   "build <traits.csv>",
		Short: "Derive the framework from a hand-tagged trait spreadsheet",
		Long: `Build the framework JSON from a CSV export of a hand-tagged trait sheet.
Every column becomes a category; its distinct values become the options.
Free-text columns (headline and CTA copy by default) accept any text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			table, err := datanorm.ReadCSV(string(data), datanorm.ReaderOptions{})
			if err != nil {
				return err
			}
			fw, err := traits.BuildFramework(table, freetext)
			if err != nil {
				return err
			}

			if output == "" {
				output = cfg.Traits.FrameworkPath
			}
			encoded, err := json.MarshalIndent(fw, "", "  ")
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(output), 0755); err != nil {
				return err
			}
			if err := os.WriteFile(output, append(encoded, '\n'), 0644); err != nil {
				return fmt.Errorf("write framework: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d categories to %s\n", len(fw.Categories), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output path (default: traits.framework_path from config)")
	cmd.Flags().StringSliceVar(&freetext, "freetext", traits.DefaultFreetextColumns, "columns that hold free text")
	return cmd
}

func frameworkShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the categories of the configured framework",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fw, err := traits.LoadFramework(cfg.Traits.FrameworkPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, c := range fw.Categories {
				if c.Kind == traits.KindFreetext {
					fmt.Fprintf(out, "%s (free text)\n", c.Name)
					continue
				}
				fmt.Fprintf(out, "%s: %d options\n", c.Name, len(c.Options))
			}
			return nil
		},
	}
}
