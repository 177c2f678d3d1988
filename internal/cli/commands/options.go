package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"productshot/internal/catalog"
	"productshot/internal/services"
	"productshot/types"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var optionsFormat string

var optionsCmd = &cobra.Command{
	Use:   "options",
	Short: "List categories, styles, angles and logo positions",
	Long: `List every option a generation request accepts.

Examples:
  productshot options
  productshot options --format yaml
  productshot options --format json`,
	Args: cobra.NoArgs,
	RunE: runOptions,
}

func init() {
	rootCmd.AddCommand(optionsCmd)

	optionsCmd.Flags().StringVar(&optionsFormat, "format", "", "Output format: text, yaml, json (default: text on a terminal, json otherwise)")
}

func runOptions(cmd *cobra.Command, args []string) error {
	out := outputOf(cmd)
	opts := services.Options()

	format := optionsFormat
	if format == "" {
		format = "json"
		if isTerminal(out) {
			format = "text"
		}
	}

	switch format {
	case "text":
		printOptions(out, opts)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(opts); err != nil {
			return fmt.Errorf("failed to generate YAML: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(opts)
	default:
		return fmt.Errorf("unsupported format: %s (use 'text', 'yaml' or 'json')", format)
	}
}

func printOptions(w io.Writer, opts types.OptionsResponse) {
	section := func(title string, options []catalog.Option) {
		fmt.Fprintf(w, "%s:\n", title)
		for _, o := range options {
			fmt.Fprintf(w, "  %-14s %s\n", o.Value, o.Label)
		}
	}
	section("Categories", opts.Categories)
	section("Styles", opts.Styles)
	section("Angles", opts.Angles)
	section("Logo positions", opts.LogoPositions)
	fmt.Fprintf(w, "Images per request: %d-%d\n", opts.Limits.MinImages, opts.Limits.MaxImages)
	fmt.Fprintf(w, "Description length: up to %d characters\n", opts.Limits.MaxDescriptionLength)
}
