package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	"github.com/charmbracelet/carousel/internal/telemetry"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect recorded failures",
	Long:  `Inspect the failures the carousel recovered from, with the state they happened in`,
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List reports",
	Long:  `List recorded reports, newest first`,
	Example: heredoc.Doc(`
		# List the ten most recent reports
		carousel reports list --limit 10

		# Dump every report as JSON
		carousel reports list --format json
	`),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		limit, _ := cmd.Flags().GetInt("limit")

		cfg, err := setup(cmd)
		if err != nil {
			return err
		}
		store, err := telemetry.Open(cmd.Context(), cfg.DataDir())
		if err != nil {
			return err
		}
		defer store.Close()

		reports, err := store.List(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return formatReports(cmd.OutOrStdout(), reports, format)
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd)

	reportsListCmd.Flags().StringP("format", "f", "text", "Output format (text, json, yaml, markdown)")
	reportsListCmd.Flags().IntP("limit", "n", 0, "Maximum number of reports, 0 for all")
}

func formatReports(w io.Writer, reports []telemetry.Report, format string) error {
	switch strings.ToLower(format) {
	case "json":
		data, err := json.MarshalIndent(reports, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Fprintln(w, string(data))
		return nil
	case "yaml":
		data, err := yaml.Marshal(reports)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Fprint(w, string(data))
		return nil
	case "markdown", "md":
		formatReportsMarkdown(w, reports)
		return nil
	case "text":
		formatReportsText(w, reports)
		return nil
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func formatReportsText(w io.Writer, reports []telemetry.Report) {
	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return
	}
	for _, r := range reports {
		fmt.Fprintf(w, "• %s %s: %s\n", formatTimestamp(r.Time()), r.Kind, r.Error)
	}
}

func formatReportsMarkdown(w io.Writer, reports []telemetry.Report) {
	fmt.Fprintln(w, "# Reports")
	fmt.Fprintln(w)
	if len(reports) == 0 {
		fmt.Fprintln(w, "No reports found.")
		return
	}
	for _, r := range reports {
		fmt.Fprintf(w, "## %s\n\n", r.Error)
		fmt.Fprintf(w, "- **ID**: %s\n", r.ID)
		fmt.Fprintf(w, "- **Kind**: %s\n", r.Kind)
		fmt.Fprintf(w, "- **Created**: %s\n", formatTimestamp(r.Time()))
		if len(r.Context) > 0 {
			data, err := json.MarshalIndent(r.Context, "", "  ")
			if err == nil {
				fmt.Fprintf(w, "\n```json\n%s\n```\n", data)
			}
		}
		fmt.Fprintln(w)
	}
}

func formatTimestamp(t time.Time) string {
	return t.Local().Format("2006-01-02 15:04:05")
}
