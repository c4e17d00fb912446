// Package app provides the entry point for the Pyxis MCP server application.
package app

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/server"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/stacklok/pyxis-mcp-server/internal/tools"
	"github.com/stacklok/pyxis-mcp-server/internal/versions"
)

// NewRootCmd creates a new root command for the Pyxis MCP server.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "pyxis-mcp",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "MCP server for the Red Hat Pyxis container catalog",
		Long: `pyxis-mcp exposes the Red Hat Pyxis REST API as Model Context Protocol tools.

It searches container images, certification projects, operator bundles and
repositories, and reports image vulnerabilities. The API key is read from
PYXIS_API_KEY, either from the environment or from a .env file.`,
		Run: func(cmd *cobra.Command, _ []string) {
			// If no subcommand is provided, print help
			if err := cmd.Help(); err != nil {
				slog.Error("Error displaying help", "error", err)
			}
		},
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newToolsCmd())

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			format, err := cmd.Flags().GetString("format")
			if err != nil {
				return fmt.Errorf("failed to read format flag: %w", err)
			}

			if format == "json" {
				output, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to format version info as JSON: %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
				return err
			}

			_, err = fmt.Fprintf(cmd.OutOrStdout(), "pyxis-mcp %s (commit %s, built %s, %s, %s)\n",
				info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
			return err
		},
	}
	cmd.Flags().String("format", "", "Output format (json)")
	return cmd
}

func newToolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the MCP tools served",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return writeToolTable(cmd.OutOrStdout(), tools.New(nil).Tools())
		},
	}
}

// writeToolTable prints one row per tool. Descriptions are cut at their
// first line.
func writeToolTable(w io.Writer, serverTools []server.ServerTool) error {
	table := tablewriter.NewWriter(w)
	table.Header("Name", "Required", "Description")
	for _, st := range serverTools {
		description, _, _ := strings.Cut(st.Tool.Description, "\n")
		row := []string{st.Tool.Name, strings.Join(st.Tool.InputSchema.Required, ", "), description}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to add %s to table: %w", st.Tool.Name, err)
		}
	}
	return table.Render()
}
