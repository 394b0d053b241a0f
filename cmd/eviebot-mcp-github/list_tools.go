package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/EvieHwang/eviebot-mcp-github/pkg/github"
	"github.com/EvieHwang/eviebot-mcp-github/pkg/toolsets"
	"github.com/EvieHwang/eviebot-mcp-github/pkg/translations"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var listToolsCmd = &cobra.Command{
	Use:   "list-tools",
	Short: "List available MCP tools grouped by toolset",
	Long:  `Display the tools the server would register with the current --toolsets and --read-only settings.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		enabledToolsets, err := toolsetsFromConfig()
		if err != nil {
			return err
		}
		format, err := cmd.Flags().GetString("format")
		if err != nil {
			return err
		}
		return listTools(cmd.OutOrStdout(), enabledToolsets, viper.GetBool("read-only"), format)
	},
}

func init() {
	listToolsCmd.Flags().String("format", "text", "Output format (text, json, yaml)")
	rootCmd.AddCommand(listToolsCmd)
}

type toolSummary struct {
	Name        string `json:"name" yaml:"name"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description" yaml:"description"`
	ReadOnly    bool   `json:"readOnly" yaml:"readOnly"`
}

type toolsetSummary struct {
	Name        string        `json:"name" yaml:"name"`
	Description string        `json:"description" yaml:"description"`
	Tools       []toolSummary `json:"tools" yaml:"tools"`
}

// collectToolsets never talks to GitHub, so it needs no token.
func collectToolsets(enabledToolsets []string, readOnly bool) ([]toolsetSummary, error) {
	conn := github.NewConnectionProvider(github.StaticToken(""))
	t := translations.NullTranslationHelper

	tsg, err := github.InitToolsets(enabledToolsets, readOnly, conn, t)
	if err != nil {
		return nil, fmt.Errorf("failed to enable toolsets: %w", err)
	}
	tsg.AddToolset(github.InitContextToolset(conn, t))

	var names []string
	for name, ts := range tsg.Toolsets {
		if ts.Enabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	summaries := make([]toolsetSummary, 0, len(names))
	for _, name := range names {
		summaries = append(summaries, summarizeToolset(tsg.Toolsets[name]))
	}
	return summaries, nil
}

func summarizeToolset(ts *toolsets.Toolset) toolsetSummary {
	summary := toolsetSummary{Name: ts.Name, Description: ts.Description, Tools: []toolSummary{}}
	for _, serverTool := range ts.GetActiveTools() {
		tool := serverTool.Tool
		readOnly := tool.Annotations.ReadOnlyHint != nil && *tool.Annotations.ReadOnlyHint
		summary.Tools = append(summary.Tools, toolSummary{
			Name:        tool.Name,
			Title:       tool.Annotations.Title,
			Description: tool.Description,
			ReadOnly:    readOnly,
		})
	}
	sort.Slice(summary.Tools, func(i, j int) bool {
		return summary.Tools[i].Name < summary.Tools[j].Name
	})
	return summary
}

func listTools(w io.Writer, enabledToolsets []string, readOnly bool, format string) error {
	summaries, err := collectToolsets(enabledToolsets, readOnly)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(summaries); err != nil {
			return err
		}
		return enc.Close()
	case "text":
		for _, ts := range summaries {
			_, _ = fmt.Fprintf(w, "Toolset: %s\n", ts.Name)
			_, _ = fmt.Fprintf(w, "Description: %s\n\n", ts.Description)
			if len(ts.Tools) == 0 {
				_, _ = fmt.Fprintln(w, "  No tools available")
			}
			for _, tool := range ts.Tools {
				mode := "write"
				if tool.ReadOnly {
					mode = "read"
				}
				_, _ = fmt.Fprintf(w, "- %s (%s): %s\n", tool.Name, mode, tool.Description)
			}
			_, _ = fmt.Fprintln(w)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q: must be one of text, json, yaml", format)
	}
}
