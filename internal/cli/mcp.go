package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/codegrep/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for syntax-aware code search",
	Long: `Start the Model Context Protocol (MCP) server that lets coding assistants
search the current project with codegrep.

The MCP server:
- Provides the codegrep_search tool
- Keeps analyzed files in memory and re-analyzes them when they change
- Communicates via stdio (standard MCP transport)

Example:
  codegrep mcp`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	projectPath, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	fmt.Fprintf(os.Stderr, "codegrep MCP Server\n")
	fmt.Fprintf(os.Stderr, "Project Root: %s\n\n", projectPath)

	server, err := mcp.NewServer(&mcp.ServerConfig{
		ProjectPath: projectPath,
		Config:      cfg,
		Version:     Version,
	})
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Serve (blocks until shutdown)
	if err := server.Serve(cmd.Context()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
