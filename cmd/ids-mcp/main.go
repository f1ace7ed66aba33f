// ids-mcp: an MCP server for authoring buildingSMART IDS documents.
//
// The server speaks MCP over stdio and is meant to be launched by an AI
// tool's MCP configuration:
//
//	{
//	  "mcpServers": {
//	    "ids": {
//	      "command": "ids-mcp",
//	      "args": ["serve"]
//	    }
//	  }
//	}
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/config"
	idsserver "github.com/jonatanjacobsson/ifc-ids-mcp/internal/server"
)

var rootCmd = &cobra.Command{
	Use:   "ids-mcp",
	Short: "MCP server for authoring buildingSMART IDS documents",
	Long: `ids-mcp exposes Information Delivery Specification (IDS 1.0) authoring
as MCP tools: create or load a document, add specifications and facets,
attach value restrictions, validate, and export schema-valid XML.

Configuration is read from IDS_* environment variables; see the README.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ids-mcp v%s\n", idsserver.Version)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

func serve() error {
	cfg := config.FromEnv()

	s, cleanup, err := idsserver.New(cfg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	defer cleanup()

	// run cleanup on interrupt too; ServeStdio returns when stdin closes
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cleanup()
		os.Exit(0)
	}()

	return server.ServeStdio(s)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
