// crewchat: coordination MCP server for AI agent teams.
//
// Gives multiple independent AI agent processes a shared place to
// exchange messages, assign and track tasks, and collaborate in topic
// groups, with all state kept as JSON documents in the user's home
// directory.
//
// Usage:
//
//	crewchat serve    # Start MCP server (stdio transport)
//	crewchat update   # Update to the latest version
package main

import (
	"fmt"
	"os"

	crewserver "github.com/crewchat/crewchat/internal/server"
	"github.com/crewchat/crewchat/internal/updater"
	"github.com/mark3labs/mcp-go/server"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := run(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	case "update":
		runUpdate()
	case "--help", "-h", "help":
		printUsage()
		os.Exit(0)
	case "--version", "-v", "version":
		fmt.Printf("crewchat v%s\n", crewserver.Version)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func run() error {
	s := crewserver.New()

	// Background version check — prints to stderr so it doesn't
	// interfere with MCP's stdio transport on stdout.
	go checkForUpdates()

	return server.ServeStdio(s)
}

// checkForUpdates runs a non-blocking version check and prints a notice
// to stderr if an update is available. Best-effort — network failures
// are silently ignored.
func checkForUpdates() {
	result := updater.CheckVersion(crewserver.Version)
	if result.UpdateAvailable {
		fmt.Fprintf(os.Stderr,
			"\n  📦 Update available: v%s → v%s\n"+
				"     Run: crewchat update\n"+
				"     Release: %s\n\n",
			result.CurrentVersion, result.LatestVersion, result.ReleaseURL,
		)
	}
}

// runUpdate performs a self-update to the latest version.
func runUpdate() {
	fmt.Fprintf(os.Stderr, "🔍 Checking for updates...\n")

	result := updater.CheckVersion(crewserver.Version)
	if !result.UpdateAvailable {
		fmt.Fprintf(os.Stderr, "✅ Already at the latest version (v%s)\n", result.CurrentVersion)
		return
	}

	fmt.Fprintf(os.Stderr, "📦 New version available: v%s → v%s\n", result.CurrentVersion, result.LatestVersion)
	fmt.Fprintf(os.Stderr, "⬇️  Downloading...\n")

	if err := updater.SelfUpdate(crewserver.Version); err != nil {
		fmt.Fprintf(os.Stderr, "❌ Update failed: %v\n", err)
		fmt.Fprintf(os.Stderr, "\n   You can download manually from:\n   %s\n", result.ReleaseURL)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "✅ Updated to v%s!\n", result.LatestVersion)
	fmt.Fprintf(os.Stderr, "   Restart crewchat to use the new version.\n")
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `crewchat v%s — coordination MCP server for AI agent teams

Usage:
  crewchat serve    Start the MCP server (stdio transport)
  crewchat update   Update to the latest version

Configuration:
  Add to your AI tool's MCP config:

  {
    "mcpServers": {
      "crewchat": {
        "command": "crewchat",
        "args": ["serve"]
      }
    }
  }

Environment:
  CREWCHAT_DATA_DIR    Where the JSON documents live (default ~/.crewchat)
  CREWCHAT_WORKSPACE   Workspace root for file sends (default cwd)
  CREWCHAT_AGENT       Fallback agent name before registration

Learn more: https://github.com/crewchat/crewchat
`, crewserver.Version)
}
