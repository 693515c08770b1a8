package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mdsexport/pkg/tokenstore"
	"mdsexport/pkg/ui"
)

var tokenAddName string

// tokenCmd groups the token management subcommands.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage stored resumption tokens",
}

var tokenAddCmd = &cobra.Command{
	Use:   "add TOKEN",
	Short: "Store a new resumption token",
	Long: `Store a new resumption token under a memorable name.

If --name is omitted, a random "adjective-noun" name is generated.`,
	Example: `  # Store a token under a generated name
  mdsexport token add eyJhbGciOi...

  # Store a token under a chosen name
  mdsexport token add --name museum-full eyJhbGciOi...`,
	Args: cobra.ExactArgs(1),
	Run:  runTokenAdd,
}

var tokenListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored tokens",
	Args:  cobra.NoArgs,
	Run:   runTokenList,
}

var tokenRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a stored token by name",
	Args:  cobra.ExactArgs(1),
	Run:   runTokenRemove,
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenAddCmd)
	tokenCmd.AddCommand(tokenListCmd)
	tokenCmd.AddCommand(tokenRemoveCmd)

	tokenAddCmd.Flags().StringVar(&tokenAddName, "name", "", "optional name for the token (random name generated if not provided)")
}

func runTokenAdd(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		ui.PrintError("Failed to open token database", err.Error())
		os.Exit(1)
	}
	defer store.Close()

	name, err := store.Create(args[0], tokenAddName)
	if errors.Is(err, tokenstore.ErrDuplicateName) {
		ui.PrintError(fmt.Sprintf("Token '%s' already exists", tokenAddName))
		os.Exit(1)
	}
	if err != nil {
		ui.PrintError("Failed to add token", err.Error())
		os.Exit(1)
	}

	fmt.Printf("Added token '%s'\n", name)
}

func runTokenList(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		ui.PrintError("Failed to open token database", err.Error())
		os.Exit(1)
	}
	defer store.Close()

	tokens, err := store.List()
	if err != nil {
		ui.PrintError("Failed to list tokens", err.Error())
		os.Exit(1)
	}

	ui.RenderTokenTable(os.Stdout, tokens)
}

func runTokenRemove(cmd *cobra.Command, args []string) {
	cfg, err := loadConfig(nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	store, err := openStore(cfg)
	if err != nil {
		ui.PrintError("Failed to open token database", err.Error())
		os.Exit(1)
	}
	defer store.Close()

	name := args[0]
	removed, err := store.Remove(name)
	if err != nil {
		ui.PrintError("Failed to remove token", err.Error())
		os.Exit(1)
	}

	if removed {
		fmt.Printf("Removed token '%s'\n", name)
	} else {
		fmt.Printf("Token '%s' not found\n", name)
	}
}
