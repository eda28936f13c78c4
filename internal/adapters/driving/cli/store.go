package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var clearYes bool

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the vector store backend and entry count",
	RunE:  runStatus,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry from the vector store",
	RunE:  runClear,
}

func init() {
	clearCmd.Flags().BoolVarP(&clearYes, "yes", "y", false, "skip confirmation")
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(clearCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	backend, entries, err := storeAdmin.Status(context.Background())
	if err != nil {
		return fmt.Errorf("status failed: %w", err)
	}

	cmd.Printf("Backend: %s\n", backend)
	cmd.Printf("Entries: %d\n", entries)
	cmd.Printf("Collection: %s\n", appConfig.Store.Collection)
	cmd.Printf("Dimension: %d\n", appConfig.Store.Dimension)
	return nil
}

func runClear(cmd *cobra.Command, _ []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if !clearYes {
		cmd.Print("This removes all stored entries. Continue? [y/N]: ")
		reader := bufio.NewReader(cmd.InOrStdin())
		line, _ := reader.ReadString('\n')
		if answer := strings.ToLower(strings.TrimSpace(line)); answer != "y" && answer != "yes" {
			cmd.Println("Aborted.")
			return nil
		}
	}

	if err := storeAdmin.Clear(context.Background()); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}
	cmd.Println("Vector store cleared.")
	return nil
}
