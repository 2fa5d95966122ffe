package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/facefinder/internal/flow"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered faces",
	Long: `List every face registered with the active backend.

Example:
  facefinder list
  facefinder list --backend PYTHON --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().Bool("json", false, "Print the faces as JSON")
}

func runList(cmd *cobra.Command, args []string) error {
	_, selector, client, err := setup()
	if err != nil {
		return err
	}

	list := flow.NewList(client, selector)
	defer list.Close()

	if err := list.Load(context.Background()); err != nil {
		return fmt.Errorf("%s: %w", list.View().Message, err)
	}
	faces := list.View().Faces

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(faces)
	}

	if len(faces) == 0 {
		fmt.Println("No faces registered.")
		return nil
	}
	fmt.Printf("%d face(s) on %s backend:\n\n", len(faces), selector.Current())
	for _, face := range faces {
		fmt.Printf("  %-30s %s\n", face.FullName, face.ImageURL)
	}
	return nil
}
