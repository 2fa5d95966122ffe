package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/kozaktomas/facefinder/internal/flow"
	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find <image>",
	Short: "Find who is on a photo",
	Long: `Send a photo to the active backend and print who is on it.

A match prints a greeting, otherwise the backend's message is printed.

Example:
  facefinder find ./unknown.jpg
  facefinder find --max-dimension 1024 ./large.png`,
	Args: cobra.ExactArgs(1),
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
	findCmd.Flags().Int("max-dimension", -1, "Downscale the image so its longest side fits (0 disables, default from FACEFINDER_FIND_MAX_DIMENSION)")
	findCmd.Flags().Bool("json", false, "Print the result as JSON")
}

func runFind(cmd *cobra.Command, args []string) error {
	cfg, selector, client, err := setup()
	if err != nil {
		return err
	}

	maxDimension := mustGetInt(cmd, "max-dimension")
	if maxDimension < 0 {
		maxDimension = cfg.Find.MaxDimension
	}

	find := flow.NewFind(client, selector)
	defer find.Close()
	find.SetMaxDimension(maxDimension)

	if err := find.SelectFile(args[0]); err != nil {
		return err
	}

	err = find.Submit(context.Background())
	view := find.View()

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(view); encErr != nil {
			return encErr
		}
		return err
	}

	if err != nil {
		return fmt.Errorf("find failed: %w", err)
	}
	switch {
	case view.Greeting != "":
		fmt.Println(view.Greeting)
	case view.Message != "":
		fmt.Println(view.Message)
	default:
		fmt.Println("No answer from the backend")
	}
	return nil
}
