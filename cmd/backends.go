package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List configured backends",
	Long: `List every backend variant with its endpoints. The active one is marked with *.
Endpoints come from the built-in registry and can be overridden with
FACEFINDER_<VARIANT>_FIND_IMAGE_URL, _UPLOAD_URL and _LIST_FACES_URL.`,
	Args: cobra.NoArgs,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, args []string) error {
	_, selector, _, err := setup()
	if err != nil {
		return err
	}

	registry := selector.Registry()
	for _, variant := range registry.Variants() {
		marker := " "
		if variant == selector.Current() {
			marker = "*"
		}
		eps, _ := registry.Resolve(variant)
		fmt.Printf("%s %s\n", marker, variant)
		fmt.Printf("    find:   %s\n", eps.FindImageURL)
		fmt.Printf("    upload: %s\n", eps.UploadURLEndpoint)
		fmt.Printf("    list:   %s\n", eps.ListFacesURL)
	}

	if _, ok := registry.Resolve(selector.Current()); !ok {
		fmt.Printf("\nActive backend %s has no endpoints configured\n", selector.Current())
	}
	return nil
}
