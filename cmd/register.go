package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kozaktomas/facefinder/internal/constants"
	"github.com/kozaktomas/facefinder/internal/flow"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register --name <name> <image>",
	Short: "Register a face",
	Long: `Register a face with the active backend.

` + constants.MaxImageFileSizeLabel + `
Diacritics are removed from the name before it is sent.

Example:
  facefinder register --name "Jane Doe" ./jane.jpg
  facefinder register --backend PYTHON --name "Jane Doe" ./jane.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
	registerCmd.Flags().StringP("name", "n", "", "Full name of the person on the photo")
	registerCmd.Flags().Bool("no-progress", false, "Do not show the upload progress bar")
}

// newUploadBar creates the byte progress bar used while the image is PUT.
func newUploadBar(size int64, name string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(size,
		progressbar.OptionSetDescription("Uploading "+name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func runRegister(cmd *cobra.Command, args []string) error {
	name := mustGetString(cmd, "name")
	if name == "" {
		return errors.New("--name is required")
	}

	_, selector, client, err := setup()
	if err != nil {
		return err
	}

	upload := flow.NewUpload(client, selector)
	defer upload.Close()

	if err := upload.SelectFile(args[0]); err != nil {
		return err
	}
	upload.SetName(name)

	if !mustGetBool(cmd, "no-progress") {
		upload.SetProgress(func(r io.Reader, size int64) io.Reader {
			return io.TeeReader(r, newUploadBar(size, filepath.Base(args[0])))
		})
	}

	fmt.Printf("Registering %s on %s backend\n", name, selector.Current())
	err = upload.Submit(context.Background())
	view := upload.View()
	fmt.Println()
	fmt.Println(view.Message)
	if err != nil {
		return fmt.Errorf("register failed: %w", err)
	}
	fmt.Printf("Stored as %s\n", view.FileName)
	return nil
}
