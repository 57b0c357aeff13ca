package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kozaktomas/smart-attendance/internal/capture"
	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/spf13/cobra"
)

var cameraCmd = &cobra.Command{
	Use:   "camera",
	Short: "Run the capture countdown once and save the photo",
	Long: `Run the same countdown and capture used by every intent and write the
resulting JPEG to a file. Useful to check camera placement and access.`,
	Args: cobra.NoArgs,
	RunE: runCamera,
}

func init() {
	rootCmd.AddCommand(cameraCmd)

	cameraCmd.Flags().StringP("output", "o", "capture.jpg", "File to write the captured JPEG to")
}

func runCamera(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	cam := newCamera(&cfg.Camera)
	seq := capture.New(newCLIReporter(os.Stdout))

	frame, err := seq.Capture(context.Background(), cam)
	if err != nil {
		return err
	}

	output := mustGetString(cmd, "output")
	if err := os.WriteFile(output, frame.JPEG, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Printf("Saved %dx%d frame from %s camera to %s\n", frame.Width, frame.Height, cam.Name(), output)
	return nil
}
