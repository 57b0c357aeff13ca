package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/camera"
	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/spf13/cobra"
)

var registerCmd = &cobra.Command{
	Use:   "register <name> <id>",
	Short: "Register a user with a reference photo",
	Long: `Register a new user. The reference photo is taken from the configured camera
after a countdown, or read from --photo.

Examples:
  # Register from the camera
  smart-attendance register "Alice Nováková" A1

  # Register from an existing photo
  smart-attendance register "Bob" B2 --photo bob.jpg`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

var checkInCmd = &cobra.Command{
	Use:   "checkin",
	Short: "Identify the person in front of the camera and check them in",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAttendance(cmd, (*attendance.Service).CheckIn)
	},
}

var checkOutCmd = &cobra.Command{
	Use:   "checkout",
	Short: "Identify the person in front of the camera and check them out",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runAttendance(cmd, (*attendance.Service).CheckOut)
	},
}

func init() {
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(checkInCmd)
	rootCmd.AddCommand(checkOutCmd)

	for _, c := range []*cobra.Command{registerCmd, checkInCmd, checkOutCmd} {
		c.Flags().String("photo", "", "Use this image file instead of the camera")
	}
}

// photoCamera returns a still camera for --photo, or nil to use the configured camera.
func photoCamera(cmd *cobra.Command) (camera.Camera, error) {
	path := mustGetString(cmd, "photo")
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading photo: %w", err)
	}
	still, err := camera.NewStill(data)
	if err != nil {
		return nil, fmt.Errorf("decoding photo %s: %w", path, err)
	}
	return still, nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	cam, err := photoCamera(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	reporter := newCLIReporter(os.Stdout)
	a, err := newApp(ctx, config.Load(), reporter)
	if err != nil {
		return err
	}
	defer a.Close()

	user, err := a.service.Register(ctx, attendance.RegisterInput{Name: args[0], ID: args[1], Camera: cam})
	if err != nil {
		// The reporter already printed the user-facing message.
		return fmt.Errorf("registration failed: %w", err)
	}
	fmt.Printf("Roster entry: %s (%s)\n", user.Name, user.ID)
	return nil
}

func runAttendance(cmd *cobra.Command, intent func(*attendance.Service, context.Context, camera.Camera) (attendance.Outcome, error)) error {
	cam, err := photoCamera(cmd)
	if err != nil {
		return err
	}

	ctx := context.Background()
	reporter := newCLIReporter(os.Stdout)
	a, err := newApp(ctx, config.Load(), reporter)
	if err != nil {
		return err
	}
	defer a.Close()

	out, err := intent(a.service, ctx, cam)
	if err != nil {
		return fmt.Errorf("%s failed: %w", out.Action, err)
	}
	fmt.Printf("Record %s: %s at %s\n", out.Record.ID, out.Record.Status, formatTime(out.Record.CheckIn))
	return nil
}
