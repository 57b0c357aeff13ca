package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/attendance"
	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/kozaktomas/smart-attendance/internal/status"
	"github.com/spf13/cobra"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "List registered users",
	Args:  cobra.NoArgs,
	RunE:  runUsers,
}

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "Show the attendance log, most recent first",
	Args:  cobra.NoArgs,
	RunE:  runRecords,
}

func init() {
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(recordsCmd)

	usersCmd.Flags().Bool("json", false, "Output as JSON")
	recordsCmd.Flags().Bool("json", false, "Output as JSON")
	recordsCmd.Flags().Bool("open", false, "Only show users who are still checked in")
}

func runUsers(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, config.Load(), status.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	users, err := a.service.Users(ctx)
	if err != nil {
		return err
	}

	if mustGetBool(cmd, "json") {
		type entry struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		}
		out := make([]entry, 0, len(users))
		for _, u := range users {
			out = append(out, entry{ID: u.ID, Name: u.Name})
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	if len(users) == 0 {
		fmt.Println("No users registered")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME")
	fmt.Fprintln(w, "--\t----")
	for _, u := range users {
		fmt.Fprintf(w, "%s\t%s\n", u.ID, u.Name)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d users\n", len(users))
	return nil
}

func runRecords(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	a, err := newApp(ctx, config.Load(), status.Discard)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.service.Records(ctx)
	if err != nil {
		return err
	}
	if mustGetBool(cmd, "open") {
		records = openRecords(records)
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	if len(records) == 0 {
		fmt.Println("No attendance records found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tID\tCHECK IN\tCHECK OUT\tSTATUS")
	fmt.Fprintln(w, "----\t--\t--------\t---------\t------")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rec.User.Name, rec.User.ID, formatTime(rec.CheckIn), formatCheckOut(rec.CheckOut), rec.Status)
	}
	w.Flush()

	fmt.Printf("\nTotal: %d records\n", len(records))
	return nil
}

func openRecords(records []attendance.Record) []attendance.Record {
	var out []attendance.Record
	for _, rec := range records {
		if rec.Open() {
			out = append(out, rec)
		}
	}
	return out
}

// formatTime renders a timestamp in local time. A zero time is a timestamp that could not be revived.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "Invalid Date"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func formatCheckOut(t *time.Time) string {
	if t == nil {
		return "N/A"
	}
	return formatTime(*t)
}
