package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "smart-attendance",
	Short: "Face-verified check-in and check-out from a camera",
	Long: `Smart Attendance keeps a roster of users with reference photos and records
check-in/check-out sessions. Every intent snaps a photo after a short countdown
and an AI model (Gemini, OpenAI, Ollama or llama.cpp) decides who is in it.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Environment file loaded before reading configuration")
}

func initConfig() {
	// A missing default .env is ignored; any other file is reported.
	if err := godotenv.Load(envFile); err != nil && envFile != ".env" {
		fmt.Fprintf(os.Stderr, "Warning: could not load %s: %v\n", envFile, err)
	}
}
