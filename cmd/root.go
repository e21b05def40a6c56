package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookdrill",
	Short: "Mastery tracking and spaced review engine for book learning",
	Long: `bookdrill tracks which Bloom categories of each book idea a learner has
answered correctly, schedules spaced follow-ups and curveballs, and assembles
practice tests that mix fresh questions with due review items.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
