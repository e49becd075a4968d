package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ademuri/spotify-insights/internal/analysis"
)

var reportCmd = &cobra.Command{
	Use:     "report",
	Short:   "Generates a comprehensive listening report",
	Long:    `Runs every analysis over the stored data and prints the results as YAML.`,
	Args:    cobra.NoArgs,
	PreRunE: requireUser,
	Run: func(cmd *cobra.Command, args []string) {
		err := runReport(os.Stdout, viper.GetString("database"), viper.GetString("user"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating report: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func runReport(out io.Writer, dbPath, user string) error {
	snap, err := loadSnapshot(dbPath, user)
	if err != nil {
		return err
	}

	report := analysis.GenerateReport(snap, user, time.Local, time.Now())

	encoder := yaml.NewEncoder(out)
	encoder.SetIndent(2)
	err = encoder.Encode(report)
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}

	return encoder.Close()
}
