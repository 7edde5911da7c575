package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"tolsubmissions/internal/core"
	"tolsubmissions/internal/spreadsheet"
	"tolsubmissions/pkg/domain"
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Checks a manifest spreadsheet for errors without submitting it.",
	Long: `The check command runs every validation that needs no remote service
over the given spreadsheet and reports the findings per row. Nothing is
submitted anywhere.`,
	Run: cliCmdCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().StringP("file", "f", "", "Path to the manifest spreadsheet")
	_ = checkCmd.MarkFlagRequired("file")
}

func cliCmdCheck(cmd *cobra.Command, args []string) {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}

	file, err := os.Open(path)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer func() { _ = file.Close() }()

	manifest, err := spreadsheet.Read(file)
	if err != nil {
		fmt.Println("cannot read spreadsheet:", err)
		os.Exit(1)
	}
	fmt.Printf("read %d samples\n", len(manifest.Samples))

	report, err := core.NewOfflineEngine().Evaluate(context.Background(), manifest)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	printReport(report)
	if report.ErrorCount() > 0 {
		os.Exit(1)
	}
}

func printReport(report domain.Report) {
	findings := 0
	for _, row := range report.Rows {
		for _, f := range row.Findings {
			findings++
			fmt.Printf("row %d  %-8s %s: %s\n", row.Row, f.Severity, f.Field, f.Message)
		}
	}
	if findings == 0 {
		fmt.Println("no findings")
		return
	}
	fmt.Printf("%d findings, %d errors\n", findings, report.ErrorCount())
}
