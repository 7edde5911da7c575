package cmd

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/resty.v1"

	"tolsubmissions/pkg/domain"
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Uploads a manifest spreadsheet to the submissions API.",
	Long: `The submit command uploads the given spreadsheet to the submissions
API. With --generate the uploaded manifest is immediately driven through
identifier generation.`,
	Run: cliCmdSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().StringP("file", "f", "", "Path to the manifest spreadsheet")
	submitCmd.Flags().StringP("url", "u", "http://localhost:8080", "Base URL of the submissions API")
	submitCmd.Flags().StringP("apikey", "k", "", "API key to pass in REST API calls")
	submitCmd.Flags().StringP("project", "p", "", "Project name recorded on the manifest")
	submitCmd.Flags().Bool("generate", false, "Generate identifiers after upload")
	_ = submitCmd.MarkFlagRequired("file")
	_ = submitCmd.MarkFlagRequired("apikey")
}

func cliCmdSubmit(cmd *cobra.Command, args []string) {
	path, _ := cmd.Flags().GetString("file")
	baseURL, _ := cmd.Flags().GetString("url")
	apiKey, _ := cmd.Flags().GetString("apikey")
	project, _ := cmd.Flags().GetString("project")
	generate, _ := cmd.Flags().GetBool("generate")

	client := resty.New().SetHostURL(baseURL).SetHeader("api-key", apiKey)

	req := client.R().SetFile("excelFile", path)
	if project != "" {
		req.SetFormData(map[string]string{"projectName": project})
	}
	resp, err := req.Post("/api/v1/manifests/excel")
	if err != nil {
		fmt.Println("upload failed:", err)
		os.Exit(1)
	}
	if resp.StatusCode() != http.StatusOK {
		fmt.Printf("upload rejected (status %d):\n%s\n", resp.StatusCode(), resp.Body())
		os.Exit(1)
	}

	var manifest domain.Manifest
	if err := json.Unmarshal(resp.Body(), &manifest); err != nil {
		fmt.Println("cannot parse response:", err)
		os.Exit(1)
	}
	fmt.Printf("uploaded manifest %s with %d samples\n", manifest.ID, len(manifest.Samples))

	if !generate {
		return
	}

	resp, err = client.R().Post("/api/v1/manifests/" + manifest.ID + "/generate")
	if err != nil {
		fmt.Println("generation failed:", err)
		os.Exit(1)
	}
	if resp.StatusCode() != http.StatusOK {
		fmt.Printf("generation rejected (status %d):\n%s\n", resp.StatusCode(), resp.Body())
		os.Exit(1)
	}

	// A validation response means the pipeline stopped; a manifest means
	// identifiers were issued.
	var outcome struct {
		NumberOfErrors *int `json:"number_of_errors"`
	}
	if err := json.Unmarshal(resp.Body(), &outcome); err == nil && outcome.NumberOfErrors != nil {
		fmt.Printf("generation stopped with %d errors:\n%s\n", *outcome.NumberOfErrors, resp.Body())
		os.Exit(1)
	}
	if err := json.Unmarshal(resp.Body(), &manifest); err != nil {
		fmt.Println("cannot parse response:", err)
		os.Exit(1)
	}
	for _, sample := range manifest.Samples {
		fmt.Printf("row %d  %s  %s\n", sample.Row, sample.ToLID, sample.BiosampleAccession)
	}
}
