// Command submissions is the command-line companion of the submissions
// API: offline manifest checking and spreadsheet submission.
package main

import "tolsubmissions/cmd/submissions/cmd"

func main() {
	cmd.Execute()
}
