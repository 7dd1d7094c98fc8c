// Command analyze runs the feature extractor offline: it reads a raw data
// bundle as JSON on stdin and writes the extracted summary to stdout. Useful
// for inspecting what the API would return for captured provider responses.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/soundlens/soundlens/internal/analytics"
	"github.com/soundlens/soundlens/internal/models"
)

func main() {
	var pretty bool
	var fingerprintOnly bool

	rootCmd := &cobra.Command{
		Use:   "soundlens-analyze",
		Short: "Extract a listening summary from raw provider data",
		Long:  "Reads a raw data bundle (recent plays, top tracks/artists, audio features) as JSON on stdin and prints the extracted summary",
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw models.RawData
			if err := json.NewDecoder(os.Stdin).Decode(&raw); err != nil {
				return fmt.Errorf("failed to decode raw data: %w", err)
			}

			summary := analytics.Extract(&raw)

			if fingerprintOnly {
				fmt.Println(analytics.Fingerprint(summary))
				return nil
			}

			enc := json.NewEncoder(os.Stdout)
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(summary); err != nil {
				return fmt.Errorf("failed to encode summary: %w", err)
			}
			return nil
		},
	}

	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Indent the summary output")
	rootCmd.Flags().BoolVar(&fingerprintOnly, "fingerprint", false, "Print only the summary fingerprint")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
