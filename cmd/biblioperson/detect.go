package main

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Karasowl/biblioperson/pipeline"
)

func newDetectCmd(c *cli) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "detect FILE...",
		Short: "Classify documents as verse, prose or structured data",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			coord, err := pipeline.New(pipeline.Config{Logger: c.logger})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, path := range args {
				report, err := coord.Detect(path)
				if err != nil {
					return err
				}
				if asJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					if err := enc.Encode(report); err != nil {
						return err
					}
					continue
				}
				fmt.Fprintf(out, "%s: %s (confidence %.2f)\n", path, report.DetectedProfile, report.Confidence)
				for _, r := range report.Reasons {
					fmt.Fprintf(out, "  - %s\n", r)
				}
				keys := make([]string, 0, len(report.StructuralMetrics))
				for k := range report.StructuralMetrics {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "  %s = %g\n", k, report.StructuralMetrics[k])
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full detection report as JSON")
	return cmd
}
