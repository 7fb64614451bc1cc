package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// validateCmd checks the manifest without starting the loader.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the deployment manifest for structural errors and warnings",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}

		warnings := m.Validate()
		for _, w := range warnings {
			fmt.Printf("warning: %s\n", w)
		}
		fmt.Printf("manifest ok: %d groups, %d registry names, lessons 1..%d, %d warnings\n",
			len(m.Groups), m.Registry().Len(), m.Lessons.MaxID, len(warnings))
		return nil
	},
}
