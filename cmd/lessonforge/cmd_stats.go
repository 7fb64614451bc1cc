package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statsCmd prints the manifest's group table and a loader snapshot.
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the group table and loader counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := loadManifest()
		if err != nil {
			return err
		}
		svc, err := buildService(m)
		if err != nil {
			return err
		}
		defer svc.Close()

		fmt.Printf("lessons: 1..%d, registry names: %d\n\n", m.Lessons.MaxID, m.Registry().Len())
		fmt.Printf("%-22s %-12s %-10s %s\n", "GROUP", "RANGE", "PRIORITY", "LESSONS")
		for _, g := range svc.Groups() {
			fmt.Printf("%-22s [%3d,%3d]   %-10s %d\n", g.Name, g.Lo, g.Hi, g.Priority, g.Size())
		}
		fmt.Printf("\n%s\n", svc.Stats())
		return nil
	},
}
