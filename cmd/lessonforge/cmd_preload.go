package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"lessonforge/internal/catalog"
)

var (
	preloadAll  bool
	preloadWait time.Duration
)

// preloadCmd warms the cache for one or more groups.
var preloadCmd = &cobra.Command{
	Use:   "preload [group...]",
	Short: "Warm the cache for the given groups",
	Long: `Runs the preload schedule for the named groups (or every group with
--all). High priority groups load before the command moves on; medium and
low priority groups are deferred by their tier's delay, so the command polls
until every requested group is marked preloaded or --wait elapses.`,
	RunE: runPreload,
}

func init() {
	preloadCmd.Flags().BoolVar(&preloadAll, "all", false, "preload every group in the manifest")
	preloadCmd.Flags().DurationVar(&preloadWait, "wait", 2*time.Minute, "max time to wait for deferred preloads")
}

func runPreload(cmd *cobra.Command, args []string) error {
	if !preloadAll && len(args) == 0 {
		return fmt.Errorf("name at least one group or pass --all")
	}

	m, err := loadManifest()
	if err != nil {
		return err
	}
	svc, err := buildService(m)
	if err != nil {
		return err
	}
	defer svc.Close()

	var names []string
	if preloadAll {
		for _, g := range svc.Groups() {
			names = append(names, g.Name)
		}
	} else {
		for _, name := range args {
			if _, ok := lookupGroup(svc.Groups(), name); !ok {
				return fmt.Errorf("unknown group %q", name)
			}
			names = append(names, name)
		}
	}

	for _, name := range names {
		svc.PreloadGroup(cmd.Context(), name)
	}

	deadline := time.Now().Add(preloadWait)
	for {
		done := true
		for _, name := range names {
			if !svc.Preloaded(name) {
				done = false
				break
			}
		}
		if done {
			break
		}
		if time.Now().After(deadline) {
			fmt.Printf("timed out waiting for deferred preloads: %s\n", svc.Stats())
			return nil
		}
		select {
		case <-cmd.Context().Done():
			return cmd.Context().Err()
		case <-time.After(200 * time.Millisecond):
		}
	}

	fmt.Println(svc.Stats())
	return nil
}

func lookupGroup(groups []catalog.Group, name string) (catalog.Group, bool) {
	for _, g := range groups {
		if g.Name == name {
			return g, true
		}
	}
	return catalog.Group{}, false
}
