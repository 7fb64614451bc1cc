package loader

import (
	"fmt"
	"strings"
)

// Stats is a point-in-time snapshot of loader observability data.
type Stats struct {
	CacheSize       int
	PreloadedGroups []string
	Hits            int64
	Misses          int64
}

// HitRate returns the fraction of cache reads that were fresh hits, or 0
// before any read has happened.
func (st Stats) HitRate() float64 {
	total := st.Hits + st.Misses
	if total == 0 {
		return 0
	}
	return float64(st.Hits) / float64(total)
}

// String returns a human-readable summary.
func (st Stats) String() string {
	groups := "none"
	if len(st.PreloadedGroups) > 0 {
		groups = strings.Join(st.PreloadedGroups, ", ")
	}
	return fmt.Sprintf("cached=%d, hits=%d, misses=%d, hit_rate=%.0f%%, preloaded=[%s]",
		st.CacheSize, st.Hits, st.Misses, st.HitRate()*100, groups)
}
