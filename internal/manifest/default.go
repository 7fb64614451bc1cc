package manifest

import "fmt"

// Default returns the built-in deployment manifest used when no manifest file
// is present: 120 lessons across six groups, with the first sixty lessons
// named under the original flat convention and the rest under the newer
// track-prefixed one.
func Default() *Manifest {
	lowNames := make(map[int]string, 60)
	for id := 1; id <= 60; id++ {
		lowNames[id] = fmt.Sprintf("lesson_%02d", id)
	}
	highNames := make(map[int]string, 60)
	for id := 61; id <= 120; id++ {
		highNames[id] = fmt.Sprintf("advanced/lesson_%d", id)
	}

	return &Manifest{
		Version: 1,
		Lessons: LessonsConfig{MaxID: 120, ContentDir: "content/lessons"},
		Groups: []GroupEntry{
			{Name: "basics", Range: []int{1, 20}, Priority: "high"},
			{Name: "memory-management", Range: []int{21, 44}, Priority: "medium"},
			{Name: "smart-pointers", Range: []int{45, 60}, Priority: "medium"},
			{Name: "undefined-behavior", Range: []int{61, 80}, Priority: "low"},
			{Name: "atomics", Range: []int{81, 100}, Priority: "low"},
			{Name: "projects", Range: []int{101, 120}, Priority: "low"},
		},
		Tables: []TableEntry{
			{Range: []int{1, 60}, Names: lowNames},
			{Range: []int{61, 120}, Names: highNames},
		},
	}
}
