package main

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"lessonforge/internal/content"
)

// showCmd loads one lesson through the full cache path and renders its body.
var showCmd = &cobra.Command{
	Use:   "show [lesson id]",
	Short: "Load a lesson and render it in the terminal",
	Long: `Loads the lesson through the cache (resolving and reading it from the
content directory on a miss) and renders its markdown body. A lesson that
cannot be resolved or read renders as a placeholder, not an error.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("lesson id must be an integer: %w", err)
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

	artifact := svc.GetOrLoad(cmd.Context(), id)
	lesson, ok := artifact.(*content.Lesson)
	if !ok {
		return fmt.Errorf("unexpected artifact type %T for lesson %d", artifact, id)
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		return fmt.Errorf("failed to initialize renderer: %w", err)
	}

	group := svc.GroupOf(id)
	header := fmt.Sprintf("# %s\n\n_group: %s · priority: %s_\n\n", lesson.Title, group.Name, group.Priority)
	if lesson.Placeholder {
		header = fmt.Sprintf("# %s\n\n", lesson.Title)
	}

	out, err := renderer.Render(header + lesson.Body)
	if err != nil {
		return fmt.Errorf("failed to render lesson %d: %w", id, err)
	}
	fmt.Print(out)
	return nil
}
