package tui

import (
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// RunBrowser runs the interactive metadata browser. When no terminal is
// attached it falls back to writing the plain listing to w.
func RunBrowser(w io.Writer, title string, entries []BrowseEntry) error {
	if !IsInteractive() {
		_, err := io.WriteString(w, RenderPlain(title, entries))
		return err
	}

	program := tea.NewProgram(NewBrowser(title, entries))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("browser terminated: %w", err)
	}
	return nil
}
