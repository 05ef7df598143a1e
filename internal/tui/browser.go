package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// BrowseEntry is one data file with its applicable metadata, precomputed by
// the caller.
type BrowseEntry struct {
	// Path is the dataset-relative data file path.
	Path string
	// Chain holds the applicable metadata file paths in application order,
	// root first.
	Chain []string
	// Preview is the rendered merged metadata for the file, empty when the
	// file has none.
	Preview string
}

const (
	// listWindow is the number of list rows kept on screen.
	listWindow = 10
	// previewLines caps the collapsed preview; Select expands it.
	previewLines = 12
)

// Browser is an interactive viewer over data files and their inherited
// metadata.
type Browser struct {
	title    string
	entries  []BrowseEntry
	cursor   int
	offset   int
	expanded bool
	width    int
	keyMap   KeyMap
}

// NewBrowser creates a browser over the given entries.
func NewBrowser(title string, entries []BrowseEntry) Browser {
	return Browser{
		title:   title,
		entries: entries,
		keyMap:  DefaultKeyMap(),
	}
}

// Init implements tea.Model.
func (b Browser) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, b.keyMap.Up):
			if b.cursor > 0 {
				b.cursor--
				b.expanded = false
				if b.cursor < b.offset {
					b.offset = b.cursor
				}
			}
		case key.Matches(msg, b.keyMap.Down):
			if b.cursor < len(b.entries)-1 {
				b.cursor++
				b.expanded = false
				if b.cursor >= b.offset+listWindow {
					b.offset = b.cursor - listWindow + 1
				}
			}
		case key.Matches(msg, b.keyMap.Select):
			b.expanded = true
		case key.Matches(msg, b.keyMap.Back):
			b.expanded = false
		case key.Matches(msg, b.keyMap.Quit):
			return b, tea.Quit
		}
	case tea.WindowSizeMsg:
		b.width = msg.Width
	}
	return b, nil
}

// View implements tea.Model.
func (b Browser) View() string {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render(b.title))
	sb.WriteString("\n\n")

	if len(b.entries) == 0 {
		sb.WriteString(UnselectedStyle.Render("no data files"))
		sb.WriteString("\n")
		sb.WriteString(HelpStyle.Render(b.keyMap.HelpText()))
		return sb.String()
	}

	end := b.offset + listWindow
	if end > len(b.entries) {
		end = len(b.entries)
	}
	for i := b.offset; i < end; i++ {
		if i == b.cursor {
			sb.WriteString(SelectedStyle.Render(SymbolSelected + " " + b.entries[i].Path))
		} else {
			sb.WriteString(UnselectedStyle.Render(SymbolUnselected + " " + b.entries[i].Path))
		}
		sb.WriteString("\n")
	}
	if end < len(b.entries) {
		sb.WriteString(UnselectedStyle.Render(fmt.Sprintf("  … %d more", len(b.entries)-end)))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(b.detailView(b.entries[b.cursor]))
	sb.WriteString(HelpStyle.Render(b.keyMap.HelpText()))
	return sb.String()
}

// detailView renders the inheritance chain and merged preview of one entry.
func (b Browser) detailView(entry BrowseEntry) string {
	var sb strings.Builder

	sb.WriteString(SubtitleStyle.Render("Inherited metadata, root first:"))
	sb.WriteString("\n")
	if len(entry.Chain) == 0 {
		sb.WriteString(UnselectedStyle.Render("  (none)"))
		sb.WriteString("\n")
	}
	for _, rel := range entry.Chain {
		sb.WriteString(UnselectedStyle.Render("  " + SymbolBullet + " " + rel))
		sb.WriteString("\n")
	}

	if entry.Preview != "" {
		sb.WriteString("\n")
		lines := strings.Split(strings.TrimRight(entry.Preview, "\n"), "\n")
		truncated := false
		if !b.expanded && len(lines) > previewLines {
			lines = lines[:previewLines]
			truncated = true
		}
		for _, line := range lines {
			sb.WriteString(DescriptionStyle.Render(line))
			sb.WriteString("\n")
		}
		if truncated {
			sb.WriteString(DescriptionStyle.Render("…"))
			sb.WriteString("\n")
		}
	}

	return sb.String()
}

// Entry returns the entry under the cursor, or nil when the browser is
// empty.
func (b Browser) Entry() *BrowseEntry {
	if len(b.entries) == 0 {
		return nil
	}
	return &b.entries[b.cursor]
}

// RenderPlain renders the entries as plain text for non-interactive runs.
func RenderPlain(title string, entries []BrowseEntry) string {
	var sb strings.Builder
	sb.WriteString(title)
	sb.WriteString("\n")
	for _, entry := range entries {
		sb.WriteString("\n")
		sb.WriteString(entry.Path)
		sb.WriteString("\n")
		if len(entry.Chain) == 0 {
			sb.WriteString("  (none)\n")
			continue
		}
		for _, rel := range entry.Chain {
			sb.WriteString("  " + SymbolBullet + " " + rel + "\n")
		}
	}
	return sb.String()
}
