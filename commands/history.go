package commands

import (
	"fmt"
	"sync"

	"github.com/ncsh/ncsh/core/vos"
)

// HistoryEntry is a line the user ran.
type HistoryEntry struct {
	Line   string
	Status int
}

// History keeps the most recent lines run by the shell, it's safe for
// concurrent use.
type History struct {
	mu      sync.Mutex
	max     int
	entries []HistoryEntry

	// OnClear is called when the history builtin clears the list.
	OnClear func()
}

// NewHistory creates a history holding at most max lines, 0 means no limit.
func NewHistory(max int) *History {
	return &History{max: max}
}

// Add records a line and its status, dropping the oldest line when full.
func (h *History) Add(line string, status int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries, HistoryEntry{Line: line, Status: status})
	if h.max > 0 && len(h.entries) > h.max {
		h.entries = append(h.entries[:0], h.entries[len(h.entries)-h.max:]...)
	}
}

// Entries returns a copy of the history, oldest first.
func (h *History) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HistoryEntry(nil), h.entries...)
}

// Clear removes every entry.
func (h *History) Clear() {
	h.mu.Lock()
	h.entries = nil
	onClear := h.OnClear
	h.mu.Unlock()

	if onClear != nil {
		onClear()
	}
}

// Builtin implements the history builtin.
func (h *History) Builtin(virtOS vos.VOS) int {
	cmd := &SimpleCommand{
		Use:   "history [-c]",
		Short: "Display or clear the history list.",
	}
	clearHistory := cmd.Flags().Bool('c', "clear the history by deleting all entries")

	return cmd.Run(virtOS, func() int {
		if *clearHistory {
			h.Clear()
			return 0
		}

		for i, entry := range h.Entries() {
			fmt.Fprintf(virtOS.Stdout(), "% 5d  %s\n", i+1, entry.Line)
		}
		return 0
	})
}
