// Package navhistory implements a back/forward navigation stack over
// visited subnetwork names.
//
// A new History holds no entry at all (Current reports false until the
// first Visit), Visit truncates any forward history once a back sequence
// has started, and RenameNetwork/RemoveNetwork adjust in place rather than
// clearing the whole stack. The stack has no size limit: Visit never drops
// old entries.
package navhistory

// History is a back/forward stack of visited network names, with no size
// limit.
type History struct {
	entries []string
	index   int
	hasAny  bool
}

// New constructs an empty History (no network visited yet).
func New() *History {
	return &History{}
}

// Visit records a new visit to name. If the cursor is not at the end of
// the stack (the caller had gone Back one or more times), every entry
// after the cursor is discarded before the new entry is appended —
// standard truncate-on-navigate semantics.
func (h *History) Visit(name string) {
	if !h.hasAny {
		h.entries = []string{name}
		h.index = 0
		h.hasAny = true
		return
	}
	h.entries = append(h.entries[:h.index+1], name)
	h.index = len(h.entries) - 1
}

// Current returns the currently-visited network name, and false if no
// network has ever been visited.
func (h *History) Current() (string, bool) {
	if !h.hasAny {
		return "", false
	}
	return h.entries[h.index], true
}

// CanBack reports whether Back would move the cursor.
func (h *History) CanBack() bool { return h.hasAny && h.index > 0 }

// CanForward reports whether Forward would move the cursor.
func (h *History) CanForward() bool { return h.hasAny && h.index < len(h.entries)-1 }

// Back moves the cursor one entry earlier, returning the new current name.
// A no-op (returns the unchanged current name) if already at the start.
func (h *History) Back() (string, bool) {
	if h.CanBack() {
		h.index--
	}
	return h.Current()
}

// Forward moves the cursor one entry later, returning the new current
// name. A no-op if already at the end.
func (h *History) Forward() (string, bool) {
	if h.CanForward() {
		h.index++
	}
	return h.Current()
}

// RenameNetwork updates every history entry equal to oldName to newName,
// in place (the cursor position is unaffected).
func (h *History) RenameNetwork(oldName, newName string) {
	for i, e := range h.entries {
		if e == oldName {
			h.entries[i] = newName
		}
	}
}

// RemoveNetwork deletes every history entry equal to name, clamping the
// cursor into the remaining bounds. If the removal empties the history,
// subsequent Current calls report false until the next Visit.
func (h *History) RemoveNetwork(name string) {
	if !h.hasAny {
		return
	}
	var kept []string
	removedBeforeCursor := 0
	for i, e := range h.entries {
		if e == name {
			if i <= h.index {
				removedBeforeCursor++
			}
			continue
		}
		kept = append(kept, e)
	}
	h.entries = kept
	h.index -= removedBeforeCursor
	if h.index < 0 {
		h.index = 0
	}
	if len(h.entries) == 0 {
		h.hasAny = false
		h.index = 0
		return
	}
	if h.index >= len(h.entries) {
		h.index = len(h.entries) - 1
	}
}

// Len returns the number of entries currently retained.
func (h *History) Len() int { return len(h.entries) }
