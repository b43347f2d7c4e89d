package document

// history keeps undo and redo stacks of edit steps. A step is the list of
// replacements one call applied, in application order.
type history struct {
	undo       [][]Replacement
	redo       [][]Replacement
	maxEntries int
}

// push adds a step and clears the redo stack.
func (h *history) push(step []Replacement) {
	if len(step) == 0 {
		return
	}
	h.undo = append(h.undo, step)
	h.redo = nil

	if len(h.undo) > h.maxEntries {
		excess := len(h.undo) - h.maxEntries
		h.undo = h.undo[excess:]
	}
}

func (h *history) popUndo() ([]Replacement, bool) {
	if len(h.undo) == 0 {
		return nil, false
	}
	step := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	return step, true
}

func (h *history) popRedo() ([]Replacement, bool) {
	if len(h.redo) == 0 {
		return nil, false
	}
	step := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	return step, true
}
