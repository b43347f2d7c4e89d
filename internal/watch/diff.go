// Package watch keeps a document in sync with a file on disk.
//
// When the file changes, the new content is diffed against the document
// and only the differing parts are replaced, so decorations, highlight
// checkpoints and search matches outside them survive the reload.
package watch

import (
	"slices"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/document"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/metrics"
)

// DiffTimeout bounds the time spent looking for a minimal diff. Past it
// the diff is still correct but may replace more than necessary.
const DiffTimeout = time.Second

// Diff returns the edits turning old into new, highest offset first, ready
// for Document.ApplyEdits. Offsets are UTF-16 code units.
func Diff(old, new string) []document.Edit {
	if old == new {
		return nil
	}
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = DiffTimeout
	diffs := dmp.DiffMain(old, new, false)
	diffs = dmp.DiffCleanupEfficiency(diffs)

	var (
		edits   []document.Edit
		pending *document.Edit
		offset  int
	)
	flush := func() {
		if pending != nil {
			edits = append(edits, *pending)
			pending = nil
		}
	}
	for _, d := range diffs {
		n := metrics.UTF16Len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			offset += n
		case diffmatchpatch.DiffDelete:
			if pending == nil {
				pending = &document.Edit{Range: document.Range{Start: offset, End: offset}}
			}
			pending.Range.End += n
			offset += n
		case diffmatchpatch.DiffInsert:
			if pending == nil {
				pending = &document.Edit{Range: document.Range{Start: offset, End: offset}}
			}
			pending.NewText += d.Text
		}
	}
	flush()
	slices.Reverse(edits)
	return edits
}

// Apply replaces the content of doc with content using the minimal edits
// found by Diff, as a single undo step. It returns the number of edits.
func Apply(doc *document.Document, content string) (int, error) {
	edits := Diff(doc.Text().String(), content)
	if len(edits) == 0 {
		return 0, nil
	}
	if err := doc.ApplyEdits(edits); err != nil {
		return 0, err
	}
	return len(edits), nil
}
