// Package highlight keeps lexer states of a document up to date in the
// background.
//
// An Indexer stores a lexer state checkpoint every Density code units as a
// zero-width decoration, so checkpoints follow edits like any other
// decoration. After an edit, work resumes at the last checkpoint before it
// and stops as soon as a re-lexed state equals the state already stored at
// the same place: everything after that point is known to be unchanged.
// This convergence check is what keeps re-highlighting after a keystroke
// proportional to the damage instead of to the document.
//
// Work runs in slices of Budget code units through a scheduler.Scheduler.
// Renderers ask StateAt for the checkpoint before the visible range and
// lex forward from there.
package highlight
