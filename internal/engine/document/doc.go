// Package document is the edit layer over the persistent text.
//
// A Document holds the current *text.Text and applies edits to it. After
// each edit it calls the registered replace listeners, in registration
// order, with a Replacement describing the edit:
//
//	doc := document.FromString("Hello World")
//	marks := decoration.New[string]()
//	doc.OnReplace(func(r document.Replacement) {
//	    marks.Replace(r.From(), r.To(), r.Inserted.Length())
//	})
//	doc.Insert(5, ",")
//
// Listeners must not modify the document they observe; such edits fail
// with ErrReentrantEdit.
//
// Every Replace or ApplyEdits call is one undo step. Undo and Redo replay
// steps through the same listener path, so anything kept in sync with
// OnReplace follows history too.
package document
