// Package search finds every occurrence of a query in a document in the
// background.
//
// Matches are kept in a decoration tree, so they follow edits for free;
// after an edit only the neighbourhood of the change is searched again. The
// part of the document still to be searched is tracked by a work.Allocator
// over match start offsets, and each scheduler slice searches at most
// Config.Budget code units:
//
//	loop := scheduler.NewLoop()
//	s := search.New(doc, scheduler.NewIdle(loop), search.Config{})
//	s.Find("needle", search.Options{CaseInsensitive: true})
//	loop.RunIdle(ctx)
//	fmt.Println(s.MatchCount())
//
// Matches never overlap. Scanning is greedy from left to right, and a
// candidate that would overlap a match kept from an earlier scan is
// skipped.
package search
