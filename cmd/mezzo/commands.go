package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/mezzoeditor/mezzo-sub000/internal/engine/document"
	"github.com/mezzoeditor/mezzo-sub000/internal/engine/text"
	"github.com/mezzoeditor/mezzo-sub000/internal/highlight"
	"github.com/mezzoeditor/mezzo-sub000/internal/scheduler"
	"github.com/mezzoeditor/mezzo-sub000/internal/search"
	"github.com/mezzoeditor/mezzo-sub000/internal/watch"
)

func newStatsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "stats FILE",
		Short: "Print length, line and width statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			t := doc.Text()
			_, _, longest := t.Metrics().Widths(t.Measurer().DefaultWidth())
			fmt.Fprintf(a.stdout, "length:       %d\n", t.Length())
			fmt.Fprintf(a.stdout, "lines:        %d\n", t.LineCount())
			fmt.Fprintf(a.stdout, "longest line: %d columns, width %g\n", t.LongestLine(), longest)
			fmt.Fprintf(a.stdout, "chunk size:   %d\n", t.ChunkSize())
			return nil
		},
	}
}

func newPositionCmd(a *app) *cobra.Command {
	var clamp bool
	cmd := &cobra.Command{
		Use:   "position FILE OFFSET|LINE:COLUMN",
		Short: "Convert between offsets and 0-based line:column positions",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			t := doc.Text()
			if line, column, ok := strings.Cut(args[1], ":"); ok {
				pos, err := parsePosition(line, column)
				if err != nil {
					return err
				}
				offset, err := t.PositionToOffset(pos, clamp)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "%s -> %d\n", pos, offset)
				return nil
			}
			offset, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid offset %q: %w", args[1], err)
			}
			fmt.Fprintf(a.stdout, "%d -> %s\n", offset, t.OffsetToPosition(offset))
			return nil
		},
	}
	cmd.Flags().BoolVar(&clamp, "clamp", false, "clamp positions past a line or the text end")
	return cmd
}

func parsePosition(line, column string) (text.Position, error) {
	l, err := strconv.Atoi(line)
	if err != nil {
		return text.Position{}, fmt.Errorf("invalid line %q: %w", line, err)
	}
	c, err := strconv.Atoi(column)
	if err != nil {
		return text.Position{}, fmt.Errorf("invalid column %q: %w", column, err)
	}
	return text.Position{Line: l, Column: c}, nil
}

func newHighlightCmd(a *app) *cobra.Command {
	var from, to, line int
	var checkpoints bool
	cmd := &cobra.Command{
		Use:   "highlight FILE",
		Short: "Print comment and string spans of a C-like file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			loop := scheduler.NewLoop()
			var lexer highlight.CommentLexer
			ix := highlight.New[highlight.CommentState](doc, lexer, scheduler.NewIdle(loop), a.cfg.HighlightOptions())
			defer ix.Close()
			slices := loop.RunIdle(cmd.Context())
			a.log.Debug("indexed in %d slices", slices)

			if checkpoints {
				for _, cp := range ix.Checkpoints() {
					fmt.Fprintf(a.stdout, "%d\t%s\n", cp.Offset, cp.State.Mode)
				}
				return nil
			}

			t := doc.Text()
			if line >= 0 {
				if from, err = t.LineStart(line); err != nil {
					return err
				}
				if to, err = t.LineEnd(line); err != nil {
					return err
				}
			}
			if to < 0 || to > t.Length() {
				to = t.Length()
			}
			from = min(max(from, 0), to)
			cp := ix.StateAt(from)
			for _, span := range lexer.Tokenize(t, cp.Offset, to, cp.State) {
				if span.To <= from || span.Kind == highlight.KindCode {
					continue
				}
				start := max(span.From, from)
				fmt.Fprintf(a.stdout, "%d-%d\t%s\t%q\n", start, span.To, span.Kind, t.Content(start, span.To))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&from, "from", 0, "first offset to print")
	cmd.Flags().IntVar(&to, "to", -1, "offset to stop at (default: end of text)")
	cmd.Flags().IntVar(&line, "line", -1, "print only this 0-based line (overrides --from and --to)")
	cmd.Flags().BoolVar(&checkpoints, "checkpoints", false, "print lexer checkpoints instead of spans")
	return cmd
}

func newSearchCmd(a *app) *cobra.Command {
	var opts search.Options
	var count bool
	var markers int
	cmd := &cobra.Command{
		Use:   "search FILE QUERY",
		Short: "Print every match of QUERY",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			loop := scheduler.NewLoop()
			s := search.New(doc, scheduler.NewIdle(loop), a.cfg.SearchOptions(a.log))
			defer s.Close()
			s.Find(args[1], opts)
			loop.RunIdle(cmd.Context())

			switch {
			case count:
				fmt.Fprintln(a.stdout, s.MatchCount())
			case markers > 0:
				buckets, err := s.Markers(markers)
				if err != nil {
					return err
				}
				for _, b := range buckets {
					fmt.Fprintf(a.stdout, "%d-%d\n", b*markers, (b+1)*markers)
				}
			default:
				t := doc.Text()
				for _, m := range s.Matches() {
					fmt.Fprintf(a.stdout, "%s\t%d-%d\t%q\n", t.OffsetToPosition(m.From), m.From, m.To, t.Content(m.From, m.To))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&opts.CaseInsensitive, "ignore-case", "i", false, "match case-insensitively")
	cmd.Flags().BoolVarP(&opts.WholeWord, "word", "w", false, "match whole words only")
	cmd.Flags().BoolVar(&count, "count", false, "print the number of matches only")
	cmd.Flags().IntVar(&markers, "markers", 0, "coalesce matches into buckets of this many code units")
	return cmd
}

func newWatchCmd(a *app) *cobra.Command {
	var query, metricsAddr string
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch FILE",
		Short: "Follow a file on disk, reporting the edits and search matches",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			doc, err := a.open(args[0])
			if err != nil {
				return err
			}
			if metricsAddr != "" {
				srv := serveMetrics(metricsAddr, a)
				defer srv.Close()
			}
			w, err := watch.New(args[0], watch.Config{Debounce: debounce, Logger: a.log})
			if err != nil {
				return err
			}
			changes, err := w.Start()
			if err != nil {
				return err
			}
			defer w.Stop()
			return followFile(ctx, a, doc, changes, query)
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "keep searching for this query")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve prometheus metrics on this address")
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "wait this long for writes to settle")
	return cmd
}

// followFile applies changes to doc until ctx is done or the watcher
// stops. Background work runs between changes.
func followFile(ctx context.Context, a *app, doc *document.Document, changes <-chan watch.Change, query string) error {
	loop := scheduler.NewLoop()
	var s *search.Search
	if query != "" {
		cfg := a.cfg.SearchOptions(a.log)
		printed := -1
		cfg.OnChange = func(st search.Status) {
			if st.Enabled && st.Count != printed {
				printed = st.Count
				fmt.Fprintf(a.stdout, "%d matches\n", st.Count)
			}
		}
		s = search.New(doc, scheduler.NewIdle(loop), cfg)
		defer s.Close()
		s.Find(query, search.Options{})
	}

	for {
		loop.RunIdle(ctx)
		select {
		case <-ctx.Done():
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			if c.Err != nil {
				a.log.Warn("%v", c.Err)
				continue
			}
			n, err := watch.Apply(doc, c.Content)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "revision %d: %d edits, length %d\n", doc.Revision(), n, doc.Length())
		}
	}
}

func serveMetrics(addr string, a *app) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server: %v", err)
		}
	}()
	return srv
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "mezzo %s\n", version)
			fmt.Fprintf(a.stdout, "Commit: %s\n", commit)
			fmt.Fprintf(a.stdout, "Built: %s\n", date)
		},
	}
}
