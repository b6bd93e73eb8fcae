package pipeline

import (
	"context"

	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/surface"
)

// Simulate mounts a wall over items on a headless surface and runs the event
// loop until the wall settles.
//
// With a PageSize, only the first page is revealed up front. Each append
// request raised while a sentinel is on screen reveals the next page and
// resumes filling, and the viewport is scrolled to the bottom until every
// item is placed or MaxScrolls passes ran.
func Simulate(ctx context.Context, items io.Items, opts Options) (layout.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return layout.Layout{}, err
	}
	if err := errors.ValidateItemCount(len(items)); err != nil {
		return layout.Layout{}, err
	}
	logger := opts.Logger

	revealed := len(items)
	if opts.PageSize > 0 {
		revealed = min(opts.PageSize, len(items))
	}

	var sopts []surface.Option
	if opts.Static {
		sopts = append(sopts, surface.WithoutLiveWidth())
	}
	s := surface.New(opts.ViewportWidth, opts.ViewportHeight, items.Height, sopts...)

	stats := layout.Stats{Pages: 1}
	var w *masonry.Wall
	reveal := func() {
		stats.Appends++
		if revealed >= len(items) || !s.AnyVisible() {
			return
		}
		revealed = min(revealed+opts.PageSize, len(items))
		stats.Pages++
		logger.Debug("revealing page", "page", stats.Pages, "items", revealed)
		s.Loop().Post(w.Fill)
	}

	w = masonry.New(
		masonry.BacklogFunc(func() int { return revealed }),
		s.Host(opts.Wall.Throttle),
		masonry.WithOptions(opts.Wall),
		masonry.WithServerHint(opts.Hint),
		masonry.WithAppendHandler(reveal),
		masonry.WithLogger(logger),
	)
	s.Attach(w)
	defer w.Destroy()

	run := func() error {
		if err := ctx.Err(); err != nil {
			return errors.Wrap(errors.ErrCodeTimeout, err, "layout canceled")
		}
		remaining := opts.Budget - stats.Steps
		if remaining <= 0 {
			return errors.New(errors.ErrCodeInternal, "layout did not settle within %d tasks", opts.Budget)
		}
		n, err := s.Run(remaining)
		stats.Steps += n
		return err
	}

	w.Mount()
	if err := run(); err != nil {
		return layout.Layout{}, err
	}

	for revealed < len(items) && stats.Scrolls < opts.MaxScrolls {
		cursor, before := w.Cursor(), revealed
		s.ScrollToBottom()
		stats.Scrolls++
		if err := run(); err != nil {
			return layout.Layout{}, err
		}
		if w.Cursor() == cursor && revealed == before {
			logger.Debug("scroll made no progress", "cursor", cursor, "revealed", revealed)
			break
		}
	}

	l := layout.New(w.Snapshot(), w.Options(), s.Geometry(), items)
	l.Viewport = layout.Viewport{Width: opts.ViewportWidth, Height: opts.ViewportHeight}
	l.Hint = opts.Hint
	l.Stats = stats
	if err := l.Verify(); err != nil {
		return layout.Layout{}, errors.Wrap(errors.ErrCodeInternal, err, "invalid layout")
	}
	return l, nil
}
