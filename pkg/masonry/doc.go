// Package masonry arranges a growing list of variable-height items into a
// fixed number of vertical columns.
//
// # Overview
//
// A [Wall] owns three pieces of state: the column store ([Columns]), a cursor
// pointing at the next unplaced item, and a readiness flag. Items are never
// inspected; the wall only reasons about their indexes in the caller's
// backlog. Placement is append-only: an item, once assigned, stays in its
// column until the next full redraw.
//
// The rendering surface is abstracted behind a [Host]:
//
//   - [Measurer] reports the container width and the height of each column's
//     trailing sentinel region.
//   - [Observer] delivers sentinel visibility transitions and resize
//     notifications.
//   - [Settler] defers a continuation until the surface reflects every prior
//     column mutation (the "layout settle" point).
//
// [github.com/matzehuels/masonry/pkg/surface] provides a deterministic,
// headless Host for simulations and tests; the CLI's TUI hosts a wall inside
// a bubbletea program.
//
// # Column Count
//
// [ColumnCount] divides the container width by the target column width and
// rounds, never returning less than one column. The count is recomputed on
// mount and on every resize; an unchanged count is a no-op.
//
// # Filling
//
// When a sentinel becomes visible the wall drains its backlog one item at a
// time. Each step waits for the layout to settle, picks the column whose
// sentinel is tallest (the first one on ties) and appends the item at the
// cursor. Sentinels stretch to the bottom of the wall, so the tallest sentinel
// belongs to the column with the least content. When the backlog is exhausted
// the wall calls the append handler to request more items.
//
// Every suspended step re-checks readiness when it resumes and silently
// aborts when the wall was destroyed in the meantime.
//
// # Server Hint
//
// Without a live surface the container cannot be measured. [WithServerHint]
// seeds the wall with a fixed column count and distributes all current items
// round-robin (index mod count). Once mounted on a live surface the wall
// redraws if the measured count differs.
//
// # Usage
//
//	items := loadItems()
//	w := masonry.New(masonry.SliceBacklog(&items), host,
//	    masonry.WithOptions(masonry.Options{Width: 240, Padding: masonry.UniformPadding(8)}),
//	    masonry.WithAppendHandler(func() { items = append(items, nextPage()...) }),
//	)
//	w.Mount()
//	defer w.Destroy()
package masonry
