package masonry

import (
	"math"

	"github.com/matzehuels/masonry/pkg/observability"
)

// fill drains the backlog one item per layout settle until it runs out or
// the wall stops being ready.
func (w *Wall) fill() {
	defer w.settleState()

	if !w.ready {
		return
	}
	if w.cursor >= w.backlog.Len() {
		w.logger.Debug("backlog drained, requesting more items", "cursor", w.cursor)
		observability.Wall().OnAppend(w.cursor)
		if w.onAppend != nil {
			w.onAppend()
		}
		return
	}

	w.inflight++
	w.host.AwaitLayoutSettle(w.resume)
}

// resume is the continuation of fill after the layout settled. The wall may
// have been reset or destroyed while it was suspended.
func (w *Wall) resume() {
	w.inflight--
	if !w.ready {
		w.settleState()
		return
	}
	if !w.addItem(w.tallestSentinel()) {
		w.settleState()
		return
	}
	w.fill()
}

// tallestSentinel returns the column whose sentinel measures tallest, the
// first one on ties. A sentinel stretches to the wall's bottom, so this is
// the column with the least content.
func (w *Wall) tallestSentinel() int {
	best, bestHeight := -1, 0.0
	for i := range w.columns {
		h := w.host.SentinelHeight(i)
		if math.IsNaN(h) {
			h = 0
		}
		if best < 0 || h > bestHeight {
			best, bestHeight = i, h
		}
	}
	return best
}

// addItem places the item at the cursor into column. It reports false only
// when the assignment itself is invalid; a cursor past the end of a shrunken
// backlog is skipped silently.
func (w *Wall) addItem(column int) bool {
	if w.cursor >= w.backlog.Len() {
		w.logger.Debug("no item at cursor, skipping", "cursor", w.cursor, "items", w.backlog.Len())
		return true
	}
	if err := w.columns.Assign(column, w.cursor); err != nil {
		w.logger.Error("assign failed", "err", err)
		return false
	}
	observability.Wall().OnAssign(column, w.cursor)
	w.cursor++
	return true
}
