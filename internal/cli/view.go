package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	mio "github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/layout"
	"github.com/matzehuels/masonry/pkg/masonry"
	"github.com/matzehuels/masonry/pkg/sink"
	"github.com/matzehuels/masonry/pkg/surface"
)

const (
	// cellPx and rowPx map terminal cells to surface pixels.
	cellPx = 8.0
	rowPx  = 24.0

	// frameInterval is both the redraw rate and the virtual time that
	// passes per frame.
	frameInterval = 16 * time.Millisecond

	// stepsPerFrame bounds the loop tasks run between two frames.
	stepsPerFrame = 64

	defaultViewPage = 20
	defaultViewMax  = 500
)

// viewCommand creates the view command: an interactive wall that appends
// items as it is scrolled.
func (c *CLI) viewCommand() *cobra.Command {
	var (
		pageSize int
		maxItems int
		wall     *wallFlags
	)
	opts := c.defaultOptions()

	cmd := &cobra.Command{
		Use:   "view [items.json]",
		Short: "Browse a wall in the terminal with infinite scroll",
		Long: `Browse a wall in the terminal with infinite scroll.

Items are revealed a page at a time. Whenever the wall runs out of items
while a column end is on screen, the next page is appended. Without an
items file, sample items are generated on demand.

Keys: ↑/↓ scroll, pgup/pgdn page, g/G top/bottom, r redraw, ? help, q quit.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wall.apply(cmd, &opts)
			if err := opts.Wall.Validate(); err != nil {
				return err
			}
			src, err := viewSource(args, maxItems)
			if err != nil {
				return err
			}
			m := newViewModel(src, opts.Wall, pageSize, loggerFromContext(cmd.Context()))
			_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
			return err
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", defaultViewPage, "items appended per request")
	cmd.Flags().IntVar(&maxItems, "max-items", 0, "stop appending after this many items (default: all, or 500 samples)")
	wall = addWallFlags(cmd, &opts)

	return cmd
}

// itemSource returns up to n items starting at start. It returns fewer once
// the source is exhausted.
type itemSource func(start, n int) mio.Items

// viewSource returns the item source for the view command's arguments.
func viewSource(args []string, maxItems int) (itemSource, error) {
	if len(args) == 0 {
		if maxItems <= 0 {
			maxItems = defaultViewMax
		}
		return func(start, n int) mio.Items {
			return mio.Sample(start, max(min(n, maxItems-start), 0))
		}, nil
	}
	items, _, err := readInput(args[0])
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", args[0], err)
	}
	if maxItems > 0 && maxItems < len(items) {
		items = items[:maxItems]
	}
	return sliceSource(items), nil
}

func sliceSource(items mio.Items) itemSource {
	return func(start, n int) mio.Items {
		if start >= len(items) {
			return nil
		}
		return items[start:min(start+n, len(items))]
	}
}

// =============================================================================
// Model
// =============================================================================

type viewKeys struct {
	Up, Down, PageUp, PageDown, Top, Bottom key.Binding
	Redraw, Help, Quit                      key.Binding
}

func newViewKeys() viewKeys {
	return viewKeys{
		Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:   key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
		PageDown: key.NewBinding(key.WithKeys("pgdown", " ", "f"), key.WithHelp("pgdn", "page down")),
		Top:      key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
		Bottom:   key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
		Redraw:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "redraw")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
	}
}

func (k viewKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Bottom, k.Help, k.Quit}
}

func (k viewKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown},
		{k.Top, k.Bottom, k.Redraw},
		{k.Help, k.Quit},
	}
}

type frameMsg struct{}

func frame() tea.Cmd {
	return tea.Tick(frameInterval, func(time.Time) tea.Msg { return frameMsg{} })
}

// viewModel drives a wall on a surface sized to the terminal. The surface's
// loop is stepped a bounded number of tasks per frame and its clock moves by
// one frame interval, so throttled visibility updates arrive as in a browser.
type viewModel struct {
	source   itemSource
	pageSize int
	opts     masonry.Options
	logger   *log.Logger

	items mio.Items
	done  bool

	surface *surface.Surface
	wall    *masonry.Wall

	width, height int
	keys          viewKeys
	help          help.Model
}

func newViewModel(src itemSource, opts masonry.Options, pageSize int, logger *log.Logger) *viewModel {
	if pageSize <= 0 {
		pageSize = defaultViewPage
	}
	h := help.New()
	h.ShowAll = false
	return &viewModel{
		source:   src,
		pageSize: pageSize,
		opts:     opts.Normalize(),
		logger:   logger,
		keys:     newViewKeys(),
		help:     h,
	}
}

func (m *viewModel) Init() tea.Cmd {
	return frame()
}

// bodyRows is the terminal height left for the wall.
func (m *viewModel) bodyRows() int {
	return max(m.height-2, 1)
}

func (m *viewModel) mount() {
	m.items = append(m.items, m.source(0, m.pageSize)...)
	m.surface = surface.New(float64(m.width)*cellPx, float64(m.bodyRows())*rowPx, func(i int, w float64) float64 {
		return m.items.Height(i, w)
	})
	m.wall = masonry.New(
		masonry.BacklogFunc(func() int { return len(m.items) }),
		m.surface.Host(m.opts.Throttle),
		masonry.WithOptions(m.opts),
		masonry.WithAppendHandler(m.appendPage),
		masonry.WithLogger(m.logger),
	)
	m.surface.Attach(m.wall)
	m.wall.Mount()
}

// appendPage answers the wall's append request with the next page, but only
// while the end of a column is on screen.
func (m *viewModel) appendPage() {
	if m.done || !m.surface.AnyVisible() {
		return
	}
	page := m.source(len(m.items), m.pageSize)
	if len(page) == 0 {
		m.done = true
		return
	}
	m.items = append(m.items, page...)
	m.surface.Loop().Post(m.wall.Fill)
}

// step runs queued loop tasks and then lets one frame of virtual time pass.
func (m *viewModel) step() {
	for range stepsPerFrame {
		if !m.surface.Loop().Step() {
			break
		}
	}
	clock := m.surface.Clock()
	clock.AdvanceTo(clock.Now().Add(frameInterval))
}

func (m *viewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		if m.surface == nil {
			m.mount()
		} else {
			m.surface.Resize(float64(m.width)*cellPx, float64(m.bodyRows())*rowPx)
		}
		return m, nil

	case frameMsg:
		if m.surface != nil {
			m.step()
		}
		return m, frame()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			if m.wall != nil {
				m.wall.Destroy()
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
		if m.surface == nil {
			return m, nil
		}
		page := m.surface.Viewport()
		switch {
		case key.Matches(msg, m.keys.Up):
			m.surface.ScrollBy(-3 * rowPx)
		case key.Matches(msg, m.keys.Down):
			m.surface.ScrollBy(3 * rowPx)
		case key.Matches(msg, m.keys.PageUp):
			m.surface.ScrollBy(-page)
		case key.Matches(msg, m.keys.PageDown):
			m.surface.ScrollBy(page)
		case key.Matches(msg, m.keys.Top):
			m.surface.Scroll(0)
		case key.Matches(msg, m.keys.Bottom):
			m.surface.ScrollToBottom()
		case key.Matches(msg, m.keys.Redraw):
			m.surface.Loop().Post(m.wall.Redraw)
		}
	}
	return m, nil
}

// layout returns the wall as currently placed.
func (m *viewModel) layout() layout.Layout {
	return layout.New(m.wall.Snapshot(), m.wall.Options(), m.surface.Geometry(), m.items)
}

func (m *viewModel) View() string {
	if m.surface == nil {
		return StyleDim.Render("measuring...")
	}
	l := m.layout()
	header := fmt.Sprintf("%s  %s columns  %s/%s placed  %s",
		StyleTitle.Render(appName),
		StyleNumber.Render(fmt.Sprint(len(l.Columns))),
		StyleNumber.Render(fmt.Sprint(l.Cursor)),
		StyleNumber.Render(fmt.Sprint(len(m.items))),
		StyleDim.Render(l.State.String()),
	)
	if m.done {
		header += StyleDim.Render("  (end)")
	}

	rows := m.bodyRows()
	body := visibleLines(sink.RenderText(l,
		sink.WithTextWidth(m.width),
		sink.WithTextScale(rowPx),
		sink.WithTextColors(colorCyan, colorGreen, colorYellow, colorBlue, colorRed),
	),
		m.surface.ScrollTop(), l.Geometry.Height, rows)

	return header + "\n" + body + "\n" + m.help.View(m.keys)
}

// visibleLines slices the rendered wall to the rows under the viewport. The
// text rendering is not pixel exact, so the scroll offset is mapped by
// proportion of the wall's height.
func visibleLines(text string, scrollTop, wallHeight float64, rows int) string {
	lines := strings.Split(text, "\n")
	start := 0
	if wallHeight > 0 {
		start = int(math.Round(scrollTop / wallHeight * float64(len(lines))))
	}
	start = min(max(start, 0), max(len(lines)-rows, 0))
	end := min(start+rows, len(lines))
	out := lines[start:end]
	for len(out) < rows {
		out = append(out, "")
	}
	return strings.Join(out, "\n")
}
