package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/masonry/pkg/cache"
	"github.com/matzehuels/masonry/pkg/errors"
	"github.com/matzehuels/masonry/pkg/io"
	"github.com/matzehuels/masonry/pkg/masonry"
)

func fixedItems(n int, h float64) io.Items {
	items := make(io.Items, n)
	for i := range items {
		items[i] = io.Item{ID: string(rune('a' + i%26)), Height: h}
	}
	return items
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"html", false},
		{"text", false},
		{"json", false},
		{"png", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %v", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "json"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestValidateStyle(t *testing.T) {
	tests := []struct {
		style   string
		wantErr bool
	}{
		{"simple", false},
		{"outline", false},
		{"handdrawn", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStyle(tt.style)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateStyle(%q) error = %v, wantErr %v", tt.style, err, tt.wantErr)
		}
	}
}

func TestOptionsDefaults(t *testing.T) {
	var opts Options
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}

	if opts.ViewportWidth != DefaultViewportWidth || opts.ViewportHeight != DefaultViewportHeight {
		t.Errorf("viewport = %gx%g", opts.ViewportWidth, opts.ViewportHeight)
	}
	if opts.Wall.Width != masonry.DefaultWidth {
		t.Errorf("Wall.Width = %v, want %v", opts.Wall.Width, masonry.DefaultWidth)
	}
	if opts.Wall.Throttle != masonry.DefaultThrottle {
		t.Errorf("Wall.Throttle = %v", opts.Wall.Throttle)
	}
	if !reflect.DeepEqual(opts.Formats, []string{FormatJSON}) {
		t.Errorf("Formats = %v", opts.Formats)
	}
	if opts.Style != DefaultStyle || opts.TextWidth != DefaultTextWidth {
		t.Errorf("Style = %q, TextWidth = %d", opts.Style, opts.TextWidth)
	}
	if opts.MaxScrolls != 0 {
		t.Errorf("MaxScrolls = %d without paging, want 0", opts.MaxScrolls)
	}
	if opts.Logger == nil {
		t.Error("Logger should be set")
	}

	paged := Options{PageSize: 5}
	if err := paged.ValidateForLayout(); err != nil {
		t.Fatal(err)
	}
	if paged.MaxScrolls != DefaultMaxScrolls {
		t.Errorf("MaxScrolls = %d with paging, want %d", paged.MaxScrolls, DefaultMaxScrolls)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative width", Options{Wall: masonry.Options{Width: -1}}, errors.ErrCodeInvalidOptions},
		{"negative viewport", Options{ViewportWidth: -5}, errors.ErrCodeInvalidOptions},
		{"negative page size", Options{PageSize: -1}, errors.ErrCodeInvalidOptions},
		{"bad format", Options{Formats: []string{"pdf"}}, errors.ErrCodeInvalidFormat},
		{"bad style", Options{Style: "fancy"}, errors.ErrCodeInvalidOptions},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestLayoutKeyOptsDistinguishOptions(t *testing.T) {
	a := Options{}
	b := Options{Wall: masonry.Options{Padding: masonry.UniformPadding(4)}}
	a.SetLayoutDefaults()
	b.SetLayoutDefaults()

	k := cache.NewDefaultKeyer()
	if k.LayoutKey("h", a.LayoutKeyOpts()) == k.LayoutKey("h", b.LayoutKeyOpts()) {
		t.Error("padding should change the layout key")
	}
	if a.ArtifactKeyOpts(FormatSVG).Style != DefaultStyle {
		t.Error("svg artifact key should carry the style")
	}
}

func TestSimulatePlacesEveryItem(t *testing.T) {
	l, err := Simulate(context.Background(), fixedItems(10, 100), Options{})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	if len(l.Columns) != 4 {
		t.Errorf("columns = %d, want 4", len(l.Columns))
	}
	if l.Cursor != 10 || len(l.Items) != 10 || len(l.Geometry.Boxes) != 10 {
		t.Errorf("cursor = %d, items = %d, boxes = %d", l.Cursor, len(l.Items), len(l.Geometry.Boxes))
	}
	if !l.Ready || l.State != masonry.StateReady {
		t.Errorf("ready = %v, state = %v", l.Ready, l.State)
	}
	sizes := make([]int, len(l.Columns))
	for i, c := range l.Columns {
		sizes[i] = len(c.Indexes)
	}
	if !reflect.DeepEqual(sizes, []int{3, 3, 2, 2}) {
		t.Errorf("column sizes = %v, want [3 3 2 2]", sizes)
	}
	if l.Viewport.Width != DefaultViewportWidth {
		t.Errorf("viewport = %+v", l.Viewport)
	}
}

func TestSimulateStaticKeepsHint(t *testing.T) {
	l, err := Simulate(context.Background(), fixedItems(7, 100), Options{Hint: 3, Static: true})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(l.Columns) != 3 {
		t.Fatalf("columns = %d, want 3", len(l.Columns))
	}
	want := [][]int{{0, 3, 6}, {1, 4}, {2, 5}}
	for i, c := range l.Columns {
		if !reflect.DeepEqual(c.Indexes, want[i]) {
			t.Errorf("column %d = %v, want %v", i, c.Indexes, want[i])
		}
	}
	if l.Hint != 3 {
		t.Errorf("Hint = %d", l.Hint)
	}
}

func TestSimulateReplacesHintWhenMeasured(t *testing.T) {
	l, err := Simulate(context.Background(), fixedItems(7, 100), Options{Hint: 3})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if len(l.Columns) != 4 || l.Cursor != 7 {
		t.Errorf("columns = %d, cursor = %d", len(l.Columns), l.Cursor)
	}
}

func TestSimulatePaging(t *testing.T) {
	l, err := Simulate(context.Background(), fixedItems(60, 300), Options{PageSize: 10})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if l.Cursor != 60 {
		t.Errorf("cursor = %d, want 60", l.Cursor)
	}
	if l.Stats.Pages != 6 {
		t.Errorf("pages = %d, want 6", l.Stats.Pages)
	}
	if l.Stats.Scrolls == 0 || l.Stats.Appends == 0 {
		t.Errorf("stats = %+v", l.Stats)
	}
	if err := l.Verify(); err != nil {
		t.Error(err)
	}
}

func TestSimulatePagingStopsAtMaxScrolls(t *testing.T) {
	l, err := Simulate(context.Background(), fixedItems(60, 300), Options{PageSize: 10, MaxScrolls: 1})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if l.Stats.Scrolls != 1 {
		t.Errorf("scrolls = %d, want 1", l.Stats.Scrolls)
	}
	if l.Cursor >= 60 || l.Cursor < 10 {
		t.Errorf("cursor = %d, want a partial wall", l.Cursor)
	}
	if l.Cursor != l.Stats.Pages*10 {
		t.Errorf("cursor = %d after %d pages", l.Cursor, l.Stats.Pages)
	}
}

func TestSimulateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Simulate(ctx, fixedItems(3, 100), Options{})
	if !errors.Is(err, errors.ErrCodeTimeout) {
		t.Errorf("err = %v, want TIMEOUT", err)
	}
}

func TestSimulateBudget(t *testing.T) {
	_, err := Simulate(context.Background(), fixedItems(50, 100), Options{Budget: 3})
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("err = %v, want INTERNAL_ERROR", err)
	}
}

func TestSimulateEmpty(t *testing.T) {
	l, err := Simulate(context.Background(), nil, Options{})
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if l.Cursor != 0 || len(l.Columns) != 4 || !l.Ready {
		t.Errorf("cursor = %d, columns = %d, ready = %v", l.Cursor, len(l.Columns), l.Ready)
	}
}

func TestRenderAllFormats(t *testing.T) {
	l, err := Simulate(context.Background(), fixedItems(5, 100), Options{})
	if err != nil {
		t.Fatal(err)
	}
	opts := Options{Formats: []string{FormatJSON, FormatSVG, FormatHTML, FormatText}, Title: "demo"}
	artifacts, err := Render(l, opts)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	if !json.Valid(artifacts[FormatJSON]) {
		t.Error("json artifact is not valid JSON")
	}
	if !bytes.HasPrefix(artifacts[FormatSVG], []byte("<svg")) {
		t.Errorf("svg artifact = %.40q", artifacts[FormatSVG])
	}
	if !bytes.Contains(artifacts[FormatHTML], []byte("<title>demo</title>")) {
		t.Error("html artifact should carry the title")
	}
	if len(artifacts[FormatText]) == 0 {
		t.Error("text artifact is empty")
	}

	if _, err := RenderFormat(l, "pdf", opts); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("RenderFormat(pdf) err = %v", err)
	}
}

func TestRenderSVGOptions(t *testing.T) {
	l, err := Simulate(context.Background(), fixedItems(5, 100), Options{})
	if err != nil {
		t.Fatal(err)
	}
	labeled, _ := RenderFormat(l, FormatSVG, Options{Style: StyleSimple})
	bare, _ := RenderFormat(l, FormatSVG, Options{Style: StyleSimple, NoLabels: true})
	if !strings.Contains(string(labeled), "<text") {
		t.Error("labels expected by default")
	}
	if strings.Contains(string(bare), "<text") {
		t.Error("NoLabels should omit labels")
	}
}

func TestRunnerCaching(t *testing.T) {
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, nil)
	defer runner.Close()

	ctx := context.Background()
	items := fixedItems(12, 150)
	opts := Options{Formats: []string{FormatJSON, FormatSVG}}

	first, err := runner.Execute(ctx, items, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if first.CacheInfo.LayoutHit || first.CacheInfo.RenderHit {
		t.Errorf("first run cache info = %+v", first.CacheInfo)
	}
	if first.Layout.ID == "" {
		t.Error("layout should get an id")
	}
	if first.Stats.ItemCount != 12 || first.Stats.Columns != 4 {
		t.Errorf("stats = %+v", first.Stats)
	}
	if first.ItemsHash != HashItems(items) {
		t.Error("items hash mismatch")
	}

	second, err := runner.Execute(ctx, items, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !second.CacheInfo.LayoutHit || !second.CacheInfo.RenderHit {
		t.Errorf("second run cache info = %+v", second.CacheInfo)
	}
	if second.Layout.ID != first.Layout.ID {
		t.Errorf("layout id changed: %s != %s", second.Layout.ID, first.Layout.ID)
	}
	for _, f := range opts.Formats {
		if !bytes.Equal(first.Artifacts[f], second.Artifacts[f]) {
			t.Errorf("%s artifact differs between runs", f)
		}
	}

	opts.Refresh = true
	third, err := runner.Execute(ctx, items, opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if third.CacheInfo.LayoutHit || third.CacheInfo.RenderHit {
		t.Errorf("refresh should bypass the cache: %+v", third.CacheInfo)
	}
	if third.Layout.ID != first.Layout.ID {
		t.Error("layout ids are derived from the cache key")
	}
}

func TestRunnerDifferentItemsMiss(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	ctx := context.Background()

	a, err := runner.Layout(ctx, fixedItems(4, 100), Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := runner.Layout(ctx, fixedItems(5, 100), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Error("different items should yield different layout ids")
	}
}

func TestRunnerInvalidOptions(t *testing.T) {
	runner := NewRunner(nil, nil, nil)
	_, err := runner.Execute(context.Background(), fixedItems(1, 100), Options{Formats: []string{"gif"}})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestCloneResetsValidation(t *testing.T) {
	base := Options{Formats: []string{FormatSVG}}
	if err := base.ValidateAndSetDefaults(); err != nil {
		t.Fatal(err)
	}

	c := base.Clone()
	c.Formats[0] = "gif"
	if base.Formats[0] != FormatSVG {
		t.Error("Clone should not share Formats")
	}
	if err := c.ValidateAndSetDefaults(); err == nil {
		t.Error("clone should be validated again")
	}
}
