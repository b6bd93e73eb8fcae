package masonry

import (
	"encoding/json"
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/masonry/pkg/errors"
)

// jsonEqual reports whether two JSON documents decode to the same value.
func jsonEqual(t *testing.T, got, want string) bool {
	t.Helper()
	var g, w any
	if err := json.Unmarshal([]byte(got), &g); err != nil {
		t.Fatalf("decode %s: %v", got, err)
	}
	if err := json.Unmarshal([]byte(want), &w); err != nil {
		t.Fatalf("decode %s: %v", want, err)
	}
	return reflect.DeepEqual(g, w)
}

func TestNormalize(t *testing.T) {
	o := Options{}.Normalize()
	if o.Width != DefaultWidth {
		t.Errorf("Width = %v, want %v", o.Width, DefaultWidth)
	}
	if o.Throttle != DefaultThrottle {
		t.Errorf("Throttle = %v, want %v", o.Throttle, DefaultThrottle)
	}
	if got := o.Padding.Resolve(3); got != DefaultPadding {
		t.Errorf("Padding.Resolve(3) = %v, want %v", got, DefaultPadding)
	}

	o = Options{Width: 250, Throttle: NoThrottle}.Normalize()
	if o.Width != 250 || o.Throttle != NoThrottle {
		t.Errorf("Normalize() = %+v, want width 250 and no throttle", o)
	}
}

func TestValidate(t *testing.T) {
	if err := DefaultOptions().Validate(); err != nil {
		t.Errorf("DefaultOptions().Validate() error: %v", err)
	}
	if err := (Options{}).Validate(); err != nil {
		t.Errorf("Options{}.Validate() error: %v", err)
	}

	bad := []Options{
		{Width: -1},
		{Width: math.Inf(1)},
		{Padding: UniformPadding(-2)},
		{Padding: PaddingByColumns(12, map[int]float64{0: 4})},
		{Padding: PaddingByColumns(12, map[int]float64{2: math.NaN()})},
	}
	for _, o := range bad {
		err := o.Validate()
		if !errors.Is(err, errors.ErrCodeInvalidOptions) {
			t.Errorf("Validate(%+v) error = %v, want %s", o, err, errors.ErrCodeInvalidOptions)
		}
	}
}

func TestPaddingResolve(t *testing.T) {
	p := PaddingByColumns(12, map[int]float64{2: 8, 4: 0})
	tests := []struct {
		name    string
		padding Padding
		columns int
		want    float64
	}{
		{"zero value", Padding{}, 2, 12},
		{"uniform", UniformPadding(20), 5, 20},
		{"uniform zero", UniformPadding(0), 5, 0},
		{"by columns", p, 2, 8},
		{"by columns default", p, 3, 12},
		{"explicit zero", p, 4, 0},
		{"zero default", PaddingByColumns(0, map[int]float64{2: 8}), 3, 12},
	}
	for _, tt := range tests {
		if got := tt.padding.Resolve(tt.columns); got != tt.want {
			t.Errorf("%s: Resolve(%d) = %v, want %v", tt.name, tt.columns, got, tt.want)
		}
	}
}

func TestPaddingJSON(t *testing.T) {
	var p Padding
	if err := json.Unmarshal([]byte(`{"default": 12, "2": 8}`), &p); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if p.Resolve(2) != 8 || p.Resolve(3) != 12 {
		t.Errorf("Resolve(2), Resolve(3) = %v, %v, want 8, 12", p.Resolve(2), p.Resolve(3))
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !jsonEqual(t, string(out), `{"default": 12, "2": 8}`) {
		t.Errorf("Marshal() = %s, want {\"default\": 12, \"2\": 8}", out)
	}

	if err := json.Unmarshal([]byte(`16`), &p); err != nil {
		t.Fatalf("Unmarshal(16) error: %v", err)
	}
	if got := p.Resolve(1); got != 16 {
		t.Errorf("Resolve(1) = %v, want 16", got)
	}
	out, err = json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if string(out) != "16" {
		t.Errorf("Marshal() = %s, want 16", out)
	}

	for _, in := range []string{`{"wide": 3}`, `"12px"`} {
		if err := json.Unmarshal([]byte(in), &p); err == nil {
			t.Errorf("Unmarshal(%s) succeeded, want error", in)
		}
	}
}

func TestOptionsJSON(t *testing.T) {
	var o Options
	if err := json.Unmarshal([]byte(`{"width": 250, "padding": {"default": 10, "3": 6}, "throttle": 150}`), &o); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if o.Width != 250 || o.Throttle != 150*time.Millisecond {
		t.Errorf("Width, Throttle = %v, %v, want 250, 150ms", o.Width, o.Throttle)
	}
	if o.Padding.Resolve(3) != 6 || o.Padding.Resolve(2) != 10 {
		t.Errorf("Resolve(3), Resolve(2) = %v, %v, want 6, 10", o.Padding.Resolve(3), o.Padding.Resolve(2))
	}

	out, err := json.Marshal(Options{Width: 300, Throttle: 300 * time.Millisecond})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if !jsonEqual(t, string(out), `{"width": 300, "throttle": 300}`) {
		t.Errorf("Marshal() = %s, want {\"width\": 300, \"throttle\": 300}", out)
	}

	out, err = json.Marshal(Options{Throttle: NoThrottle})
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}
	if err := json.Unmarshal(out, &o); err != nil {
		t.Fatalf("Unmarshal(%s) error: %v", out, err)
	}
	if o.Throttle != NoThrottle {
		t.Errorf("Throttle = %v, want %v", o.Throttle, NoThrottle)
	}
}

func TestOptionsJSONMergesOverCurrentValues(t *testing.T) {
	o := Options{Width: 300, Padding: UniformPadding(20), Throttle: 500 * time.Millisecond}
	if err := json.Unmarshal([]byte(`{"width": 200}`), &o); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if o.Width != 200 {
		t.Errorf("Width = %v, want 200", o.Width)
	}
	if got := o.Padding.Resolve(2); got != 20 {
		t.Errorf("Padding.Resolve(2) = %v, want 20 (kept)", got)
	}
	if o.Throttle != 500*time.Millisecond {
		t.Errorf("Throttle = %v, want 500ms (kept)", o.Throttle)
	}

	if err := json.Unmarshal([]byte(`{"throttle": -1}`), &o); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if o.Width != 200 || o.Throttle != NoThrottle {
		t.Errorf("Width, Throttle = %v, %v, want 200, %v", o.Width, o.Throttle, NoThrottle)
	}

	if err := json.Unmarshal([]byte(`{}`), &o); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if o.Width != 200 || o.Padding.Resolve(3) != 20 {
		t.Errorf("empty object changed options to %+v", o)
	}
}

func TestPaddingTOML(t *testing.T) {
	var cfg struct {
		A Padding `toml:"a"`
		B Padding `toml:"b"`
		C Padding `toml:"c"`
	}
	_, err := toml.Decode(`
a = 16
b = 7.5
c = { default = 12, 2 = 8 }
`, &cfg)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	if got := cfg.A.Resolve(3); got != 16 {
		t.Errorf("a.Resolve(3) = %v, want 16", got)
	}
	if got := cfg.B.Resolve(1); got != 7.5 {
		t.Errorf("b.Resolve(1) = %v, want 7.5", got)
	}
	if cfg.C.Resolve(2) != 8 || cfg.C.Resolve(3) != 12 {
		t.Errorf("c.Resolve(2), c.Resolve(3) = %v, %v, want 8, 12", cfg.C.Resolve(2), cfg.C.Resolve(3))
	}

	var bad struct {
		P Padding `toml:"p"`
	}
	if _, err := toml.Decode(`p = "wide"`, &bad); err == nil {
		t.Error(`Decode(p = "wide") succeeded, want error`)
	}
}
