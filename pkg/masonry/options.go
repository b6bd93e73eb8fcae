package masonry

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/matzehuels/masonry/pkg/errors"
)

// Default option values.
const (
	// DefaultWidth is the target column width in pixels.
	DefaultWidth = 300.0

	// DefaultPadding is the padding used when none is configured or a
	// per-column mapping has no default.
	DefaultPadding = 12.0

	// DefaultThrottle is the minimum interval between visibility evaluations.
	DefaultThrottle = 300 * time.Millisecond

	// NoThrottle disables visibility throttling at the observer boundary.
	NoThrottle time.Duration = -1
)

// Options configures a wall.
//
// Zero fields take their defaults (see [Options.Normalize]). Throttle is not
// applied by the wall itself: hosts read it and rate-limit their visibility
// observer with it.
type Options struct {
	Width    float64       // target column width in pixels
	Padding  Padding       // gap between lanes and items
	Throttle time.Duration // minimum interval between visibility evaluations
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width:    DefaultWidth,
		Padding:  Padding{},
		Throttle: DefaultThrottle,
	}
}

// Normalize returns a copy of o with zero values replaced by defaults.
func (o Options) Normalize() Options {
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Throttle == 0 {
		o.Throttle = DefaultThrottle
	}
	return o
}

// Validate reports whether the normalized options are usable.
func (o Options) Validate() error {
	n := o.Normalize()
	if err := errors.ValidateWidth("width", n.Width); err != nil {
		return err
	}
	return n.Padding.Validate()
}

type optionsJSON struct {
	Width    float64  `json:"width,omitempty"`
	Padding  *Padding `json:"padding,omitempty"`
	Throttle *float64 `json:"throttle,omitempty"` // milliseconds
}

// MarshalJSON encodes the options with the throttle in milliseconds.
func (o Options) MarshalJSON() ([]byte, error) {
	out := optionsJSON{Width: o.Width}
	if !o.Padding.IsZero() {
		p := o.Padding
		out.Padding = &p
	}
	if o.Throttle != 0 {
		ms := float64(o.Throttle) / float64(time.Millisecond)
		if o.Throttle < 0 {
			ms = -1
		}
		out.Throttle = &ms
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes {"width": 300, "padding": 12, "throttle": 300}.
// The throttle is given in milliseconds; a negative value disables it.
// Fields missing from the input keep their current value, so a partial
// object can be decoded over defaults.
func (o *Options) UnmarshalJSON(data []byte) error {
	var in struct {
		Width    *float64 `json:"width"`
		Padding  *Padding `json:"padding"`
		Throttle *float64 `json:"throttle"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Width != nil {
		o.Width = *in.Width
	}
	if in.Padding != nil {
		o.Padding = *in.Padding
	}
	if in.Throttle != nil {
		if *in.Throttle < 0 {
			o.Throttle = NoThrottle
		} else {
			o.Throttle = time.Duration(*in.Throttle * float64(time.Millisecond))
		}
	}
	return nil
}

// Padding is either a single pixel value used for every column count, or a
// mapping from column count to pixels with a fallback default.
//
// The zero Padding resolves to [DefaultPadding].
type Padding struct {
	// Uniform, when non-nil, applies regardless of column count.
	Uniform *float64

	// ByColumns maps a column count to its padding.
	ByColumns map[int]float64

	// Default applies to column counts missing from ByColumns.
	// Zero falls back to DefaultPadding.
	Default float64
}

// UniformPadding returns a padding of px for every column count.
func UniformPadding(px float64) Padding {
	return Padding{Uniform: &px}
}

// PaddingByColumns returns a per-column-count padding with a fallback.
func PaddingByColumns(def float64, byColumns map[int]float64) Padding {
	return Padding{Default: def, ByColumns: byColumns}
}

// IsZero reports whether no padding was configured.
func (p Padding) IsZero() bool {
	return p.Uniform == nil && len(p.ByColumns) == 0 && p.Default == 0
}

// Resolve returns the padding in pixels for the given column count.
func (p Padding) Resolve(columns int) float64 {
	if p.Uniform != nil {
		return *p.Uniform
	}
	if v, ok := p.ByColumns[columns]; ok {
		return v
	}
	if p.Default != 0 {
		return p.Default
	}
	return DefaultPadding
}

// Validate rejects negative or non-finite pixel values.
func (p Padding) Validate() error {
	check := errors.ValidateNonNegative
	if p.Uniform != nil {
		if err := check("padding", *p.Uniform); err != nil {
			return err
		}
	}
	if err := check("padding.default", p.Default); err != nil {
		return err
	}
	for n, v := range p.ByColumns {
		if n < 1 {
			return errors.New(errors.ErrCodeInvalidOptions, "padding key %d is not a column count", n)
		}
		if err := check(fmt.Sprintf("padding.%d", n), v); err != nil {
			return err
		}
	}
	return nil
}

// MarshalJSON encodes a uniform padding as a number and a mapping as an
// object with a "default" key.
func (p Padding) MarshalJSON() ([]byte, error) {
	if p.Uniform != nil {
		return json.Marshal(*p.Uniform)
	}
	keys := make([]int, 0, len(p.ByColumns))
	for k := range p.ByColumns {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var buf bytes.Buffer
	buf.WriteByte('{')
	fmt.Fprintf(&buf, `"default":%s`, strconv.FormatFloat(p.Resolve(-1), 'f', -1, 64))
	for _, k := range keys {
		fmt.Fprintf(&buf, `,"%d":%s`, k, strconv.FormatFloat(p.ByColumns[k], 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts 12 or {"default": 12, "2": 8}.
func (p *Padding) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*p = Padding{}
		return nil
	}
	if len(data) > 0 && data[0] != '{' {
		var v float64
		if err := json.Unmarshal(data, &v); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidOptions, err, "padding must be a number or an object")
		}
		*p = UniformPadding(v)
		return nil
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidOptions, err, "padding object values must be numbers")
	}
	generic := make(map[string]any, len(raw))
	for k, v := range raw {
		generic[k] = v
	}
	return p.fromMap(generic)
}

// UnmarshalTOML implements toml.Unmarshaler, accepting `padding = 12` or
// `padding = { default = 12, 2 = 8 }`.
func (p *Padding) UnmarshalTOML(v any) error {
	switch val := v.(type) {
	case int64:
		*p = UniformPadding(float64(val))
		return nil
	case float64:
		*p = UniformPadding(val)
		return nil
	case map[string]any:
		return p.fromMap(val)
	default:
		return errors.New(errors.ErrCodeInvalidOptions, "padding must be a number or a table, got %T", v)
	}
}

func (p *Padding) fromMap(m map[string]any) error {
	out := Padding{ByColumns: map[int]float64{}}
	for k, raw := range m {
		v, ok := toFloat(raw)
		if !ok {
			return errors.New(errors.ErrCodeInvalidOptions, "padding.%s must be a number", k)
		}
		if k == "default" {
			out.Default = v
			continue
		}
		n, err := strconv.Atoi(k)
		if err != nil {
			return errors.New(errors.ErrCodeInvalidOptions, "padding key %q is neither \"default\" nor a column count", k)
		}
		out.ByColumns[n] = v
	}
	if len(out.ByColumns) == 0 {
		out.ByColumns = nil
	}
	*p = out
	return nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
