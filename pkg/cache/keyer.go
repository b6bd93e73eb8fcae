package cache

// Keyer derives cache keys.
type Keyer interface {
	// LayoutKey identifies a layout computed from the items with the given
	// content hash.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string

	// ArtifactKey identifies a rendering of the layout with the given
	// content hash.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every option that changes a computed layout.
type LayoutKeyOpts struct {
	ColumnWidth    float64 `json:"column_width"`
	Padding        string  `json:"padding"` // encoded padding option
	ThrottleMs     float64 `json:"throttle_ms"`
	ViewportWidth  float64 `json:"viewport_width"`
	ViewportHeight float64 `json:"viewport_height"`
	Hint           int     `json:"hint"`
	PageSize       int     `json:"page_size"`
	MaxScrolls     int     `json:"max_scrolls"`
	Static         bool    `json:"static"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
	Style  string `json:"style,omitempty"` // SVG style or HTML title
	Labels bool   `json:"labels,omitempty"`
	Width  int    `json:"width,omitempty"`
}

// DefaultKeyer hashes key options into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// LayoutKey returns "layout:<sha256>".
func (DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}
