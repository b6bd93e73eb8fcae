// Package io provides JSON import and export for masonry items.
//
// # JSON Format
//
// An items document is either a bare array or an object with an "items"
// array:
//
//	{
//	  "items": [
//	    {"id": "a", "label": "Sunset", "height": 240},
//	    {"id": "b", "aspect": 1.5},
//	    {"id": "c"}
//	  ]
//	}
//
// # Item Fields
//
// All fields are optional:
//   - id: identifier carried into rendered output (defaults to the index)
//   - label: display text (defaults to the id)
//   - height: content height in pixels, independent of column width
//   - aspect: height-to-width ratio, used when height is absent, so the item
//     scales with its column like an image would
//   - meta: freeform object passed through to JSON output
//
// Items with neither height nor aspect get [DefaultHeight].
//
// # Import
//
// Use [ImportJSON] to read items from a file path, or [ReadJSON] to read
// from any io.Reader. Both validate the document: negative or non-finite
// sizes and more than [errors.MaxItems] items are rejected.
//
// # Export
//
// Use [ExportJSON] or [WriteJSON] to write items back in the object form.
//
// [errors.MaxItems]: github.com/matzehuels/masonry/pkg/errors.MaxItems
package io
