package io

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/masonry/pkg/errors"
)

type document struct {
	Items Items `json:"items"`
}

// ReadJSON decodes an items document from r.
//
// The input is either `[...]` or `{"items": [...]}`. Missing ids are set to
// the item's index. ReadJSON returns an ErrCodeInvalidInput error when the
// document is malformed, holds too many items or has invalid sizes.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (Items, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return DecodeJSON(data)
}

// DecodeJSON decodes an items document held in memory.
func DecodeJSON(data []byte) (Items, error) {
	data = bytes.TrimSpace(data)
	var items Items
	if len(data) > 0 && data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode items")
		}
	} else {
		var doc document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode items")
		}
		items = doc.Items
	}

	if err := errors.ValidateItemCount(len(items)); err != nil {
		return nil, err
	}
	if err := items.validate(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid items")
	}
	items.normalize()
	return items, nil
}

// ImportJSON reads an items document from the file at path.
func ImportJSON(path string) (Items, error) {
	if err := errors.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes items as `{"items": [...]}` and writes them to w.
func WriteJSON(items Items, w io.Writer) error {
	if items == nil {
		items = Items{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(document{Items: items}); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportJSON writes items to a JSON file at path.
func ExportJSON(items Items, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(items, f)
}
