// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/magpierre/engarde/datatable"
)

// LoadJSON reads a JSON file holding an array of objects, a single object
// or one object per line. Columns appear in order of first appearance;
// objects missing a key get a null. Nested values are kept as JSON text.
func LoadJSON(ctx context.Context, path string, opts Options) (*datatable.Frame, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read JSON file: %w", err)
	}
	return ReadJSON(ctx, bytes.NewReader(content), opts)
}

// ReadJSON is LoadJSON for in-memory data.
func ReadJSON(ctx context.Context, r io.Reader, opts Options) (*datatable.Frame, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()

	var objects []map[string]any
	var names []string
	seen := make(map[string]bool)
	add := func() error {
		obj, keys, err := readObject(dec)
		if err != nil {
			return err
		}
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
		objects = append(objects, obj)
		return nil
	}

	tok, err := dec.Token()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: JSON file is empty", datatable.ErrEmptyData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	switch tok {
	case json.Delim('['):
		for dec.More() {
			if err := expectDelim(dec, '{'); err != nil {
				return nil, err
			}
			if err := add(); err != nil {
				return nil, err
			}
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, err
		}
	case json.Delim('{'):
		for {
			if err := add(); err != nil {
				return nil, err
			}
			err := expectDelim(dec, '{')
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, err
			}
		}
	default:
		return nil, fmt.Errorf("failed to parse JSON: expected an object or array, got %v", tok)
	}

	if len(objects) == 0 || len(names) == 0 {
		return nil, fmt.Errorf("%w: JSON file has no records", datatable.ErrEmptyData)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rows := make([][]any, len(objects))
	for i, obj := range objects {
		row := make([]any, len(names))
		for j, name := range names {
			row[j] = obj[name]
		}
		rows[i] = row
	}
	f, err := datatable.FromRecords(names, rows, indexOption(opts)...)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame from JSON: %w", err)
	}
	return apply(ctx, f, opts)
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok != want {
		return fmt.Errorf("failed to parse JSON: expected %v, got %v", want, tok)
	}
	return nil
}

// readObject reads the members of an object whose opening brace has been
// consumed, including the closing brace.
func readObject(dec *json.Decoder) (map[string]any, []string, error) {
	obj := make(map[string]any)
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON: %w", err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, nil, fmt.Errorf("failed to parse JSON: expected a key, got %v", tok)
		}
		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, nil, fmt.Errorf("failed to parse JSON value for %q: %w", key, err)
		}
		switch v.(type) {
		case map[string]any, []any:
			b, err := json.Marshal(v)
			if err != nil {
				return nil, nil, err
			}
			v = string(b)
		}
		if _, dup := obj[key]; !dup {
			keys = append(keys, key)
		}
		obj[key] = v
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, nil, err
	}
	return obj, keys, nil
}

func indexOption(opts Options) []datatable.FrameOption {
	if opts.Index == "" {
		return nil
	}
	return []datatable.FrameOption{datatable.WithIndexColumn(opts.Index)}
}
