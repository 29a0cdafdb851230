package store

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMerge = errors.New("patch does not fit the cached entity")

// Patch holds the fields changed by an update, keyed by their JSON names.
type Patch map[string]any

// merge applies patch over item with shallow semantics: top level fields named in the patch are
// replaced wholesale, the rest are kept.
func merge[T any](item T, patch Patch) (T, error) {
	var merged T
	raw, err := json.Marshal(item)
	if err != nil {
		return merged, fmt.Errorf("%w: %s", ErrMerge, err)
	}

	fields := map[string]json.RawMessage{}
	if err = json.Unmarshal(raw, &fields); err != nil {
		return merged, fmt.Errorf("%w: %s", ErrMerge, err)
	}

	for k, v := range patch {
		b, err := json.Marshal(v)
		if err != nil {
			return merged, fmt.Errorf("%w: field %s: %s", ErrMerge, k, err)
		}
		fields[k] = b
	}

	raw, err = json.Marshal(fields)
	if err != nil {
		return merged, fmt.Errorf("%w: %s", ErrMerge, err)
	}
	if err = json.Unmarshal(raw, &merged); err != nil {
		return merged, fmt.Errorf("%w: %s", ErrMerge, err)
	}
	return merged, nil
}
