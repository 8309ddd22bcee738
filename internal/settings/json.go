package settings

import (
	"encoding/json"
	"errors"
	"fmt"
)

// pathKey holds the source path in snapshots, which is why no parameter may
// claim the name.
const pathKey = "path"

// Serialize records the whole file, values and source path, into a JSON
// object for embedding in save files. Subconfig parameters nest their own
// object.
func (f *File) Serialize() (json.RawMessage, error) {
	obj := make(map[string]json.RawMessage, len(f.params)+1)
	raw, err := json.Marshal(f.path)
	if err != nil {
		return nil, err
	}
	obj[pathKey] = raw
	for _, v := range f.params {
		raw, err := v.marshal()
		if err != nil {
			return nil, fmt.Errorf("serializing %s.%s: %w", f.name, v.Name(), err)
		}
		obj[v.Name()] = raw
	}
	return json.Marshal(obj)
}

// Deserialize restores the file from a snapshot. Parameters at or below
// Load origin take the stored value; environment values, overrides and the
// like keep their say, while constants always track the snapshot.
// Parameters the snapshot lacks are reported to the diagnostics writer and
// kept as is.
func (f *File) Deserialize(data []byte) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("deserializing %s: %w", f.name, err)
	}
	if raw, ok := obj[pathKey]; ok {
		if err := json.Unmarshal(raw, &f.path); err != nil {
			return fmt.Errorf("deserializing %s: bad path: %w", f.name, err)
		}
	}
	var errs []error
	for _, v := range f.params {
		raw, ok := obj[v.Name()]
		if !ok {
			fmt.Fprintf(f.diag, "unable to find field %s in config file %s\n", v.Name(), f.name)
			continue
		}
		if err := v.unmarshal(raw); err != nil {
			errs = append(errs, fmt.Errorf("field %s: %w", v.Name(), err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("deserializing %s: %w", f.name, err)
	}
	return nil
}
