package genome

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// MarshalGenome serializes the genome as an alias-keyed JSON object.
func (r *Registry[G]) MarshalGenome(g *G) ([]byte, error) {
	obj := make(map[string]json.RawMessage, len(r.fields))
	for _, f := range r.fields {
		raw, err := f.ToJSON(g)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", f.Name(), err)
		}
		obj[f.Alias()] = raw
	}
	if r.ext.ToJSON != nil {
		if err := r.ext.ToJSON(obj, g); err != nil {
			return nil, err
		}
	}
	return json.Marshal(obj)
}

// UnmarshalGenome decodes an alias-keyed JSON object into g. Missing and
// extra keys are collected into a single error; the decoded copy is always
// bounds-checked and g is only overwritten on success.
func (r *Registry[G]) UnmarshalGenome(data []byte, g *G) error {
	return r.unmarshal(data, g, true)
}

func (r *Registry[G]) unmarshal(data []byte, g *G, check bool) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}

	var tmp G
	if r.ext.FromJSON != nil {
		if err := r.ext.FromJSON(obj, &tmp); err != nil {
			return err
		}
	}

	var problems []error
	for _, f := range r.fields {
		raw, present := obj[f.Alias()]
		if !present {
			problems = append(problems, fmt.Errorf("unable to find field %s", f.Name()))
			continue
		}
		if err := f.FromJSON(raw, &tmp); err != nil {
			return fmt.Errorf("field %s: %w", f.Name(), err)
		}
		delete(obj, f.Alias())
	}
	for _, key := range sortedKeys(obj) {
		problems = append(problems, fmt.Errorf("extra field %s", key))
	}

	if check {
		r.Check(&tmp)
	}
	if len(problems) > 0 {
		return errors.Join(problems...)
	}
	*g = tmp
	return nil
}

// ToFile bounds-checks the genome and writes its JSON form to path,
// appending the registry's file extension when path has none.
func (r *Registry[G]) ToFile(path string, g *G) error {
	if filepath.Ext(path) == "" {
		path += r.fileExt
	}
	r.Check(g)
	data, err := r.MarshalGenome(g)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("unable to write to %s: %w", path, err)
	}
	return nil
}

// FromFile loads a genome written by ToFile.
func (r *Registry[G]) FromFile(path string) (G, error) {
	var g G
	data, err := os.ReadFile(path)
	if err != nil {
		return g, err
	}
	if err := r.UnmarshalGenome(data, &g); err != nil {
		return g, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}
