package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// loadEvolveProfile reads an evolve request from a JSON profile. Numbers
// arrive as float64 from encoding/json, so every field goes through a
// coercion helper; unknown keys are ignored.
func loadEvolveProfile(path string) (evolveRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return evolveRequest{}, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return evolveRequest{}, err
	}

	var req evolveRequest
	if v, ok := asString(raw["type"]); ok {
		req.Type = v
	}
	if v, ok := asInt(raw["population"]); ok {
		req.Population = v
	}
	if v, ok := asInt(raw["generations"]); ok {
		req.Generations = v
	}
	if v, ok := asUint64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if v, ok := asInt(raw["elite"]); ok {
		req.Elite = v
	}
	if v, ok := asFloat64(raw["goal"]); ok {
		req.Goal = v
	}
	if v, ok := asString(raw["target"]); ok {
		req.TargetPath = v
	}
	return req, nil
}

func loadOrDefaultEvolveRequest(profilePath string) (evolveRequest, error) {
	if profilePath == "" {
		return evolveRequest{}, nil
	}
	req, err := loadEvolveProfile(profilePath)
	if err != nil {
		return evolveRequest{}, fmt.Errorf("load profile: %w", err)
	}
	return req, nil
}

// overrideEvolveFlags applies the flags the user actually set on top of a
// profile-loaded request.
func overrideEvolveFlags(req *evolveRequest, set map[string]bool, flagValue map[string]any) {
	for name := range set {
		v, ok := flagValue[name]
		if !ok {
			continue
		}
		switch name {
		case "type":
			req.Type = v.(string)
		case "pop":
			req.Population = v.(int)
		case "gens":
			req.Generations = v.(int)
		case "seed":
			req.Seed = v.(uint64)
		case "workers":
			req.Workers = v.(int)
		case "elite":
			req.Elite = v.(int)
		case "goal":
			req.Goal = v.(float64)
		case "target":
			req.TargetPath = v.(string)
		}
	}
	if req.Type == "" {
		req.Type = "Critter"
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asUint64(v any) (uint64, bool) {
	switch x := v.(type) {
	case uint64:
		return x, true
	case int:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	case float64:
		if x < 0 {
			return 0, false
		}
		return uint64(x), true
	default:
		return 0, false
	}
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	default:
		return 0, false
	}
}
