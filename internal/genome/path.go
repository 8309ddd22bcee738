package genome

import (
	"fmt"
	"strconv"
	"strings"
)

// GetField resolves a dotted, indexed path such as "span[1]" or
// "eyes.angle" to the rendered value of the target. The head segment matches
// a field name, falling back to aliases.
func (r *Registry[G]) GetField(g *G, path string) (string, error) {
	head, rest := path, ""
	if i := strings.IndexAny(path, ".["); i >= 0 {
		head, rest = path[:i], path[i:]
	}
	if head == "" {
		return "", fmt.Errorf("empty field path %q", path)
	}
	i, ok := r.byName[head]
	if !ok {
		i, ok = r.byAlias[head]
	}
	if !ok {
		return "", fmt.Errorf("unknown field %q in %s", head, r.name)
	}
	return r.fields[i].Extract(g, rest)
}

// parseIndex reads a leading "[n]" segment.
func parseIndex(path string) (int, string, error) {
	if !strings.HasPrefix(path, "[") {
		return 0, "", fmt.Errorf("expected index, got %q", path)
	}
	end := strings.IndexByte(path, ']')
	if end < 0 {
		return 0, "", fmt.Errorf("unterminated index in %q", path)
	}
	i, err := strconv.Atoi(path[1:end])
	if err != nil {
		return 0, "", fmt.Errorf("bad index in %q", path)
	}
	return i, path[end+1:], nil
}
