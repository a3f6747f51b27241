package tree

import (
	"strconv"
	"strings"
)

// DefaultDelimiter separates node path segments unless configured otherwise.
const DefaultDelimiter = "."

// Lookup is the outcome of resolving a path: either a found value (which may
// be nil) or nothing at all.
type Lookup struct {
	value any
	found bool
}

// Found wraps a present value.
func Found(value any) Lookup {
	return Lookup{value: value, found: true}
}

// NotFound is the result for a path that does not exist.
func NotFound() Lookup {
	return Lookup{}
}

// Value returns the resolved value and whether it exists.
func (l Lookup) Value() (any, bool) {
	return l.value, l.found
}

// Missing reports whether the path did not exist.
func (l Lookup) Missing() bool {
	return !l.found
}

// Resolve walks path through root. An empty path or the delimiter alone
// addresses root itself. A key matching the whole path is preferred over
// splitting it.
func Resolve(root any, path string, delimiter string) Lookup {
	if path == "" || path == delimiter {
		return Found(root)
	}

	if value, ok := Child(root, path); ok {
		return Found(value)
	}

	if delimiter == "" || !strings.Contains(path, delimiter) {
		return NotFound()
	}

	current := root
	for _, segment := range strings.Split(path, delimiter) {
		next, ok := Child(current, segment)
		if !ok {
			return NotFound()
		}
		current = next
	}

	return Found(current)
}

// Child returns the direct child of container addressed by key. Lists are
// indexed by the key's integer value.
func Child(container any, key string) (any, bool) {
	switch current := container.(type) {
	case *Map:
		return current.Get(key)
	case []any:
		index, err := strconv.Atoi(key)
		if err != nil || index < 0 || index >= len(current) {
			return nil, false
		}
		return current[index], true
	default:
		return nil, false
	}
}
