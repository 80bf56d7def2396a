package ast

import "fmt"

// enumName returns names[v] or a placeholder for out-of-range values.
func enumName[T ~uint8](v T, names []string) string {
	if int(v) < len(names) && names[v] != "" {
		return names[v]
	}
	return fmt.Sprintf("<%d>", v)
}

// parseEnum is the inverse of enumName.
func parseEnum[T ~uint8](text []byte, names []string, what string) (T, error) {
	s := string(text)
	for i, name := range names {
		if name == s {
			return T(i), nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", what, s)
}
