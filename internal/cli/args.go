package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/minkowski/internal/spacetime"
)

// parseEvent parses "[label:]t,x".
func parseEvent(s string) (spacetime.Event, error) {
	label, body := splitLabel(s)
	parts := strings.Split(body, ",")
	if len(parts) != 2 {
		return spacetime.Event{}, fmt.Errorf("event %q: want [label:]t,x", s)
	}
	vals, err := parseFloats(s, parts)
	if err != nil {
		return spacetime.Event{}, err
	}
	return spacetime.Event{T: vals[0], X: vals[1], Label: label}, nil
}

// parseWorldLine parses "[label:]x0,v[,t0]".
func parseWorldLine(s string) (spacetime.WorldLine, error) {
	label, body := splitLabel(s)
	parts := strings.Split(body, ",")
	if len(parts) != 2 && len(parts) != 3 {
		return spacetime.WorldLine{}, fmt.Errorf("world line %q: want [label:]x0,v[,t0]", s)
	}
	vals, err := parseFloats(s, parts)
	if err != nil {
		return spacetime.WorldLine{}, err
	}
	w := spacetime.WorldLine{X0: vals[0], V: vals[1], Label: label}
	if len(vals) == 3 {
		w.T0 = vals[2]
	}
	return w, nil
}

func parseWorldLines(args []string) ([]spacetime.WorldLine, error) {
	lines := make([]spacetime.WorldLine, 0, len(args))
	for _, arg := range args {
		w, err := parseWorldLine(arg)
		if err != nil {
			return nil, err
		}
		lines = append(lines, w)
	}
	return lines, nil
}

// parseDirection accepts "right", "left", "+1", "1" and "-1".
func parseDirection(s string) (spacetime.Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "right", "+1", "1":
		return spacetime.Rightward, nil
	case "left", "-1":
		return spacetime.Leftward, nil
	}
	return 0, fmt.Errorf("direction %q: want right or left", s)
}

func splitLabel(s string) (string, string) {
	if label, body, ok := strings.Cut(s, ":"); ok {
		return strings.TrimSpace(label), body
	}
	return "", s
}

func parseFloats(src string, parts []string) ([]float64, error) {
	vals := make([]float64, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("%q: %q is not a number", src, p)
		}
		vals[i] = f
	}
	return vals, nil
}
