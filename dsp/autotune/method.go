package autotune

import (
	"fmt"
	"strings"
)

// Method selects how a detected trajectory is corrected.
type Method int

const (
	// MethodNearestNote rounds to the nearest semitone.
	MethodNearestNote Method = iota
	// MethodScale snaps to a scale and median-smooths the result.
	MethodScale
)

var methodNames = map[string]Method{
	"closest":      MethodNearestNote,
	"nearest":      MethodNearestNote,
	"nearest-note": MethodNearestNote,
	"nearest_note": MethodNearestNote,
	"scale":        MethodScale,
}

// ParseMethod parses a correction method name. It accepts "closest",
// "nearest", "nearest-note" and "scale", case-insensitively.
func ParseMethod(name string) (Method, error) {
	if m, ok := methodNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return m, nil
	}
	return 0, fmt.Errorf("autotune: unknown correction method %q", name)
}

func (m Method) String() string {
	switch m {
	case MethodNearestNote:
		return "closest"
	case MethodScale:
		return "scale"
	default:
		return fmt.Sprintf("Method(%d)", int(m))
	}
}
