package frame

import "fmt"

// Backend selects the uniform naming convention a page's shaders were
// written against.
type Backend string

const (
	// BackendImmediate matches the immediate-mode canvas pages.
	BackendImmediate Backend = "immediate"
	// BackendScene matches the scene-graph pages with an orbit camera.
	BackendScene Backend = "scene"
)

// ParseBackend accepts an empty string as the immediate backend.
func ParseBackend(s string) (Backend, error) {
	switch Backend(s) {
	case "", BackendImmediate:
		return BackendImmediate, nil
	case BackendScene:
		return BackendScene, nil
	}
	return "", fmt.Errorf("unknown backend %q", s)
}

// Names are the uniform names written every frame.
type Names struct {
	Resolution     string
	Time           string
	Mouse          string
	CameraPosition string
	ViewMatrix     string
}

// NamesFor returns the built-in names of a backend.
func NamesFor(b Backend) Names {
	if b == BackendScene {
		return Names{
			Resolution:     "uResolution",
			Time:           "uTime",
			Mouse:          "uMouse",
			CameraPosition: "cameraPosition",
			ViewMatrix:     "viewMatrix",
		}
	}
	return Names{
		Resolution: "resolution",
		Time:       "uSeconds",
		Mouse:      "uMouse",
	}
}

func (n Names) withDefaults() Names {
	if n == (Names{}) {
		return NamesFor(BackendImmediate)
	}
	return n
}
