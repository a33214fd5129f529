package input

import (
	"os/exec"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
)

// Backend opens capture sessions on the devices it knows about.
type Backend interface {
	// Init should do nothing if called more than once.
	Init() error
	Close() error

	Devices() ([]Device, error)
	DefaultDevice() (Device, error)
	Start(SessionConfig) (Session, error)
}

type NamedBackend struct {
	Name string
	Backend
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Backend{}
)

// preferred lists backends to try, in order, per platform. Each is paired
// with the tool it shells out to.
var preferred = map[string][][2]string{
	"linux": {
		{"parec", "parec"},
		{"ffmpeg-pulse", "ffmpeg"},
		{"ffmpeg-alsa", "ffmpeg"},
	},
	"darwin":  {{"ffmpeg-avfoundation", "ffmpeg"}},
	"windows": {{"ffmpeg-dshow", "ffmpeg"}},
}

// lookPath is swapped out in tests.
var lookPath = exec.LookPath

// RegisterBackend registers a backend under name, replacing any backend
// already registered with that name. Backends register themselves on init().
func RegisterBackend(name string, b Backend) {
	registryMu.Lock()
	defer registryMu.Unlock()

	registry[name] = b
}

// Backends returns every registered backend sorted by name.
func Backends() []NamedBackend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]NamedBackend, 0, len(registry))
	for name, b := range registry {
		out = append(out, NamedBackend{Name: name, Backend: b})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })

	return out
}

// BackendNames returns the sorted names of all registered backends.
func BackendNames() []string {
	backends := Backends()

	names := make([]string, len(backends))
	for i, b := range backends {
		names[i] = b.Name
	}

	return names
}

// DefaultBackend picks the first preferred backend for this platform whose
// tool is installed. It returns "" when there is none.
func DefaultBackend() string {
	return defaultBackendFor(runtime.GOOS)
}

func defaultBackendFor(goos string) string {
	for _, pair := range preferred[goos] {
		if !HasBackend(pair[0]) {
			continue
		}

		if path, _ := lookPath(pair[1]); path != "" {
			return pair[0]
		}
	}

	return ""
}

// FindBackend returns the backend registered as name, or nil.
func FindBackend(name string) Backend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	return registry[name]
}

func HasBackend(name string) bool {
	return FindBackend(name) != nil
}

// InitBackend finds and initializes a backend.
func InitBackend(name string) (Backend, error) {
	backend := FindBackend(name)
	if backend == nil {
		return nil, errors.Errorf("backend not found: %q; check list-backends", name)
	}

	if err := backend.Init(); err != nil {
		return nil, errors.Wrapf(err, "failed to initialize backend %q", name)
	}

	return backend, nil
}

// GetDevice resolves a device name on backend. An empty name is the default
// device. Names match exactly first, then by a case insensitive substring
// that only one device contains.
func GetDevice(backend Backend, name string) (Device, error) {
	if name == "" {
		def, err := backend.DefaultDevice()
		if err != nil {
			return nil, errors.Wrap(err, "failed to get default device")
		}
		return def, nil
	}

	devices, err := backend.Devices()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get devices")
	}

	var partial []Device
	needle := strings.ToLower(name)

	for _, d := range devices {
		if d.String() == name {
			return d, nil
		}

		if strings.Contains(strings.ToLower(d.String()), needle) {
			partial = append(partial, d)
		}
	}

	switch len(partial) {
	case 0:
		return nil, errors.Errorf("device %q not found; check list-devices", name)
	case 1:
		return partial[0], nil
	default:
		return nil, errors.Errorf("device %q matches %d devices; check list-devices", name, len(partial))
	}
}
