// Package loader maps protocol names to loaders and resolves references into text.
//
// A Registry is configuration: register every protocol before expansion
// starts, then share the registry read-only between concurrent runs.
// Register/Replace take the write lock, so a late registration is serialised
// against in-flight lookups rather than racing with them.
package loader

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"shaderpp/internal/ref"
)

var (
	// ErrUnknownProtocol reports a reference whose protocol has no registered loader.
	ErrUnknownProtocol = errors.New("unknown protocol")
	// ErrDuplicateProtocol reports an attempt to register a protocol name twice.
	ErrDuplicateProtocol = errors.New("protocol is already registered")
)

// UnknownProtocolError names the missing protocol and the reference that asked for it.
type UnknownProtocolError struct {
	Protocol string
	Ref      string
}

func (e *UnknownProtocolError) Error() string {
	return fmt.Sprintf("unknown protocol %q (%s)", e.Protocol, e.Ref)
}

// Is makes errors.Is(err, ErrUnknownProtocol) work.
func (e *UnknownProtocolError) Is(target error) bool {
	return target == ErrUnknownProtocol
}

// LoadError wraps a failure reported by a loader.
type LoadError struct {
	Ref string
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("failed to load %s: %v", e.Ref, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Loader fetches the raw text of a resource addressed by a canonical path.
// Within one preprocessing run a loader must behave as a pure function of path.
type Loader interface {
	Load(path string) (string, error)
}

// LoaderFunc adapts a plain function to Loader.
type LoaderFunc func(path string) (string, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (string, error) {
	return f(path)
}

// Canonicalizer is implemented by loaders with protocol-specific identity rules.
// Loaders without it get ref.Clean.
type Canonicalizer interface {
	Canonicalize(path string) (string, error)
}

// Namer is implemented by loaders that prefer a friendlier display name than protocol://path.
type Namer interface {
	Display(path string) string
}

var protocolNameRe = regexp.MustCompile(`^\w+$`)

// Registry is the protocol table of a preprocessing session.
type Registry struct {
	mu      sync.RWMutex
	loaders map[string]Loader
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{loaders: make(map[string]Loader)}
}

// NewDefaultRegistry returns a registry with the built-in local protocol rooted at base.
func NewDefaultRegistry(base string) *Registry {
	r := NewRegistry()
	r.loaders[ref.LocalProtocol] = NewLocal(base)
	return r
}

// Register adds a loader for name. Re-registration fails with ErrDuplicateProtocol; use Replace.
func (r *Registry) Register(name string, l Loader) error {
	if err := validateProtocol(name, l); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.loaders[name]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateProtocol, name)
	}
	r.loaders[name] = l
	return nil
}

// Replace installs l for name and returns the loader it displaced, if any.
func (r *Registry) Replace(name string, l Loader) (Loader, error) {
	if err := validateProtocol(name, l); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.loaders[name]
	r.loaders[name] = l
	return prev, nil
}

func validateProtocol(name string, l Loader) error {
	if !protocolNameRe.MatchString(name) {
		return fmt.Errorf("invalid protocol name %q: must match [A-Za-z0-9_]+", name)
	}
	if l == nil {
		return fmt.Errorf("nil loader for protocol %q", name)
	}
	return nil
}

// Lookup returns the loader registered for name.
func (r *Registry) Lookup(name string) (Loader, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	l, ok := r.loaders[name]
	return l, ok
}

// Protocols returns the registered protocol names in sorted order.
func (r *Registry) Protocols() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.loaders))
	for name := range r.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Canonicalize turns (protocol, path) into the key used for include-once tracking.
func (r *Registry) Canonicalize(protocol, path string) (ref.Key, error) {
	if strings.TrimSpace(path) == "" {
		return ref.Key{}, &ref.InvalidReferenceError{Ref: protocol + "://" + path, Reason: "empty path"}
	}
	l, ok := r.Lookup(protocol)
	if !ok {
		return ref.Key{}, &UnknownProtocolError{Protocol: protocol, Ref: protocol + "://" + path}
	}
	if c, ok := l.(Canonicalizer); ok {
		canonical, err := c.Canonicalize(path)
		if err != nil {
			return ref.Key{}, &ref.InvalidReferenceError{Ref: protocol + "://" + path, Reason: err.Error()}
		}
		return ref.Key{Protocol: protocol, Path: canonical}, nil
	}
	return ref.Key{Protocol: protocol, Path: ref.Clean(path)}, nil
}

// Load fetches the text behind key.
func (r *Registry) Load(key ref.Key) (string, error) {
	l, ok := r.Lookup(key.Protocol)
	if !ok {
		return "", &UnknownProtocolError{Protocol: key.Protocol, Ref: key.String()}
	}
	text, err := l.Load(key.Path)
	if err != nil {
		return "", &LoadError{Ref: r.Display(key), Err: err}
	}
	return text, nil
}

// Resolve parses raw, canonicalizes it as a top-level reference and loads it.
func (r *Registry) Resolve(raw string) (string, error) {
	parsed, err := ref.Parse(raw)
	if err != nil {
		return "", err
	}
	protocol, path := ref.Join(ref.Key{}, parsed)
	key, err := r.Canonicalize(protocol, path)
	if err != nil {
		return "", err
	}
	return r.Load(key)
}

// Display returns the human-facing name of key.
func (r *Registry) Display(key ref.Key) string {
	if l, ok := r.Lookup(key.Protocol); ok {
		if n, ok := l.(Namer); ok {
			return n.Display(key.Path)
		}
	}
	return key.String()
}
