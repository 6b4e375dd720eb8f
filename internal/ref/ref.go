// Package ref parses include references and turns them into canonical keys.
//
// A reference is either `protocol://path` or a bare path. Bare references at
// the top level belong to the local protocol; bare references found inside an
// included file are resolved against that file's directory and inherit its
// protocol (see Join).
//
// Two references that name the same resource must produce the same Key. The
// lexical rules here (separator folding, `.`/`..` collapsing, NFC) are the
// fallback every protocol gets; protocols with a richer notion of identity
// (the local filesystem) refine it in package loader.
package ref

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// LocalProtocol is the protocol used for bare top-level references.
const LocalProtocol = "local"

// ErrInvalidReference reports a malformed reference or include directive.
var ErrInvalidReference = errors.New("invalid reference")

// InvalidReferenceError carries the offending reference and the reason it was rejected.
type InvalidReferenceError struct {
	Ref    string
	Reason string
}

func (e *InvalidReferenceError) Error() string {
	return fmt.Sprintf("invalid reference %q: %s", e.Ref, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidReference) work for wrapped values.
func (e *InvalidReferenceError) Is(target error) bool {
	return target == ErrInvalidReference
}

func invalid(raw, reason string) error {
	return &InvalidReferenceError{Ref: raw, Reason: reason}
}

var (
	protocolRe = regexp.MustCompile(`^(\w+)://`)
	// похоже на префикс протокола, но без "//"
	brokenProtocolRe = regexp.MustCompile(`^(\w{2,}):(/?)($|[^/])`)
)

// Reference is a parsed, not yet canonical include reference.
type Reference struct {
	Raw      string
	Protocol string // empty when the reference had no prefix
	Path     string
}

// Explicit reports whether the reference carried its own protocol prefix.
func (r Reference) Explicit() bool {
	return r.Protocol != ""
}

// Parse splits raw into protocol and path.
// Single-letter prefixes such as `C:` are treated as drive letters, not protocols.
func Parse(raw string) (Reference, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Reference{}, invalid(raw, "empty reference")
	}
	if strings.HasPrefix(s, "://") {
		return Reference{}, invalid(raw, "empty protocol name")
	}
	if m := protocolRe.FindStringSubmatch(s); m != nil {
		path := s[len(m[0]):]
		if strings.TrimSpace(path) == "" {
			return Reference{}, invalid(raw, "empty path after protocol prefix")
		}
		return Reference{Raw: raw, Protocol: m[1], Path: path}, nil
	}
	if brokenProtocolRe.MatchString(s) {
		return Reference{}, invalid(raw, "unterminated protocol prefix (expected name://)")
	}
	return Reference{Raw: raw, Path: s}, nil
}

// Key is the canonical identity of a loadable resource.
type Key struct {
	Protocol string
	Path     string
}

// String renders the key as `protocol://path`.
func (k Key) String() string {
	return k.Protocol + "://" + k.Path
}

// IsZero reports whether k is the zero key.
func (k Key) IsZero() bool {
	return k.Protocol == "" && k.Path == ""
}

// Dir returns the key of the directory containing k.
func (k Key) Dir() Key {
	p := k.Path
	i := strings.LastIndexByte(p, '/')
	switch {
	case i < 0:
		p = ""
	case i == 0:
		p = "/"
	default:
		p = p[:i]
	}
	return Key{Protocol: k.Protocol, Path: p}
}

// Clean normalises path lexically: `\` and `/` are both separators, empty and
// `.` segments are dropped, `..` removes the previous segment (clamped at the
// root) and the result is NFC-normalised. A leading separator is preserved.
func Clean(path string) string {
	path = norm.NFC.String(path)
	abs := strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`)
	parts := strings.FieldsFunc(path, func(r rune) bool { return r == '/' || r == '\\' })

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		switch part {
		case ".":
			continue
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
		default:
			out = append(out, part)
		}
	}

	joined := strings.Join(out, "/")
	if abs {
		return "/" + joined
	}
	return joined
}

// IsAbs reports whether a bare path is absolute in either slash or drive-letter form.
func IsAbs(path string) bool {
	if strings.HasPrefix(path, "/") || strings.HasPrefix(path, `\`) {
		return true
	}
	return len(path) >= 3 && path[1] == ':' && (path[2] == '/' || path[2] == '\\')
}

// Join resolves r relative to the resource that contains it.
//
// References with their own protocol are returned as-is. A bare reference
// inherits parent's protocol; when it is relative it is joined onto parent's
// directory. With a zero parent (top-level request) a bare reference belongs
// to LocalProtocol and stays relative; the local loader anchors it at its base.
func Join(parent Key, r Reference) (protocol, path string) {
	if r.Explicit() {
		return r.Protocol, r.Path
	}
	if parent.IsZero() {
		return LocalProtocol, r.Path
	}
	if IsAbs(r.Path) {
		return parent.Protocol, r.Path
	}
	dir := parent.Dir().Path
	if dir == "" {
		return parent.Protocol, r.Path
	}
	return parent.Protocol, strings.TrimSuffix(dir, "/") + "/" + r.Path
}
