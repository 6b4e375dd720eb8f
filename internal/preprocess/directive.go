package preprocess

import (
	"regexp"
	"strings"

	"shaderpp/internal/ref"
)

// directiveRe matches `#include_once` and `#pragma include_once` at line start.
// Группа 1 - всё после ключевого слова.
var directiveRe = regexp.MustCompile(`^[ \t]*#[ \t]*(?:pragma[ \t]+)?include_once([ \t"<].*|)$`)

// matchDirective reports whether line is an include directive and extracts the
// reference. Lines that are not directives return ok == false and no error.
func matchDirective(line string) (raw string, ok bool, err error) {
	m := directiveRe.FindStringSubmatch(line)
	if m == nil {
		return "", false, nil
	}
	rest := strings.TrimSpace(m[1])
	bad := func(reason string) (string, bool, error) {
		return "", true, &ref.InvalidReferenceError{Ref: strings.TrimSpace(line), Reason: reason}
	}
	if rest == "" {
		return bad("missing reference after include_once")
	}

	var tail string
	switch rest[0] {
	case '"', '<':
		closing := byte('"')
		if rest[0] == '<' {
			closing = '>'
		}
		end := strings.IndexByte(rest[1:], closing)
		if end < 0 {
			return bad("unterminated " + string(rest[0]) + " in include directive")
		}
		raw, tail = rest[1:1+end], rest[2+end:]
	default:
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			end = len(rest)
		}
		// "//" inside a bare reference is part of the path; a comment needs a blank before it
		raw, tail = rest[:end], rest[end:]
	}

	tail = strings.TrimSpace(tail)
	if tail != "" && !strings.HasPrefix(tail, "//") {
		return bad("unexpected text after reference: " + tail)
	}
	if strings.TrimSpace(raw) == "" {
		return bad("empty reference")
	}
	return raw, true, nil
}
