package translate

import (
	"regexp"
	"strconv"
	"strings"

	"fortio.org/safecast"
)

// Format names a compiler log dialect.
type Format uint8

const (
	FormatNone    Format = iota // line carries no location
	FormatMesa                  // 0:12(5): error: msg
	FormatGlslang               // ERROR: 0:12: msg
	FormatNvidia                // 0(12) : error C1008: msg
	FormatPlain                 // 12: msg
)

func (f Format) String() string {
	switch f {
	case FormatMesa:
		return "mesa"
	case FormatGlslang:
		return "glslang"
	case FormatNvidia:
		return "nvidia"
	case FormatPlain:
		return "plain"
	default:
		return "none"
	}
}

// parsed is one log line split into its parts.
type parsed struct {
	format Format
	line   uint32
	col    uint32
	level  string // severity word as written, may be empty
	msg    string
	// lineText is the line number as written; set alone when it overflows uint32
	lineText string
}

type dialect struct {
	format Format
	re     *regexp.Regexp
	// индексы групп; 0 - группы нет
	line, col, level, msg int
}

// Порядок важен: от самого специфичного к самому общему.
// "0:12(5): ..." иначе разобралось бы как plain со строкой 0.
var dialects = []dialect{
	{
		format: FormatMesa,
		re:     regexp.MustCompile(`^\s*\d+:(\d+)\((\d+)\)\s*:\s*(?i:(error|warning|info|note))\s*:?\s*(.*)$`),
		line:   1, col: 2, level: 3, msg: 4,
	},
	{
		format: FormatGlslang,
		re:     regexp.MustCompile(`^\s*(?i:(error|warning|info|note))\s*:\s*\d+:(\d+):\s*(.*)$`),
		level:  1, line: 2, msg: 3,
	},
	{
		format: FormatNvidia,
		re:     regexp.MustCompile(`^\s*\d+\((\d+)\)\s*:\s*(?i:(error|warning|info|note))\s*(?:[A-Z]\d+)?\s*:?\s*(.*)$`),
		line:   1, level: 2, msg: 3,
	},
	{
		format: FormatPlain,
		re:     regexp.MustCompile(`^\s*(\d+)\s*:\s*(.*)$`),
		line:   1, msg: 2,
	},
}

var levelPrefixRe = regexp.MustCompile(`^\s*(?i:(error|warning|info|note))\b`)

func parseLine(text string) parsed {
	for _, d := range dialects {
		m := d.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		// переполнение uint32 даёт строку 0, которой нет ни в одном юните
		line, _ := atou32(m[d.line])
		p := parsed{format: d.format, line: line, lineText: m[d.line], msg: strings.TrimSpace(m[d.msg])}
		if d.col > 0 {
			p.col, _ = atou32(m[d.col])
		}
		if d.level > 0 {
			p.level = strings.ToLower(m[d.level])
		}
		return p
	}
	p := parsed{format: FormatNone, msg: strings.TrimSpace(text)}
	if m := levelPrefixRe.FindStringSubmatch(text); m != nil {
		p.level = strings.ToLower(m[1])
	}
	return p
}

func atou32(s string) (uint32, bool) {
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, false
	}
	v, err := safecast.Conv[uint32](n)
	if err != nil {
		return 0, false
	}
	return v, true
}
