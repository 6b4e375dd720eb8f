package trace

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Format is the encoding of written events.
type Format uint8

const (
	FormatAuto   Format = iota // by output path
	FormatText                 // one readable line per event
	FormatNDJSON               // one JSON object per line
)

const ndjsonTime = "2006-01-02T15:04:05.000000Z07:00"

// FormatEvent encodes ev with a trailing newline.
func FormatEvent(ev *Event, format Format) []byte {
	if format == FormatNDJSON {
		return formatNDJSON(ev)
	}
	return formatText(ev)
}

type ndjsonEvent struct {
	Time       string            `json:"time"`
	Seq        uint64            `json:"seq"`
	Kind       string            `json:"kind"`
	Scope      string            `json:"scope"`
	SpanID     uint64            `json:"span_id"`
	ParentID   uint64            `json:"parent_id,omitempty"`
	GID        uint64            `json:"gid,omitempty"`
	Name       string            `json:"name"`
	Detail     string            `json:"detail,omitempty"`
	Extra      map[string]string `json:"extra,omitempty"`
	DurationMS float64           `json:"duration_ms,omitempty"`
}

func formatNDJSON(ev *Event) []byte {
	data, err := json.Marshal(ndjsonEvent{
		Time:       ev.Time.Format(ndjsonTime),
		Seq:        ev.Seq,
		Kind:       ev.Kind.String(),
		Scope:      ev.Scope.String(),
		SpanID:     ev.SpanID,
		ParentID:   ev.ParentID,
		GID:        ev.GID,
		Name:       ev.Name,
		Detail:     ev.Detail,
		Extra:      ev.Extra,
		DurationMS: float64(ev.Duration) / float64(time.Millisecond),
	})
	if err != nil {
		return nil
	}
	return append(data, '\n')
}

// formatText renders
//
//	[15:04:05.000000] ← fragment file:common.glsl (12 lines) [1.2ms] {key=value}
//
// with child events indented by two spaces.
func formatText(ev *Event) []byte {
	var sb strings.Builder
	sb.WriteString(ev.Time.Format("[15:04:05.000000] "))
	if ev.ParentID > 0 {
		sb.WriteString("  ")
	}
	if int(ev.Kind) < len(kindMarks) && kindMarks[ev.Kind] != "" {
		sb.WriteString(kindMarks[ev.Kind])
		sb.WriteByte(' ')
	}
	fmt.Fprintf(&sb, "%s %s", ev.Scope, ev.Name)
	if ev.Detail != "" {
		fmt.Fprintf(&sb, " (%s)", ev.Detail)
	}
	if ev.Duration > 0 {
		fmt.Fprintf(&sb, " [%s]", ev.Duration.Round(time.Microsecond))
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + ev.Extra[k]
		}
		fmt.Fprintf(&sb, " {%s}", strings.Join(pairs, ", "))
	}
	sb.WriteByte('\n')
	return []byte(sb.String())
}
