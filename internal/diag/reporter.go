package diag

// Reporter receives diagnostics as they are produced.
type Reporter interface {
	Report(d Diagnostic)
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(Diagnostic)

func (f ReporterFunc) Report(d Diagnostic) { f(d) }

// BagReporter collects into Bag. Diagnostics past the bag's limit are counted
// as dropped.
type BagReporter struct{ Bag *Bag }

func (r BagReporter) Report(d Diagnostic) {
	if r.Bag != nil {
		r.Bag.Add(d)
	}
}

// Dedup forwards to next only the first diagnostic of each code, severity,
// location and message. Notes of later duplicates are lost.
func Dedup(next Reporter) Reporter {
	seen := make(map[identity]struct{})
	return ReporterFunc(func(d Diagnostic) {
		id := d.identity()
		if _, dup := seen[id]; dup {
			return
		}
		seen[id] = struct{}{}
		if next != nil {
			next.Report(d)
		}
	})
}
