package img

// Progress reports embedding and extraction progress in whole percent.
// A nil *Progress ignores all updates.
type Progress struct {
	report  func(percent int)
	current int
}

func NewProgress(report func(percent int)) *Progress {
	return &Progress{report: report}
}

// Update reports done of total units. The reported value never decreases
// and is only passed on when it changed.
func (p *Progress) Update(done, total int) {
	if p == nil || p.report == nil || total <= 0 {
		return
	}
	percent := 100 * done / total
	if percent > 100 {
		percent = 100
	}
	if percent > p.current {
		p.current = percent
		p.report(percent)
	}
}
