package pipeline

// Summary aggregates terminal states over one run. Formatting is the
// caller's concern; this only counts.
type Summary struct {
	Results []Result

	Insighted   int
	Transcribed int
	Failed      int
	Skipped     map[SkipReason]int
}

func NewSummary() *Summary {
	return &Summary{Skipped: make(map[SkipReason]int)}
}

func (s *Summary) Add(r Result) {
	s.Results = append(s.Results, r)
	switch r.State {
	case StateInsighted:
		s.Insighted++
	case StateTranscribed:
		s.Transcribed++
	case StateFailed:
		s.Failed++
	case StateSkipped:
		s.Skipped[r.SkipReason]++
	}
}

// Processed returns the number of files that reached a lecture row.
func (s *Summary) Processed() int {
	return s.Insighted + s.Transcribed
}

// TotalSkipped returns the number of skipped files across all reasons.
func (s *Summary) TotalSkipped() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}
