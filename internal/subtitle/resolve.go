package subtitle

// Active returns the first caption whose closed interval contains t.
// At a shared boundary the earlier caption wins.
func (s Sequence) Active(t float64) (Caption, bool) {
	for _, c := range s {
		if t >= c.StartTime && t <= c.EndTime {
			return c, true
		}
	}
	return Caption{}, false
}
