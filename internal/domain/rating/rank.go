package rating

// Rank is a participant's placing for one day.
type Rank struct {
	// Fractional is the mid-rank of the participant's tie block, the target
	// of the performance model.
	Fractional float64
	// Display is one plus the number of strictly better scores.
	Display int
}

// AssignRanks ranks scores by pairwise comparison. Higher is better; ties
// share a display rank and the next distinct score skips past the tie.
func AssignRanks(scores []float64) []Rank {
	ranks := make([]Rank, len(scores))
	for i, si := range scores {
		r := Rank{Fractional: 0.5, Display: 1}
		for _, sj := range scores {
			switch {
			case si < sj:
				r.Fractional += 1.0
				r.Display++
			case si == sj:
				r.Fractional += 0.5
			}
		}
		ranks[i] = r
	}
	return ranks
}
