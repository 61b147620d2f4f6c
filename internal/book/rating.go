package book

// Tally holds per-star counts, index 0 for one star through index 4 for five.
type Tally [5]int

// Count is the total number of ratings in t.
func (t Tally) Count() int {
	n := 0
	for _, v := range t {
		n += v
	}
	return n
}

// Apply adds delta to t, failing if any star count would go negative.
func (t Tally) Apply(delta Tally) (Tally, error) {
	var out Tally
	for i := range t {
		out[i] = t[i] + delta[i]
		if out[i] < 0 {
			return t, ErrNegativeTally
		}
	}
	return out, nil
}

// Weights are the per-star multipliers used for the average.
type Weights [5]float64

var (
	DefaultWeights = Weights{1, 2, 3, 4, 5}
	// LegacyWeights reproduces averages stored by earlier releases, which
	// counted a four-star rating as three.
	LegacyWeights = Weights{1, 2, 3, 3, 5}
)

func WeightsFor(legacy bool) Weights {
	if legacy {
		return LegacyWeights
	}
	return DefaultWeights
}

// Average is the weighted mean of t, or 0 when t is empty.
func (w Weights) Average(t Tally) float64 {
	return w.mean(t, t.Count())
}

func (w Weights) mean(t Tally, count int) float64 {
	if count == 0 {
		return 0
	}
	var sum float64
	for i, v := range t {
		sum += w[i] * float64(v)
	}
	return sum / float64(count)
}

// WeightedAverage is the default-weighted mean of the five star tallies over count.
func WeightedAverage(r1, r2, r3, r4, r5, count int) float64 {
	return DefaultWeights.mean(Tally{r1, r2, r3, r4, r5}, count)
}

// RatingChange maps a vote to a tally delta: 1 adds, -1 removes, anything else is ignored.
func RatingChange(v int) int {
	switch v {
	case 1:
		return 1
	case -1:
		return -1
	default:
		return 0
	}
}

// DeltaFromVotes converts five star votes into a tally delta.
func DeltaFromVotes(votes [5]int) Tally {
	var d Tally
	for i, v := range votes {
		d[i] = RatingChange(v)
	}
	return d
}
