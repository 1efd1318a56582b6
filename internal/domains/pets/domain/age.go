package domain

// AgeBucket is a half-open age range in years.
type AgeBucket struct {
	Min float64
	// Max is exclusive. Zero means unbounded.
	Max float64
}

var ageBuckets = map[int]AgeBucket{
	0: {Min: 0, Max: 1},
	1: {Min: 1, Max: 3},
	3: {Min: 3, Max: 7},
	7: {Min: 7},
}

// ParseAgeBucket resolves the lower bound of a bucket to its range.
func ParseAgeBucket(lower int) (AgeBucket, error) {
	b, ok := ageBuckets[lower]
	if !ok {
		return AgeBucket{}, ErrInvalidAgeBucket
	}
	return b, nil
}

// Contains reports whether age falls within the bucket.
func (b AgeBucket) Contains(age float64) bool {
	if age < b.Min {
		return false
	}
	return b.Max == 0 || age < b.Max
}

// Bounded reports whether the bucket has an upper limit.
func (b AgeBucket) Bounded() bool {
	return b.Max > 0
}
