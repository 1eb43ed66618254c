package engine

// Segment is one contiguous byte range of the object, assigned to one worker.
type Segment struct {
	ID    int
	Start int64
	End   int64 // inclusive
}

// Length returns the number of bytes the segment covers.
func (s Segment) Length() int64 {
	return s.End - s.Start + 1
}

// BuildPlan splits [0, totalSize) into connections contiguous segments. The
// last segment absorbs the division remainder. A zero-size object still gets
// its full count of (zero-length) segments so workers short-circuit uniformly.
func BuildPlan(totalSize int64, connections int) []Segment {
	segmentSize := totalSize / int64(connections)
	plan := make([]Segment, connections)
	for i := range connections {
		start := int64(i) * segmentSize
		end := start + segmentSize - 1
		if i == connections-1 {
			end = totalSize - 1
		}
		plan[i] = Segment{ID: i, Start: start, End: end}
	}
	return plan
}
