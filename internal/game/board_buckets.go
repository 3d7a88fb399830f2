package game

// Bucket aggregation. Counts only ever go up during a run; a rebuild replaces the
// bucket set and starts from zero.

// Increment records one landed ball in bucket i and returns the new count.
func (b *Board) Increment(i int) int {
	b.Buckets[i].Count++
	return b.Buckets[i].Count
}

// Counts returns a copy of the per-bucket tallies.
func (b *Board) Counts() []int {
	counts := make([]int, len(b.Buckets))
	for i := range b.Buckets {
		counts[i] = b.Buckets[i].Count
	}
	return counts
}

// TotalCount is the sum of all bucket tallies.
func (b *Board) TotalCount() int {
	total := 0
	for i := range b.Buckets {
		total += b.Buckets[i].Count
	}
	return total
}

// MaxCount is the largest tally, or 0 for an empty board.
func (b *Board) MaxCount() int {
	top := 0
	for i := range b.Buckets {
		if b.Buckets[i].Count > top {
			top = b.Buckets[i].Count
		}
	}
	return top
}

// Fills returns each bucket's count relative to the current maximum. The scale is
// relative, so a bucket's fill can shrink when another bucket overtakes it.
func (b *Board) Fills() []float64 {
	top := b.MaxCount()
	if top == 0 {
		top = 1
	}
	fills := make([]float64, len(b.Buckets))
	for i := range b.Buckets {
		fills[i] = float64(b.Buckets[i].Count) / float64(top)
	}
	return fills
}
