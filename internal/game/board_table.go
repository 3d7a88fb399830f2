package game

import "math"

// Peg is a fixed obstacle in the triangular lattice.
type Peg struct {
	Position Vec2    `json:"position"`
	Radius   float64 `json:"radius"`
}

// Bucket is one collection slot at the bottom of the board. The landing band
// (LandingY, LandingHeight) sits above the bucket rectangle and is what decides
// which bucket a ball belongs to.
type Bucket struct {
	Index         int     `json:"index"`
	X             float64 `json:"x"`
	Width         float64 `json:"width"`
	Y             float64 `json:"y"`
	Height        float64 `json:"height"`
	LandingY      float64 `json:"landing_y"`
	LandingHeight float64 `json:"landing_height"`
	Count         int     `json:"count"`
}

// Board holds the static geometry for one configuration.
type Board struct {
	Width   float64
	Height  float64
	Pegs    []Peg
	Buckets []Bucket
}

// NewBoard builds pegs and buckets for the given viewport and counts.
// Non-positive rows or buckets yield empty sets.
func NewBoard(width, height float64, rows, buckets int, pegRadius float64) *Board {
	return &Board{
		Width:   width,
		Height:  height,
		Pegs:    BuildPegs(width, height, rows, pegRadius),
		Buckets: BuildBuckets(width, height, buckets),
	}
}

// BuildPegs lays out rows*(rows+1)/2 pegs in a centered triangle inside the peg band.
func BuildPegs(width, height float64, rows int, pegRadius float64) []Peg {
	if rows <= 0 {
		return []Peg{}
	}

	bandTop := height * PegAreaTop
	bandHeight := height * PegAreaHeight
	hs := width / float64(rows+2)
	vs := bandHeight / float64(rows)

	pegs := make([]Peg, 0, rows*(rows+1)/2)
	for row := 0; row < rows; row++ {
		inRow := row + 1
		rowWidth := float64(inRow) * hs
		startX := (width-rowWidth)/2 + hs/2
		y := bandTop + float64(row)*vs

		for col := 0; col < inRow; col++ {
			pegs = append(pegs, Peg{
				Position: NewVec2(startX+float64(col)*hs, y),
				Radius:   pegRadius,
			})
		}
	}
	return pegs
}

// BuildBuckets splits the full width into n equal slots with a shared landing band.
func BuildBuckets(width, height float64, n int) []Bucket {
	if n <= 0 {
		return []Bucket{}
	}

	bucketWidth := width / float64(n)
	bucketHeight := height * BucketHeight
	pegBottom := height*PegAreaTop + height*PegAreaHeight
	bucketY := height - bucketHeight - BucketBottomPad

	landingHeight := math.Min(height*LandingMaxHeight, (bucketY-pegBottom-LandingClearance)*LandingShrink)
	landingY := bucketY - landingHeight - LandingGap

	buckets := make([]Bucket, n)
	for i := 0; i < n; i++ {
		buckets[i] = Bucket{
			Index:         i,
			X:             float64(i) * bucketWidth,
			Width:         bucketWidth,
			Y:             bucketY,
			Height:        bucketHeight,
			LandingY:      landingY,
			LandingHeight: landingHeight,
		}
	}
	return buckets
}

// BucketIndexAt maps an x coordinate to a bucket slot. The result may fall
// outside [0, len(Buckets)) at the viewport edges.
func (b *Board) BucketIndexAt(x float64) int {
	n := len(b.Buckets)
	if n == 0 {
		return -1
	}
	return int(math.Floor(x / (b.Width / float64(n))))
}

// LandingLine is the y coordinate balls must cross to land. All buckets share one row,
// so the first bucket is representative.
func (b *Board) LandingLine() (float64, bool) {
	if len(b.Buckets) == 0 {
		return 0, false
	}
	return b.Buckets[0].LandingY, true
}
