package game

import (
	"math"
	"testing"
)

func TestPegCountMatchesTriangle(t *testing.T) {
	viewports := [][2]float64{{1000, 800}, {320, 480}, {1920, 1080}}
	for _, vp := range viewports {
		for rows := 0; rows <= 30; rows++ {
			pegs := BuildPegs(vp[0], vp[1], rows, DefaultPegRadius)
			want := rows * (rows + 1) / 2
			if len(pegs) != want {
				t.Errorf("viewport %v rows=%d: got %d pegs, want %d", vp, rows, len(pegs), want)
			}
		}
	}
}

func TestPegRowsAreCentered(t *testing.T) {
	width, height := 1000.0, 800.0
	rows := 7
	pegs := BuildPegs(width, height, rows, DefaultPegRadius)

	i := 0
	for row := 0; row < rows; row++ {
		sum := 0.0
		for col := 0; col <= row; col++ {
			sum += pegs[i].Position.X
			i++
		}
		mean := sum / float64(row+1)
		if math.Abs(mean-width/2) > 1e-9 {
			t.Errorf("row %d centered at %.4f, want %.4f", row, mean, width/2)
		}
	}
}

func TestPegsStayInsideBand(t *testing.T) {
	width, height := 1000.0, 800.0
	pegs := BuildPegs(width, height, 15, DefaultPegRadius)
	top := height * PegAreaTop
	bottom := top + height*PegAreaHeight
	for _, p := range pegs {
		if p.Position.Y < top || p.Position.Y >= bottom {
			t.Fatalf("peg at y=%.2f outside band [%.2f, %.2f)", p.Position.Y, top, bottom)
		}
		if p.Radius != DefaultPegRadius {
			t.Fatalf("peg radius = %.2f, want %.2f", p.Radius, DefaultPegRadius)
		}
	}
}

func TestBucketsSpanViewport(t *testing.T) {
	width, height := 1000.0, 800.0
	for n := 1; n <= 60; n++ {
		buckets := BuildBuckets(width, height, n)
		if len(buckets) != n {
			t.Fatalf("n=%d: got %d buckets", n, len(buckets))
		}
		total := 0.0
		for i, b := range buckets {
			if b.Index != i {
				t.Errorf("bucket %d has index %d", i, b.Index)
			}
			if math.Abs(b.Width-buckets[0].Width) > 1e-9 {
				t.Errorf("n=%d bucket %d width %.4f differs from %.4f", n, i, b.Width, buckets[0].Width)
			}
			if b.Count != 0 {
				t.Errorf("new bucket %d has count %d", i, b.Count)
			}
			total += b.Width
		}
		if math.Abs(total-width) > 1e-6 {
			t.Errorf("n=%d widths sum to %.6f, want %.0f", n, total, width)
		}
	}
}

func TestLandingBandSitsBetweenPegsAndBuckets(t *testing.T) {
	width, height := 1000.0, 800.0
	buckets := BuildBuckets(width, height, 10)
	b := buckets[0]

	pegBottom := height*PegAreaTop + height*PegAreaHeight
	if b.LandingY <= pegBottom {
		t.Errorf("landing y %.2f should be below peg area bottom %.2f", b.LandingY, pegBottom)
	}
	gap := b.Y - (b.LandingY + b.LandingHeight)
	if math.Abs(gap-LandingGap) > 1e-9 {
		t.Errorf("gap between landing band and bucket = %.2f, want %.2f", gap, LandingGap)
	}
	if math.Abs(b.Y+b.Height+BucketBottomPad-height) > 1e-9 {
		t.Errorf("bucket bottom %.2f + pad should reach viewport height", b.Y+b.Height)
	}
}

func TestDegenerateCountsYieldEmptyGeometry(t *testing.T) {
	board := NewBoard(1000, 800, 0, 0, DefaultPegRadius)
	if len(board.Pegs) != 0 || len(board.Buckets) != 0 {
		t.Fatalf("expected empty geometry, got %d pegs %d buckets", len(board.Pegs), len(board.Buckets))
	}
	board = NewBoard(1000, 800, -3, -1, DefaultPegRadius)
	if len(board.Pegs) != 0 || len(board.Buckets) != 0 {
		t.Fatalf("expected empty geometry for negative counts")
	}
	if _, ok := board.LandingLine(); ok {
		t.Error("empty board should have no landing line")
	}
	if idx := board.BucketIndexAt(500); idx != -1 {
		t.Errorf("BucketIndexAt on empty board = %d, want -1", idx)
	}
}

func TestFillsUseRelativeScale(t *testing.T) {
	board := NewBoard(1000, 800, 5, 4, DefaultPegRadius)

	for _, f := range board.Fills() {
		if f != 0 || math.IsNaN(f) {
			t.Fatalf("empty board fill = %v, want 0", f)
		}
	}

	board.Increment(1)
	board.Increment(1)
	board.Increment(2)
	fills := board.Fills()
	if fills[1] != 1 || fills[2] != 0.5 || fills[0] != 0 {
		t.Errorf("fills = %v, want [0 1 0.5 0]", fills)
	}

	// Bucket 2 overtakes bucket 1; bucket 1 shrinks visually.
	board.Increment(2)
	board.Increment(2)
	fills = board.Fills()
	if fills[2] != 1 || math.Abs(fills[1]-2.0/3.0) > 1e-9 {
		t.Errorf("fills after overtake = %v", fills)
	}
	if board.TotalCount() != 5 || board.MaxCount() != 3 {
		t.Errorf("total=%d max=%d, want 5 and 3", board.TotalCount(), board.MaxCount())
	}
}
