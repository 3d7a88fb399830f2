package game

// Settings is the full configuration of one simulation run.
type Settings struct {
	Width       float64 `json:"width" yaml:"width"`
	Height      float64 `json:"height" yaml:"height"`
	BallRadius  float64 `json:"ball_radius" yaml:"ball_radius"`
	PegRadius   float64 `json:"peg_radius" yaml:"peg_radius"`
	BallSpeed   int     `json:"ball_speed" yaml:"ball_speed"`
	BallCount   int     `json:"ball_count" yaml:"ball_count"`
	PegRows     int     `json:"peg_rows" yaml:"peg_rows"`
	BucketCount int     `json:"bucket_count" yaml:"bucket_count"`
}

// DefaultSettings returns the reset configuration for a viewport.
func DefaultSettings(width, height float64) Settings {
	return Settings{
		Width:       width,
		Height:      height,
		BallRadius:  DefaultBallRadius,
		PegRadius:   DefaultPegRadius,
		BallSpeed:   DefaultBallSpeed,
		BallCount:   DefaultBallCount,
		PegRows:     DefaultPegRows,
		BucketCount: DefaultBucketCount,
	}
}

// Controls is a partial update coming from the UI sliders. Nil fields are left as is.
type Controls struct {
	BallCount   *int `json:"ball_count,omitempty" yaml:"ball_count,omitempty" binding:"omitempty,min=1,max=10000"`
	BallSpeed   *int `json:"ball_speed,omitempty" yaml:"ball_speed,omitempty" binding:"omitempty,min=1,max=20"`
	PegRows     *int `json:"peg_rows,omitempty" yaml:"peg_rows,omitempty" binding:"omitempty,min=0,max=30"`
	BucketCount *int `json:"bucket_count,omitempty" yaml:"bucket_count,omitempty" binding:"omitempty,min=1,max=60"`
}

// IsEmpty reports whether no field is set.
func (c Controls) IsEmpty() bool {
	return c.BallCount == nil && c.BallSpeed == nil && c.PegRows == nil && c.BucketCount == nil
}

// RenderRadius is the radius a renderer should draw balls with. Large populations are
// drawn smaller so the board stays readable.
func (s Settings) RenderRadius() float64 {
	switch {
	case s.BallCount > 5000:
		return max(2, s.BallRadius*0.4)
	case s.BallCount > 1000:
		return max(3, s.BallRadius*0.6)
	default:
		return s.BallRadius
	}
}
