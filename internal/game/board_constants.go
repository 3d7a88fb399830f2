package game

// Tuning constants for the bean machine. Distances are viewport pixels, velocities are
// pixels per frame.
const (
	// Physics
	Gravity         = 0.2  // per frame, multiplied by ball speed
	WallRestitution = -0.1 // vx multiplier on side-wall contact
	CollisionMargin = 20.0 // broad-phase slack added to ballRadius+pegRadius
	NormalBounce    = 1.2  // normal velocity removal factor on peg contact
	PegKick         = 0.3  // sideways kick on peg contact, multiplied by ball speed
	PegDampingX     = 0.6
	PegDampingY     = 0.9

	// Spawning
	SpawnY           = -30.0
	SpawnOffsetRange = 40.0
	SpawnVxRange     = 1.5
	SpawnVyFactor    = 0.5
	SpawnVyJitter    = 0.5
	SpawnRateFactor  = 0.1

	// Geometry, as fractions of viewport height unless noted
	PegAreaTop       = 0.10
	PegAreaHeight    = 0.55
	BucketHeight     = 0.20
	BucketBottomPad  = 20.0 // px
	LandingMaxHeight = 0.10
	LandingClearance = 30.0 // px between peg area bottom and landing band
	LandingShrink    = 0.8
	LandingGap       = 15.0 // px between landing band and bucket top

	// Defaults restored by Reset
	DefaultBallRadius  = 8.0
	DefaultPegRadius   = 5.0
	DefaultBallSpeed   = 10
	DefaultBallCount   = 5000
	DefaultPegRows     = 15
	DefaultBucketCount = 25
)

// Population caps that unlock batch spawning within a single tick.
const (
	batchThresholdSmall  = 500
	batchThresholdMedium = 2000
	batchThresholdLarge  = 5000
)
