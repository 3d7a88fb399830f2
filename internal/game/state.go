package game

// Status represents whether a simulation is advancing frames
type Status string

const (
	StatusStopped Status = "STOPPED"
	StatusRunning Status = "RUNNING"
)
