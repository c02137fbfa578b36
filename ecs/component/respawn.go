package component

// RespawnRequest asks the respawn system to move the entity back to its
// Spawn point on the next update.
type RespawnRequest struct{}

var RespawnRequestComponent = NewComponent[RespawnRequest]()

// Spawn is where an agent returns after touching a hazard. The hazard
// contact system fills it from the first transform it sees.
type Spawn struct {
	X           float64
	Y           float64
	Initialized bool
}

var SpawnComponent = NewComponent[Spawn]()
