package room

// startCache holds the scalars that become immutable the moment a room
// starts. It is populated exactly once for the coordinator's lifetime;
// a second populate attempt is deliberately a no-op so a replayed
// "started" notification cannot overwrite it.
type startCache struct {
	hostID        string
	timerDuration int
	totalPlayers  int
	populated     bool
}

// populate stores the scalars on first call and reports whether this
// call was the one that populated the cache.
func (c *startCache) populate(hostID string, timerDuration, totalPlayers int) bool {
	if c.populated {
		return false
	}
	c.hostID = hostID
	c.timerDuration = timerDuration
	c.totalPlayers = totalPlayers
	c.populated = true
	return true
}
