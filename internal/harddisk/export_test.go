package harddisk

// NextCollisionTime exposes the earliest stored prediction.
func NextCollisionTime(e *Engine) float64 {
	_, t, _ := e.nextCollision()
	return t
}
