package profile

// Collides implements the collision rule as a pure function of the two
// Movement tags, deliberately not a method on Profile so it stays trivially
// auditable.
//
//   - Strict <-> Strict collide.
//   - Queued <-> Queued collide.
//   - Strict <-> Queued collide.
//   - Any pair involving Autonomous does not collide at the profile layer.
func Collides(a, b Kind) bool {
	if a == Autonomous || b == Autonomous {
		return false
	}
	return true
}
