package allocator

// ValidateCapacity fails when the roster cannot fit into the declared seats.
func ValidateCapacity(rosterSize, seatCount int) error {
	if rosterSize > seatCount {
		return &CapacityError{Required: rosterSize, Available: seatCount}
	}
	return nil
}
