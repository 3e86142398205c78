package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	Timeline() TimelineRepository

	// Close releases the underlying client or database handle
	Close() error
}
