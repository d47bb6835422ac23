package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	SearchLog() SearchLogRepository

	// Close releases backend resources
	Close() error
}
