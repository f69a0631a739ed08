package server

// Client is the line-oriented connection a viewer session talks through.
type Client interface {
	// ReadLine blocks until a complete non-empty line is received (without newline).
	ReadLine() (string, error)

	// WriteLine sends a line to the client.
	WriteLine(message string) error

	// Write sends raw bytes to the client.
	Write(data []byte) error

	// Close closes the connection.
	Close() error

	// RemoteAddr returns the client's address for logging.
	RemoteAddr() string
}
