package app

// Instance describes the running process.
type Instance struct {
	// ID is unique per process, a host name by default.
	ID string `json:"id"`
	// Name is the service name.
	Name string `json:"name"`
	// Version is the version of the compiled.
	Version string `json:"version"`
	// Metadata is the kv pair metadata associated with the service instance.
	Metadata map[string]string `json:"metadata"`
}
