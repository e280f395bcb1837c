// Package caps reports the Linux capabilities this process holds, so the
// CLI can warn when running with more privilege
// than the probe needs (it never needs to bind privileged ports or touch
// raw sockets). Non-Linux builds get a no-op Manager so callers never
// need a build tag of their own.
package caps

// Manager inspects and can restrict this process's capability set.
type Manager interface {
	// Available reports the names of capabilities currently held, best
	// effort - an empty slice on platforms or kernels where this cannot
	// be determined.
	Available() []string
	// DropAll is the hook for dropping every capability this process
	// holds. Both implementations in this package (Linux and the no-op
	// fallback) drop nothing and return nil.
	DropAll() error
}

// New returns the platform-appropriate Manager.
func New() Manager {
	return newPlatformManager()
}
