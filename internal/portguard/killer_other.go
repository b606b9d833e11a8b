//go:build !unix

package portguard

// DefaultKiller returns the killer for this platform. Without lsof and POSIX
// signals there is no supported way to free a port, so every attempt reports
// ErrUnsupported and the guard answers "not freed".
func DefaultKiller() Killer {
	return unsupportedKiller{}
}
