// Package loopback captures an identity-provider redirect on a local port.
//
// SignIn binds 127.0.0.1:<port>, opens the system browser on the provider's
// authorization URL and waits for the provider to redirect back. The page
// served on / and /callback reads the URL fragment (or the query string when
// there is no fragment) and posts it to /token, which hands it to the waiting
// caller through a single-use Slot.
//
// Only one sign-in can hold the port. A second concurrent attempt fails with
// a port.in_use error instead of queueing. The listener is shut down before
// SignIn returns, whatever the outcome.
package loopback
