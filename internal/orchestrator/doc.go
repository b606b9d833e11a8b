// Package orchestrator sequences the local sub-services molard owns in server mode.
//
// Start order is fixed: the database comes up first, the orchestrator waits a
// short grace period for it to accept connections, then the API backend is
// launched. Stop runs in reverse and only touches what this instance started.
//
// # Lifecycle
//
//	Stopped -> Starting -> Running
//	Starting -> PartiallyStarted   (a later step failed after an earlier one succeeded)
//	Starting -> Stopped            (nothing came up)
//	Running | PartiallyStarted -> Stopping -> Stopped
//
// The running flags live in a ServiceState owned by each Orchestrator and are
// handed out by value. Status combines them with live probes: in client mode
// only the remote backend is probed and the database is reported down.
package orchestrator
