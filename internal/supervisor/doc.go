// Package supervisor owns the two sidecar processes molard runs in server
// mode: the bundled PostgreSQL engine and the API backend.
//
// The database is driven through its own control binaries (initdb, pg_ctl,
// createdb) via a Runner, so it outlives a single molard invocation. The
// backend is a long-lived child process whose handle is tracked here and
// torn down explicitly on Stop.
//
// Both services check their port through a PortGuard before starting and try
// to reclaim it from stale owners. A database port held by something that
// answers like our database is accepted as-is instead of being reported as a
// conflict.
package supervisor
