// Package state provides the thread-safe store that shares polled stats
// between the background poller and the UI.
//
// The package follows a producer-consumer pattern: the poller calls Update
// on a fixed cadence, the UI calls Snapshot on its own render schedule, and
// the Store mediates with a readers-writer lock and defensive copies. On a
// failed poll the previous data is kept and the error recorded, so the UI
// always has the most recent successful counters to display alongside an
// offline indicator.
package state
