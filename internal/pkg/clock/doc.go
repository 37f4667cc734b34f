// Package clock provides a tiny time abstraction.
//
// The dispatcher stamps START TIME and END TIME into the run ledger and
// paces sends with a fixed delay; depending on the Clocker interface instead
// of time.Now() keeps those paths deterministic in tests.
package clock
