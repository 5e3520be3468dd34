// Package sim provides the discrete-event engine that pushes stories
// through a multi-stage review pipeline staffed by a capacity-limited team.
//
// # Reading Guide
//
// Start with these three files to understand the simulation kernel:
//   - story.go: Story lifecycle and the explicit, resumable wait state
//   - event.go: Event types that drive the simulation (Arrival, SessionEnd, DayBoundary, etc.)
//   - simulator.go: The event loop, logical clock, and deterministic ordering
//
// # Architecture
//
// The clock is logical simulation time in ticks (60 per hour); nothing ever
// sleeps. Each story is advanced by events popped from a single heap in
// (timestamp, story, sequence) order, so exactly one story mutates shared
// state at any instant and seeded runs replay identically.
//
// Resource contention lives in two structures the stories call into:
//   - RolePool (pool.go): ranked PO/Admin escalation chains,
//     least-recently-utilized selection for Developer/Reviewer, FIFO wait
//     queues served in request-arrival order
//   - CapacityLedger (ledger.go): per-member daily/weekly hour caps with a
//     context-switch charge multiplier, reset on day/week boundaries
//
// The WIPGate (wip.go) bounds concurrently active stories; machine.go holds
// the per-story state machine that ties it all together.
//
// Output crosses into reporting through the sim/journal sub-package: an
// ordered transition log plus end-of-run snapshots. Reporting only ever
// consumes that stream; nothing feeds back into scheduling.
package sim
