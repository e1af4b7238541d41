// Package task implements the in-process background task engine: a
// FIFO queue of deferred units of work consumed by a single background
// loop, with point-in-time status snapshots for any submitted task.
//
// The single consumer is deliberate. Tasks complete in submission
// order, no two tasks ever run concurrently, and the external API call
// rate stays bounded; batch latency scales linearly with queue depth
// in exchange.
package task
