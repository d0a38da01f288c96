// Package agent tracks one agent's live runtime state: its role, current
// task, capability set, and rolling performance and memory-pressure metrics.
//
// A State moves through a small lifecycle. It is created idle, StartTask
// moves it to busy, and CompleteTask settles it on active or error while
// folding the task's outcome into the cumulative performance metrics.
// Active and error are both resting states from which a new task may start.
// PerformCleanup reduces memory usage without touching the task or status.
//
// Like the rest of the engine, a State assumes at most one concurrent
// mutator. Hosts that share a State across goroutines must serialize access
// externally.
package agent
