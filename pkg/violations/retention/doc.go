// Package retention prunes old violation records.
//
// The Pruner deletes records by age (older than a retention period) and by
// count (beyond a maximum, oldest first). It can be run on demand with Prune
// or on a cron schedule through its embedded Scheduler.
package retention
