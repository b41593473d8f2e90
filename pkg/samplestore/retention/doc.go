// Package retention prunes saved sample batches.
//
// A Pruner deletes batches older than store.retention.max_age and, beyond
// store.retention.max_batches, the oldest remaining ones. A Scheduler runs
// the pruner on the cron expression in store.retention.schedule for as
// long as a long-running command is up:
//
//	store:
//	  retention:
//	    max_age: 720h
//	    max_batches: 500
//	    schedule: "0 3 * * *"
package retention
