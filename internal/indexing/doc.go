// Package indexing runs crawls of the configured sites.
//
// A crawl is a tree of page tasks. Each task reserves its page path,
// fetches the page, stores and indexes it, and then starts one child task
// per in-scope link, waiting for all children before it returns. Root
// tasks, one per site, run concurrently; a semaphore bounds the number of
// fetches in flight across the whole run.
//
// Stopping is cooperative: StopIndexing raises a flag on the Run that every
// task checks before reserving, after fetching and before spawning
// children. Sites observed as stopped turn FAILED with ErrStoppedByUser.
package indexing
