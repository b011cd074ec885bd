// Package cache implements an in-process key-value cache engine with
// bounded capacity, TTL expiration with stale-while-revalidate and
// stale-if-error grace windows, LRU eviction with anti-starvation
// scoring, single-flight loader deduplication, and a background reaper
// that emits expiration events to registered observers.
//
// The engine is a library: there is no server, wire protocol or
// persistence. A Cache owns its entries, its in-flight loader registry
// and its observer lists; all operations are safe for concurrent use.
package cache
