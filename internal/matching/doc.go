// Package matching is the storage-agnostic matchmaking core: candidate
// filtering, compatibility scoring, ranked queues, swipe processing and
// rate limiting. Persistence is reached only through Store.
package matching
