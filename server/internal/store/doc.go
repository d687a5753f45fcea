// Package store keeps the latest sweep published by each monitoring site.
// It is a thread-safe map with TTL eviction; nothing is persisted.
package store
