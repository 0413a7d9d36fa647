/*
Package session serializes access to order drafts.

The HTTP and MCP surfaces run every read-modify-write of a draft inside
Manager.WithLock. Locks are in-process mutexes, reference counted so idle
sessions leave nothing behind, optionally backed by a DistributedLocker when
several replicas share a redis store.
*/
package session
