/*
Package session implements session management and persistence orchestration.

It provides per-session mutual exclusion so that one workflow never has two
stages executing concurrently, integrating local ref-counted mutexes with
optional distributed locking for multi-replica deployments.
*/
package session
