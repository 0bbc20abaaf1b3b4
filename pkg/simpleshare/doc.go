// Package simpleshare provides a content-sharing and analytics client that
// delegates storage, event ingestion and share UI to a native boundary.
//
// It exposes a single Service interface for registering content references,
// logging events against them, generating share links and recording
// engagement. Boundaries are provided under native/ (in-memory, Postgres and
// a remote HTTP client for the handler in api/).
//
// Stale Handles
//
// A ContentReference keeps the normalized payload it was created with. The
// handle the boundary issued for it is only a cache key: when a call fails
// with CodeHandleNotFound the service recreates that one reference from its
// payload and retries. Each reference is recreated at most once per call, and
// every other failure is returned to the caller unchanged.
//
// Absent Boundary
//
// When no boundary is installed, or it reports itself unavailable, every
// operation succeeds without doing anything and references carry no handle.
package simpleshare
