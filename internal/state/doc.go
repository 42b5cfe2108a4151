// Package state holds the client-side stores that sit between the domain
// services and the UI.
//
// # Overview
//
// Every piece of server data the UI renders flows through a store. A store
// calls one service method per action, waits for the response and then
// reconciles its cached copy. Nothing is mutated speculatively: create,
// update and delete change the cache only after the server confirmed them,
// and always with the server's canonical entity rather than the request.
//
// There are three stores, each constructed explicitly and injected into its
// consumers:
//
//   - AuthStore: the single session (user, authenticated flag) plus the
//     persisted bearer token through a TokenStore.
//   - LoftStore: the user's lofts.
//   - PigeonStore: pigeons, either all of them or a single loft's, plus the
//     image upload pass-through.
//
// # Envelope
//
// All actions share the same envelope:
//
//	begin:    IsLoading = true, Error = ""
//	success:  IsLoading = false, cache reconciled
//	failure:  IsLoading = false, Error = message
//
// Fetch actions absorb their errors into Error. Create, Update, Delete,
// UploadImage and the auth actions also return the error so the caller can
// show its own message next to the store's banner. CheckAuth is the only
// action that never fails.
//
// Error strings come from the server message when there is one, otherwise
// from a per-action fallback ("failed to load lofts", "invalid credentials",
// ...). Network and decode failures keep the transport's normalized message.
//
// # Concurrency
//
// Stores are safe for concurrent use. Actions are neither queued nor
// coalesced: two in-flight actions each toggle IsLoading and Error when they
// finish, so the last to resolve wins the shared flags. Two updates of the
// same id race the same way; the cache ends up holding exactly one of the
// server responses, never a mix of both.
//
// Every action takes a context. When the context is done by the time the
// response arrives, the result is dropped: loading is cleared but the cache
// and Error stay as they were, and the action returns the context error.
//
// # Snapshots
//
// Snapshot returns a copy of the store state. Slices and the current entity
// are copied so a caller can keep a snapshot across renders without seeing
// later changes.
//
//	snap := lofts.Snapshot()
//	for _, loft := range snap.Items {
//		render(loft)
//	}
package state
