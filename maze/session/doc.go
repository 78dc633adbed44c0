// Package session provides in-memory session storage for the maze solver.
//
// Manager implements service.SessionManager. Sessions are keyed by a
// case-insensitive ID; an empty ID on Create yields a random 4-character hex
// ID. Each session owns its own grid, so concurrent solves in different
// sessions never share state.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", mazeConfig)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//
// Cleanup:
//
// CleanupExpiredSessions drops sessions idle for longer than the given age.
// A session with a solve in flight is never removed.
package session
