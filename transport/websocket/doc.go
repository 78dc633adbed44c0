// Package websocket streams solver progress to browser clients.
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections. Only the hub goroutine touches the client map;
// everything else talks to it through channels. Each client connection is
// handled by a read pump and a write pump.
//
// Message Protocol:
//
// Outgoing messages are JSON objects {session_id, event, data}:
//   - step: a service.StepFrame for every step of a running solve
//   - solve_complete: the service.SolveResult once a solve ends
//   - state_update: a service.GridState, sent on connect and after resets
//   - error: a string, sent only to the client whose request failed
//
// Clients may send {"action":"cancel"} to stop the running solve of their
// session.
//
// Usage:
//
//	hub := websocket.NewHub(func(id string) error {
//		return mazeService.Cancel(context.Background(), id)
//	})
//	go hub.Run()
//
// Step frames are dropped when the hub's buffer is full so that a slow
// browser never stalls a solve. Completion and state events always queue.
package websocket
