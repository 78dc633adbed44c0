// Package api provides the HTTP REST API for the maze solver.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create a session ({"config_id": "spiral"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - Delete a session, stopping any running solve
//
// Solving:
//   - POST /api/sessions/{id}/solve - Run a solver
//   - POST /api/sessions/{id}/cancel - Cancel the running solve
//   - POST /api/sessions/{id}/reset - Clear grid marks
//   - GET /api/sessions/{id}/state - Grid snapshot with counts
//   - GET /api/sessions/{id}/image - Grid as PNG (?cell=pixels)
//   - GET /api/sessions/{id}/history - Run history (?page&limit&order)
//   - GET /api/sessions/{id}/cells/{row}/{col} - Describe one cell
//
// Configuration:
//   - GET /api/configs - List maze configurations
//   - GET /api/configs/{name} - Get one configuration
//   - POST /api/configs - Validate and save a configuration
//
// Other:
//   - GET /ws?session={id} - WebSocket stream of solve steps
//   - GET /metrics - Prometheus metrics
//   - GET /health - Liveness probe
//
// Solve requests accept:
//
//	{
//	  "algorithm": "bfs|wall-follower",
//	  "start": {"row": 1, "col": 1},
//	  "end": {"row": 3, "col": 3},
//	  "delay_ms": 50,
//	  "max_steps": 1000,
//	  "async": true
//	}
//
// Synchronous solves answer 200 with the result. Async solves answer 202
// with a ticket and report completion over the WebSocket.
//
// Errors are returned as JSON, {"error": "message"}, with 400 for invalid
// input, 404 for unknown sessions or configs, and 409 when a solve is
// already running or none is running to cancel.
package api
