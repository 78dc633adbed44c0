// Package mcp exposes the maze solver to AI agents over the Model Context
// Protocol.
//
// The Client is a thin proxy: every tool calls the REST API of a running
// server and formats the JSON response as text.
//
// MCP Tools:
//   - create_session, list_sessions, get_session: session management
//   - list_configs: available maze configurations
//   - maze_state: the grid rendered as text with cell counts
//   - solve_maze: run bfs or wall-follower, synchronously or in the background
//   - cancel_solve, reset_maze: control a session's solver
//   - run_history: paginated solve history
//   - describe_cell: one cell and its open neighbours
//   - solver_instructions: legend and solver notes
//
// Tool failures are returned as error results, never as Go errors, so the
// agent sees the API's message.
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
package mcp
