// Package service provides the business logic layer for the maze solver.
//
// Core Interfaces:
//
// MazeService is the main service interface providing session, solve and
// configuration operations. SessionManager stores sessions. ConfigManager
// loads maze configurations.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the search engine. Each session owns a grid built from its maze config and
// runs at most one solve at a time; a second concurrent request fails with
// ErrSolveInProgress. Every solve starts from a reset grid.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	mazeService := service.NewMazeService(sessionMgr, configMgr)
//
//	info, err := mazeService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := mazeService.Solve(ctx, info.ID, service.SolveRequest{Algorithm: "bfs"}, nil)
//
// Observers passed to Solve see every step with a full grid snapshot. They
// run on the solving goroutine, so slow observers slow the search.
package service
