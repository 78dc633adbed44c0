package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/maze-solver/maze/engine"
	"github.com/wricardo/maze-solver/maze/grid"
	"github.com/wricardo/maze-solver/maze/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Maze Solver",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Maze Solver - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Each session holds one maze. Solve it with breadth-first search (shortest
path) or the backtracking wall follower, then inspect the marked grid.

AVAILABLE TOOLS:
- create_session: Create a session from a maze configuration
- list_sessions: List all active sessions
- get_session: Get session details
- list_configs: List available mazes
- maze_state: Get the grid with explored cells and path marked
- solve_maze: Run a solver (bfs or wall-follower)
- cancel_solve: Stop a background solve
- reset_maze: Clear all marks from the grid
- run_history: View past solves
- describe_cell: Inspect one cell and its open neighbours
- solver_instructions: Legend and algorithm notes`),
	)

	c.registerTools()
}

func sessionProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

func coordinateProperty(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "object",
		"description": description,
		"properties": map[string]interface{}{
			"row": map[string]interface{}{"type": "integer"},
			"col": map[string]interface{}{"type": "integer"},
		},
		"required": []string{"row", "col"},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Create a new maze session with optional config selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"config_id": map[string]interface{}{
					"type":        "string",
					"description": "ID of the maze config to use (optional, see list_configs)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active maze sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available maze configurations",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListConfigs)

	// Solving
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "maze_state",
		Description: "Get the current grid of a session, rendered as text",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleMazeState)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solve_maze",
		Description: "Solve the session's maze. Endpoints default to the maze's S and E markers.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"algorithm": map[string]interface{}{
					"type":        "string",
					"enum":        []string{string(engine.BFS), string(engine.WallFollower)},
					"description": "Solver to use (default: the config's algorithm, else bfs)",
				},
				"start": coordinateProperty("Start cell (optional)"),
				"end":   coordinateProperty("End cell (optional)"),
				"delay_ms": map[string]interface{}{
					"type":        "integer",
					"description": "Pause between steps in milliseconds, 0-1000",
				},
				"max_steps": map[string]interface{}{
					"type":        "integer",
					"description": "Abort after this many steps (0 means no limit)",
				},
				"async": map[string]interface{}{
					"type":        "boolean",
					"description": "Start in the background and return immediately",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSolve)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_solve",
		Description: "Cancel the running background solve of a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleCancel)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_maze",
		Description: "Clear explored, path and dead end marks from the grid",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleReset)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "run_history",
		Description: "Get the solve history for a session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleRunHistory)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_cell",
		Description: "Get the state of one grid cell and which neighbours are open",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionProperty(),
				"row": map[string]interface{}{
					"type":        "integer",
					"description": "Row of the cell (0-based, top to bottom)",
				},
				"col": map[string]interface{}{
					"type":        "integer",
					"description": "Column of the cell (0-based, left to right)",
				},
			},
			Required: []string{"session_id", "row", "col"},
		},
	}, c.handleDescribeCell)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "solver_instructions",
		Description: "Get the grid legend and notes on both solvers",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleSolverInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// coordinateArg reads a {row, col} object argument.
func coordinateArg(args map[string]interface{}, key string) (map[string]int, bool) {
	raw, ok := args[key].(map[string]interface{})
	if !ok {
		return nil, false
	}
	row, rowOK := raw["row"].(float64)
	col, colOK := raw["col"].(float64)
	if !rowOK || !colOK {
		return nil, false
	}
	return map[string]int{"row": int(row), "col": int(col)}, true
}

// Tool handlers

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	configID := request.GetString("config_id", "")

	body := map[string]string{}
	if configID != "" {
		body["config_id"] = configID
	}

	var session service.SessionInfo
	err := c.apiCall("POST", "/api/sessions", body, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\nConfig: %s\nGrid: %dx%d\n",
		session.ID, session.ConfigName, session.Rows, session.Cols)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	err := c.apiCall("GET", "/api/sessions", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		status := "idle"
		if s.Running {
			status = "solving"
		}
		result += fmt.Sprintf("- %s (Config: %s, %dx%d, %s, Runs: %d)\n",
			s.ID, s.ConfigName, s.Rows, s.Cols, status, s.TotalRuns)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var session service.SessionInfo
	err := c.apiCall("GET", sessionPath(sessionID, ""), nil, &session)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	err := c.apiCall("GET", "/api/configs", nil, &configs)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Configurations:\n\n"
	for _, config := range configs {
		result += fmt.Sprintf("• %s (%s)\n  %s\n  Grid: %dx%d, Open cells: %d, Endpoints: %s -> %s\n\n",
			config.Name, config.ConfigID, config.Description,
			config.Rows, config.Cols, config.OpenCells,
			formatOptionalCoordinate(config.Start), formatOptionalCoordinate(config.End))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMazeState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var state service.GridState
	err := c.apiCall("GET", sessionPath(sessionID, "/state"), nil, &state)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatGridState(&state)), nil
}

func (c *Client) handleSolve(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID := request.GetString("session_id", "")

	body := map[string]interface{}{}
	if algorithm := request.GetString("algorithm", ""); algorithm != "" {
		body["algorithm"] = algorithm
	}
	if start, ok := coordinateArg(args, "start"); ok {
		body["start"] = start
	}
	if end, ok := coordinateArg(args, "end"); ok {
		body["end"] = end
	}
	if delay, ok := args["delay_ms"].(float64); ok {
		body["delay_ms"] = int(delay)
	}
	if maxSteps, ok := args["max_steps"].(float64); ok {
		body["max_steps"] = int(maxSteps)
	}

	if request.GetBool("async", false) {
		body["async"] = true
		var ticket service.SolveTicket
		if err := c.apiCall("POST", sessionPath(sessionID, "/solve"), body, &ticket); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		result := fmt.Sprintf("Started %s solve %s from %v to %v (delay %dms).\nUse maze_state to watch progress or cancel_solve to stop it.",
			ticket.Algorithm, ticket.RunID, ticket.Start, ticket.End, ticket.DelayMs)
		return mcp.NewToolResultText(result), nil
	}

	var result service.SolveResult
	if err := c.apiCall("POST", sessionPath(sessionID, "/solve"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSolveResult(&result)), nil
}

func (c *Client) handleCancel(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var response struct {
		Message string `json:"message"`
	}
	if err := c.apiCall("POST", sessionPath(sessionID, "/cancel"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response.Message), nil
}

func (c *Client) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	var response struct {
		Message string             `json:"message"`
		State   *service.GridState `json:"state"`
	}

	err := c.apiCall("POST", sessionPath(sessionID, "/reset"), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatGridState(response.State))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleRunHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")

	params := url.Values{}
	if page := request.GetInt("page", 0); page > 0 {
		params.Set("page", fmt.Sprint(page))
	}
	if limit := request.GetInt("limit", 0); limit > 0 {
		params.Set("limit", fmt.Sprint(limit))
	}
	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	err := c.apiCall("GET", path, nil, &history)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleDescribeCell(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID := request.GetString("session_id", "")
	row, err := request.RequireInt("row")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	col, err := request.RequireInt("col")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var cell service.CellInfo
	err = c.apiCall("GET", sessionPath(sessionID, fmt.Sprintf("/cells/%d/%d", row, col)), nil, &cell)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatCellInfo(&cell)), nil
}

func (c *Client) handleSolverInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Maze Solver - Instructions

GRID LEGEND:
• # - Wall
• (space) - Open cell
• . - Explored by the solver
• * - On the solution path
• x - Dead end (wall follower only)
• S - Start
• E - End

COORDINATES:
Cells are addressed as (row, col), both 0-based, row 0 at the top.
Neighbours are considered in the order right, down, left, up.

SOLVERS:
• bfs - Breadth-first search. Explores in rings of increasing distance
  and always returns a shortest path when one exists. Reports no_path
  when the end is unreachable.
• wall-follower - Depth-first backtracking. Follows one branch at a
  time, trying right, down, left, up from each cell and never turning
  straight back. It advances one cell per step, backs out of dead ends
  and marks them x. It never revisits a cell, finds a path whenever one
  exists, but that path is not guaranteed to be shortest.

WORKFLOW:
1. list_configs to pick a maze, then create_session
2. solve_maze (set async=true with a delay to watch it over WebSocket)
3. maze_state or describe_cell to inspect the result
4. reset_maze before trying the other solver, or just solve again
5. run_history to compare runs

Outcomes are solved, no_path or cancelled.`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

func formatOptionalCoordinate(c *grid.Coordinate) string {
	if c == nil {
		return "-"
	}
	return c.String()
}

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\nConfig: %s\nCreated: %s\nGrid: %dx%d\n",
		session.ID, session.ConfigName, session.CreatedAt.Format(time.RFC3339),
		session.Rows, session.Cols)
	if session.Start != nil && session.End != nil {
		fmt.Fprintf(&b, "Endpoints: %v -> %v\n", *session.Start, *session.End)
	}
	fmt.Fprintf(&b, "Solving: %v\nRuns: %d\n", session.Running, session.TotalRuns)
	if run := session.LastRun; run != nil {
		fmt.Fprintf(&b, "Last run: %s %s (path %d, steps %d)\n",
			run.Algorithm, run.Status, run.PathLength, run.Steps)
	}
	return b.String()
}

func formatGridState(state *service.GridState) string {
	if state == nil {
		return "Grid: unavailable"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Grid %dx%d", state.Rows, state.Cols)
	if state.Running {
		b.WriteString(" (solve in progress)")
	}
	b.WriteString("\n\n")
	b.WriteString(state.Rendered)
	if !strings.HasSuffix(state.Rendered, "\n") {
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\nOpen: %d, Explored: %d, Path: %d, Dead ends: %d, Walls: %d\n",
		state.Counts["open"], state.Counts["explored"], state.Counts["path"],
		state.Counts["dead_end"], state.Counts["wall"])
	return b.String()
}

func formatSolveResult(result *service.SolveResult) string {
	var b strings.Builder
	res := result.Result
	if res == nil {
		return "Solve finished without a result"
	}
	switch {
	case res.Solved:
		fmt.Fprintf(&b, "✓ Solved with %s: path of %d cells (depth %d)\n", res.Algorithm, len(res.Path), res.Depth)
	default:
		fmt.Fprintf(&b, "✗ %s with %s\n", res.Status, res.Algorithm)
	}
	fmt.Fprintf(&b, "From %v to %v, steps: %d, explored: %d, time: %s\n\n",
		result.Start, result.End, res.Steps, res.Explored, res.Elapsed)
	b.WriteString(result.Rendered)
	if len(res.Path) > 0 {
		cells := make([]string, len(res.Path))
		for i, c := range res.Path {
			cells[i] = c.String()
		}
		fmt.Fprintf(&b, "\nPath: %s\n", strings.Join(cells, " "))
	}
	return b.String()
}

func formatCellInfo(cell *service.CellInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Cell (%d,%d): %s\n", cell.Row, cell.Col, cell.State)
	if cell.IsStart {
		b.WriteString("This is the start cell\n")
	}
	if cell.IsEnd {
		b.WriteString("This is the end cell\n")
	}
	if cell.Wall {
		b.WriteString("Walls are never entered by a solver\n")
		return b.String()
	}
	if len(cell.OpenNeighbors) == 0 {
		b.WriteString("Open neighbours: none\n")
	} else {
		fmt.Fprintf(&b, "Open neighbours: %s\n", strings.Join(cell.OpenNeighbors, ", "))
	}
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	result := fmt.Sprintf("Run History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalRuns)

	for i, run := range history.Runs {
		num := (history.Page-1)*history.PageSize + i + 1
		status := "✓"
		if !run.Solved {
			status = "✗"
		}
		result += fmt.Sprintf("%d. %s %s %s %v->%v [path %d, steps %d, explored %d, %dms]\n",
			num, run.Algorithm, status, run.Status, run.Start, run.End,
			run.PathLength, run.Steps, run.Explored, run.ElapsedMs)
	}

	return result
}
