package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"rpa-agent/internal/runner"
	"rpa-agent/internal/services"
)

type Server struct {
	mcpServer  *server.MCPServer
	tasks      *services.TaskService
	reporter   *runner.StatusReporter
	controller *runner.Controller
}

func NewServer(tasks *services.TaskService, reporter *runner.StatusReporter, controller *runner.Controller) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"RPA Agent",
			"2.0.0",
			server.WithToolCapabilities(true),
		),
		tasks:      tasks,
		reporter:   reporter,
		controller: controller,
	}

	s.registerTools()
	return s
}

func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool(
			"run_task",
			mcp.WithDescription("Launch a predefined automation task"),
			mcp.WithString("task_name", mcp.Required(), mcp.Description("The catalog name of the task to run")),
		),
		s.handleRunTask,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"task_status",
			mcp.WithDescription("Get the status and log tail of a launched task"),
			mcp.WithString("task_id", mcp.Required(), mcp.Description("The task id returned by run_task")),
		),
		s.handleTaskStatus,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"list_tasks",
			mcp.WithDescription("List the available automation tasks"),
		),
		s.handleListTasks,
	)

	s.mcpServer.AddTool(
		mcp.NewTool(
			"stop_task",
			mcp.WithDescription("Terminate a running task by its OS process id"),
			mcp.WithNumber("pid", mcp.Required(), mcp.Description("The pid of the process to stop")),
		),
		s.handleStopTask,
	)
}

func (s *Server) handleRunTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	taskName, ok := args["task_name"].(string)
	if !ok || taskName == "" {
		return mcp.NewToolResultError("Missing required parameter: task_name"), nil
	}

	run, err := s.tasks.Dispatch(ctx, taskName, nil, true)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to run task: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(map[string]interface{}{
		"task_id":  run.TaskID,
		"pid":      run.Record.PID,
		"log_file": run.Record.LogFile,
		"status":   run.Record.Status,
	})
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleTaskStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	taskID, ok := args["task_id"].(string)
	if !ok || taskID == "" {
		return mcp.NewToolResultError("Missing required parameter: task_id"), nil
	}

	status, err := s.reporter.Query(taskID, runner.TaskLogTailLines)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to query status: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(status)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleListTasks(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	jsonBytes, _ := json.Marshal(s.tasks.Catalog().All())
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func (s *Server) handleStopTask(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return mcp.NewToolResultError("Invalid arguments type"), nil
	}

	pid, ok := args["pid"].(float64)
	if !ok {
		return mcp.NewToolResultError("Missing required parameter: pid"), nil
	}

	stopped, err := s.controller.Stop(int(pid))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Failed to stop task: %v", err)), nil
	}

	jsonBytes, _ := json.Marshal(stopped)
	return mcp.NewToolResultText(string(jsonBytes)), nil
}

func MountHTTPHandlers(mux *http.ServeMux, mcpServer *server.MCPServer) {
	// Use SSE server for /mcp/sse and /mcp/message endpoints
	sseServer := server.NewSSEServer(mcpServer, server.WithStaticBasePath("/mcp"))

	mux.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		// Direct POST for tool calls
		if r.Method == http.MethodPost {
			sseServer.ServeHTTP(w, r)
			return
		}
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	})

	// SSE endpoints
	mux.HandleFunc("/mcp/sse", sseServer.ServeHTTP)
	mux.HandleFunc("/mcp/message", sseServer.ServeHTTP)
}
