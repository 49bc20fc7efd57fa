// rpactl is a small command line client for the RPA control plane API.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"rpa-agent/pkg/models"
)

var (
	serverURL string
	authToken string
)

func main() {
	root := &cobra.Command{
		Use:           "rpactl",
		Short:         "Control plane client for RPA workflow automation",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Base URL of the control plane")
	root.PersistentFlags().StringVar(&authToken, "token", "", "Bearer token for authenticated servers")

	root.AddCommand(tasksCmd(), workflowsCmd(), healthCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func tasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Inspect and launch predefined automation tasks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the available tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(http.MethodGet, "/api/rpa/tasks", nil)
		},
	})

	var sync bool
	run := &cobra.Command{
		Use:   "run <task-name>",
		Short: "Launch a task by its catalog name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			async := !sync
			return printJSON(http.MethodPost, "/api/rpa/"+args[0], models.TaskRequest{
				AsyncExecution: &async,
			})
		},
	}
	run.Flags().BoolVar(&sync, "wait", false, "Wait for the task to finish before returning")
	cmd.AddCommand(run)

	cmd.AddCommand(&cobra.Command{
		Use:   "status <task-id>",
		Short: "Show the status and log tail of a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(http.MethodGet, "/api/rpa/status/"+args[0], nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "history",
		Short: "Show the task launch history",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(http.MethodGet, "/api/rpa/history", nil)
		},
	})

	var pid int
	stop := &cobra.Command{
		Use:   "stop",
		Short: "Terminate a running task by pid",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(http.MethodPost, "/workflows/stop", models.LegacyStopRequest{PID: pid})
		},
	}
	stop.Flags().IntVar(&pid, "pid", 0, "OS process id of the task to stop")
	stop.MarkFlagRequired("pid")
	cmd.AddCommand(stop)

	return cmd
}

func workflowsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflows",
		Short: "Manage stored workflow definitions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List workflow definitions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(http.MethodGet, "/api/workflows", nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <id>",
		Short: "Show a workflow definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(http.MethodGet, "/api/workflows/"+args[0], nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "run <id>",
		Short: "Dispatch a stored workflow's script",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(http.MethodPost, "/api/workflows/"+args[0]+"/run", nil)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a workflow definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(http.MethodDelete, "/api/workflows/"+args[0], nil)
		},
	})

	return cmd
}

func healthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Show server health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(http.MethodGet, "/api/health", nil)
		},
	}
}

// printJSON issues the request and pretty-prints the JSON response body.
// Non-2xx responses become errors carrying the body.
func printJSON(method, path string, body interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequest(method, serverURL+path, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: 5 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var pretty bytes.Buffer
	dec := json.NewDecoder(resp.Body)
	var raw json.RawMessage
	if err := dec.Decode(&raw); err != nil {
		return fmt.Errorf("server returned %s with unreadable body", resp.Status)
	}
	if err := json.Indent(&pretty, raw, "", "  "); err != nil {
		return err
	}

	if resp.StatusCode >= 300 {
		return fmt.Errorf("server returned %s: %s", resp.Status, pretty.String())
	}

	fmt.Println(pretty.String())
	return nil
}
