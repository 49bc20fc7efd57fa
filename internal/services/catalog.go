package services

import (
	"sort"

	"rpa-agent/pkg/models"
)

// Catalog maps predefined task names to automation scripts. It is built
// once at startup and read-only afterwards.
type Catalog struct {
	tasks          map[string]models.TaskDefinition
	nonInteractive map[string]bool
}

// NewCatalog builds a catalog from an explicit task table, keeping the
// built-in knowledge of which scripts accept the non-interactive argument.
func NewCatalog(tasks map[string]models.TaskDefinition) *Catalog {
	c := DefaultCatalog()
	c.tasks = tasks
	return c
}

// DefaultCatalog returns the built-in task catalog.
func DefaultCatalog() *Catalog {
	return &Catalog{
		tasks: map[string]models.TaskDefinition{
			"extract-data": {
				Name:        "Data Extraction",
				Description: "Web scraping and data extraction workflow",
				Script:      "web_scraping_workflow.py",
			},
			"process-pdf": {
				Name:        "PDF Processing",
				Description: "Complete PDF processing workflow",
				Script:      "final_complete_workflow.py",
			},
			"fill-and-send": {
				Name:        "Fill and Send",
				Description: "PDF form filling and email workflow",
				Script:      "fill_and_send_workflow.py",
			},
			"data-processing": {
				Name:        "Data Processing",
				Description: "Data analysis and reporting workflow",
				Script:      "data_processing_workflow.py",
			},
			"email-automation": {
				Name:        "Email Automation",
				Description: "Bulk email operations workflow",
				Script:      "email_automation_workflow.py",
			},
			"file-management": {
				Name:        "File Management",
				Description: "File organization and cleanup workflow",
				Script:      "file_management_workflow.py",
			},
			"partial-workflow": {
				Name:        "Partial Workflow",
				Description: "Testing workflow for development",
				Script:      "run_partial.py",
			},
		},
		// run_partial.py predates the flag and would choke on it.
		nonInteractive: map[string]bool{
			"web_scraping_workflow.py":     true,
			"final_complete_workflow.py":   true,
			"fill_and_send_workflow.py":    true,
			"data_processing_workflow.py":  true,
			"email_automation_workflow.py": true,
			"file_management_workflow.py":  true,
		},
	}
}

// Lookup returns the task definition for a task name.
func (c *Catalog) Lookup(taskName string) (models.TaskDefinition, bool) {
	def, ok := c.tasks[taskName]
	return def, ok
}

// All returns the full name-to-definition table.
func (c *Catalog) All() map[string]models.TaskDefinition {
	out := make(map[string]models.TaskDefinition, len(c.tasks))
	for k, v := range c.tasks {
		out[k] = v
	}
	return out
}

// Names returns all task names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.tasks))
	for name := range c.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SupportsNonInteractive reports whether the script accepts the
// --non-interactive argument. Used by the legacy start surface, which
// dispatches raw script paths of unknown vintage.
func (c *Catalog) SupportsNonInteractive(script string) bool {
	return c.nonInteractive[script]
}
