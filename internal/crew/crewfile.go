package crew

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ShayCichocki/reviewcrew/pkg/models"
)

// crewFile is the on-disk YAML shape for a custom crew.
//
//	name: my-crew
//	terminal: decision
//	workers:
//	  - role: Reviewer
//	    goal: ...
//	    backstory: ...
//	tasks:
//	  - id: decision
//	    worker: Reviewer
//	    description: ...
//	    expected_output: ...
//	    depends_on: [a, b]
type crewFile struct {
	Name     string          `yaml:"name"`
	Terminal string          `yaml:"terminal"`
	Workers  []models.Worker `yaml:"workers"`
	Tasks    []*models.Task  `yaml:"tasks"`
}

// LoadFile reads a custom crew definition from a YAML file and validates it.
func LoadFile(path string) (*Crew, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading crew file: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML crew definition and validates it. Task statuses in
// the file are ignored; every task starts pending.
func Parse(data []byte) (*Crew, error) {
	var cf crewFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parsing crew file: %w", err)
	}
	if cf.Name == "" {
		cf.Name = "custom"
	}
	if cf.Terminal == "" && len(cf.Tasks) > 0 {
		// Default to the last declared task, matching how crews are
		// naturally written: specialists first, synthesis last.
		cf.Terminal = cf.Tasks[len(cf.Tasks)-1].ID
	}
	for _, t := range cf.Tasks {
		t.Status = models.TaskStatusPending
	}

	c := &Crew{
		Name:       cf.Name,
		Workers:    cf.Workers,
		Tasks:      cf.Tasks,
		TerminalID: cf.Terminal,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
