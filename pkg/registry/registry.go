// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"business-finder/internal/common/validation"
)

func LoadRegistry(path string) (*ActivityRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func Parse(data []byte) (*ActivityRegistry, error) {
	var reg ActivityRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("failed to parse activity registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate checks task type naming and that ids and task types are unique.
func (r *ActivityRegistry) Validate() error {
	ids := make(map[string]bool, len(r.Activities))
	taskTypes := make(map[string]bool, len(r.Activities))

	for _, a := range r.Activities {
		if a.ID == "" {
			return fmt.Errorf("activity with task type %q has no id", a.TaskType)
		}
		if ids[a.ID] {
			return fmt.Errorf("duplicate activity id %q", a.ID)
		}
		ids[a.ID] = true

		if err := validation.ValidateActivityNaming(a.TaskType); err != nil {
			return fmt.Errorf("activity %s: %w", a.ID, err)
		}
		if taskTypes[a.TaskType] {
			return fmt.Errorf("duplicate task type %q", a.TaskType)
		}
		taskTypes[a.TaskType] = true

		if a.Timeout != "" && a.TimeoutDuration() <= 0 {
			return fmt.Errorf("activity %s: invalid timeout %q", a.ID, a.Timeout)
		}
	}
	return nil
}

func (r *ActivityRegistry) Find(taskType string) (Activity, bool) {
	for _, a := range r.Activities {
		if a.TaskType == taskType {
			return a, true
		}
	}
	return Activity{}, false
}

// Undeclared returns the task types that have no activity, sorted.
func (r *ActivityRegistry) Undeclared(taskTypes []string) []string {
	var missing []string
	for _, t := range taskTypes {
		if _, ok := r.Find(t); !ok {
			missing = append(missing, t)
		}
	}
	sort.Strings(missing)
	return missing
}
