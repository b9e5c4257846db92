package playbook

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Marshal renders a Playbook as its declarative YAML form.
func Marshal(pb Playbook) ([]byte, error) {
	data, err := yaml.Marshal(pb)
	if err != nil {
		return nil, fmt.Errorf("playbook: marshal %q: %w", pb.Name, err)
	}
	return data, nil
}

// Unmarshal parses a declarative YAML playbook definition.
func Unmarshal(data []byte) (Playbook, error) {
	var pb Playbook
	if err := yaml.Unmarshal(data, &pb); err != nil {
		return Playbook{}, fmt.Errorf("playbook: unmarshal: %w", err)
	}
	return pb, nil
}
