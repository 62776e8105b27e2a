// Package plan loads test plans: which sampler to run, against which node,
// how many threads and iterations, and the parameter values to supply.
//
// A plan is YAML. It is decoded strictly, checked against an embedded CUE
// schema, and then checked against the declared parameters of the sampler
// it names.
package plan

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Plan is a parsed test plan.
type Plan struct {
	// Name identifies the plan in output.
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description"`

	// Sampler names a registered sampler.
	Sampler string `yaml:"sampler" json:"sampler"`

	RPC RPC `yaml:"rpc" json:"rpc"`

	// Threads is the number of independent sampler instances, each with its
	// own connection. Defaults to 1.
	Threads int `yaml:"threads,omitempty" json:"threads"`

	// Iterations per thread. Defaults to 1.
	Iterations int `yaml:"iterations,omitempty" json:"iterations"`

	// Parameters are raw values for the sampler's declared parameters.
	Parameters map[string]string `yaml:"parameters,omitempty" json:"parameters"`
}

// RPC holds the node connection settings.
type RPC struct {
	Address  string `yaml:"address" json:"address"`
	Username string `yaml:"username,omitempty" json:"username"`
	Password string `yaml:"password,omitempty" json:"password"`
	// CallTimeout bounds each RPC call. Zero waits indefinitely.
	CallTimeout time.Duration `yaml:"call_timeout,omitempty" json:"callTimeout"`
}

// Load reads, parses and validates the plan at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan file: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a plan. Unknown fields are rejected.
func Parse(data []byte) (*Plan, error) {
	var p Plan
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&p); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	p.applyDefaults()
	if err := Validate(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Plan) applyDefaults() {
	if p.Threads == 0 {
		p.Threads = 1
	}
	if p.Iterations == 0 {
		p.Iterations = 1
	}
	if p.Parameters == nil {
		p.Parameters = map[string]string{}
	}
}
