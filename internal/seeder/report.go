package seeder

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type Report struct {
	Seed       int64    `yaml:"seed"`
	Dialect    string   `yaml:"dialect"`
	Now        string   `yaml:"now"`
	Counts     Counts   `yaml:"counts"`
	Shortfalls []string `yaml:"shortfalls,omitempty"`
	Overlap    *Overlap `yaml:"overlap,omitempty"`
}

func (r *Result) Report(overlap *Overlap) Report {
	rep := Report{
		Seed:    r.Params.Seed,
		Dialect: string(r.Params.Dialect),
		Now:     FormatTimestamp(r.Params.Now),
		Counts:  r.Counts,
		Overlap: overlap,
	}
	for _, s := range r.Shortfalls() {
		rep.Shortfalls = append(rep.Shortfalls, s.String())
	}
	return rep
}

// WriteScript writes the newline-joined script, creating parent directories.
func (r *Result) WriteScript(path string) error {
	return writeFile(path, []byte(r.Script()))
}

func WriteReport(path string, rep Report) error {
	data, err := yaml.Marshal(rep)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return writeFile(path, data)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
