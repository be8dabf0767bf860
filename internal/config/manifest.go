package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vexel-lang/vexel/internal/typecheck"
)

// ProjectManifest is the parsed form of vexel.yaml: everything spec §6
// lists as an input to the core, besides the error sink itself.
type ProjectManifest struct {
	Entry   string            `yaml:"entry"`
	Root    string            `yaml:"root"`
	Backend string            `yaml:"backend"`
	Options map[string]string `yaml:"options,omitempty"`

	Verbose      bool `yaml:"verbose,omitempty"`
	EmitAnalysis bool `yaml:"emit_analysis,omitempty"`
	AllowProcess bool `yaml:"allow_process,omitempty"`

	// Strictness is 0 (relaxed), 1 (require local annotations), or 2
	// (full) per spec §6; see internal/typecheck.Strictness.
	Strictness int `yaml:"strictness,omitempty"`

	// OutputStem, if empty, defaults to the entry file's name with its
	// source extension trimmed.
	OutputStem string `yaml:"output_stem,omitempty"`
	OutputDir  string `yaml:"output_dir,omitempty"`
}

// LoadManifest reads and parses a vexel.yaml file.
func LoadManifest(path string) (*ProjectManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return ParseManifest(data, path)
}

// ParseManifest parses vexel.yaml content from bytes. path is used
// only for error messages and to resolve Entry/Root when they are
// relative.
func ParseManifest(data []byte, path string) (*ProjectManifest, error) {
	var m ProjectManifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.validate(path); err != nil {
		return nil, err
	}
	m.setDefaults(path)
	return &m, nil
}

// FindManifest searches for vexel.yaml starting from dir and walking
// up to parent directories, the same upward search the teacher's
// FindConfig performs for funxy.yaml.
func FindManifest(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (m *ProjectManifest) validate(path string) error {
	if m.Entry == "" {
		return fmt.Errorf("%s: entry is required", path)
	}
	if m.Backend == "" {
		return fmt.Errorf("%s: backend is required", path)
	}
	if m.Strictness < 0 || m.Strictness > 2 {
		return fmt.Errorf("%s: strictness must be 0, 1, or 2, got %d", path, m.Strictness)
	}
	return nil
}

func (m *ProjectManifest) setDefaults(path string) {
	configDir := filepath.Dir(path)
	if m.Root == "" {
		m.Root = configDir
	} else if !filepath.IsAbs(m.Root) {
		m.Root = filepath.Join(configDir, m.Root)
	}
	if !filepath.IsAbs(m.Entry) {
		m.Entry = filepath.Join(m.Root, m.Entry)
	}
	if m.OutputStem == "" {
		base := filepath.Base(m.Entry)
		m.OutputStem = base[:len(base)-len(filepath.Ext(base))]
	}
	if m.OutputDir == "" {
		m.OutputDir = m.Root
	}
}

// StrictnessLevel converts the manifest's integer level to the
// internal/typecheck enum the checker actually consumes.
func (m *ProjectManifest) StrictnessLevel() typecheck.Strictness {
	return typecheck.Strictness(m.Strictness)
}

// AnalysisReportPath is where an emitted analysis report is written
// when EmitAnalysis is set (spec §6 "<stem>.analysis.txt").
func (m *ProjectManifest) AnalysisReportPath() string {
	return filepath.Join(m.OutputDir, m.OutputStem+DefaultAnalysisSuffix)
}
