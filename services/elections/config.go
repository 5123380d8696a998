package elections

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dan-ringwald/balotilo/lib/scrapers/balotilo"

	"gopkg.in/yaml.v3"
)

// ErrMissingInputs marks an election directory that lacks its candidates or
// voters file. The batch driver records it as a skip, never an abort.
var ErrMissingInputs = fmt.Errorf("missing required files in election directory")

// Definition points at the input files of one election, discovered from its
// subdirectory.
type Definition struct {
	Name           string
	CandidatesFile string
	VotersFile     string
}

// LoadSharedConfig reads the baseline config.yaml shared by every election
// in the batch. Its title acts as a title template: the per-election title
// is derived from it plus the directory name.
func LoadSharedConfig(dir string) (balotilo.ElectionConfig, error) {
	var cfg balotilo.ElectionConfig

	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		return cfg, fmt.Errorf("read shared config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse shared config: %w", err)
	}
	return cfg, nil
}

// DiscoverDefinitions walks the elections directory and returns one
// Definition per subdirectory, in name order. A subdirectory contributes
// whatever files it has; validation happens at processing time so one bad
// directory doesn't hide the rest.
func DiscoverDefinitions(dir string) ([]Definition, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read elections directory: %w", err)
	}

	var defs []Definition
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		def := Definition{Name: entry.Name()}
		subdir := filepath.Join(dir, entry.Name())
		files, err := os.ReadDir(subdir)
		if err != nil {
			return nil, err
		}
		for _, file := range files {
			if file.IsDir() {
				continue
			}
			name := file.Name()
			switch {
			case strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml"):
				def.CandidatesFile = filepath.Join(subdir, name)
			case strings.Contains(strings.ToLower(name), "voters") && strings.HasSuffix(name, ".txt"):
				def.VotersFile = filepath.Join(subdir, name)
			}
		}
		defs = append(defs, def)
	}

	sort.Slice(defs, func(i, j int) bool { return defs[i].Name < defs[j].Name })
	return defs, nil
}

// LoadCandidates parses the candidates file, a mapping from list title to
// candidate names. Declaration order is significant (lists pair
// positionally with server-assigned identifiers), so the document is walked
// as a yaml node tree instead of an unordered map.
func LoadCandidates(path string) ([]balotilo.CandidateList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read candidates file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse candidates file: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, fmt.Errorf("candidates file %s is empty", path)
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("candidates file %s: expected a mapping of list title to candidates", path)
	}

	var lists []balotilo.CandidateList
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		value := root.Content[i+1]

		var candidates []string
		if err := value.Decode(&candidates); err != nil {
			return nil, fmt.Errorf("candidates file %s: list %q: %w", path, key.Value, err)
		}
		lists = append(lists, balotilo.CandidateList{
			Title:      key.Value,
			Candidates: candidates,
		})
	}
	return lists, nil
}

// LoadVoters reads the voter file as one raw blob, one email per line. The
// client submits it unchanged; the server is the source of truth for
// validity and duplicates.
func LoadVoters(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read voters file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}
