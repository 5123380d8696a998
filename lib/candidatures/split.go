package candidatures

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/dan-ringwald/balotilo/lib/textutil"

	"gopkg.in/yaml.v3"
)

// SplitLists takes a cleaned candidatures CSV (rows of list title,
// department, candidate names...) and appends each list to the
// candidates.yaml of the matching per-election directory under rootDir.
// Directories are matched by their zero-padded department prefix
// ("93_Seine_Saint_Denis"). Returns the number of rows placed.
func SplitLists(csvPath, rootDir string) (int, error) {
	in, err := os.Open(csvPath)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", csvPath, err)
	}

	placed := 0
	for _, row := range rows {
		if len(row) < 3 {
			continue
		}
		title := strings.TrimSpace(row[0])
		department := textutil.PadDepartment(row[1])

		var candidates []string
		for _, name := range row[2:] {
			name = strings.TrimSpace(name)
			if name != "" {
				candidates = append(candidates, name)
			}
		}

		dir, err := findDepartmentDir(rootDir, department)
		if err != nil {
			slog.Warn("no directory for department", "department", department, "list", title)
			continue
		}
		if err := appendList(filepath.Join(dir, "candidates.yaml"), title, candidates); err != nil {
			return placed, err
		}
		placed++
	}
	return placed, nil
}

func findDepartmentDir(rootDir, department string) (string, error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return "", err
	}
	for _, entry := range entries {
		if entry.IsDir() && strings.HasPrefix(entry.Name(), department+"_") {
			return filepath.Join(rootDir, entry.Name()), nil
		}
	}
	return "", fmt.Errorf("no directory for department %s", department)
}

// appendList writes one "title: [candidates...]" mapping to the yaml file,
// creating it if needed. Appending keeps earlier lists (and their
// declaration order) intact.
func appendList(path, title string, candidates []string) error {
	doc, err := yaml.Marshal(map[string][]string{title: candidates})
	if err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}
	if info.Size() > 0 {
		if _, err := f.Write([]byte("\n")); err != nil {
			return err
		}
	}
	_, err = f.Write(doc)
	return err
}
