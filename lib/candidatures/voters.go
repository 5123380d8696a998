package candidatures

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// ExtractVoters walks every subdirectory of rootDir, finds its
// votants_*.csv roll and writes the Email column to voters.txt next to it,
// the format the batch driver consumes. Returns how many directories were
// processed and how many failed.
func ExtractVoters(rootDir string) (processed, failed int, err error) {
	entries, err := os.ReadDir(rootDir)
	if err != nil {
		return 0, 0, err
	}

	for _, entry := range entries {
		if !entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		dir := filepath.Join(rootDir, entry.Name())
		if err := extractDirectory(dir); err != nil {
			slog.Error("failed to extract voters", "directory", entry.Name(), "err", err)
			failed++
			continue
		}
		processed++
	}
	return processed, failed, nil
}

func extractDirectory(dir string) error {
	matches, err := filepath.Glob(filepath.Join(dir, "votants_*.csv"))
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("no votants_*.csv file in %s", dir)
	}
	if len(matches) > 1 {
		slog.Warn("multiple votants files found, using the first", "directory", dir)
	}

	in, err := os.Open(matches[0])
	if err != nil {
		return err
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parse %s: %w", matches[0], err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%s is empty", matches[0])
	}

	emailColumn := -1
	for i, header := range rows[0] {
		if strings.TrimSpace(header) == "Email" {
			emailColumn = i
			break
		}
	}
	if emailColumn < 0 {
		return fmt.Errorf("no Email column in %s", matches[0])
	}

	var out strings.Builder
	count := 0
	for _, row := range rows[1:] {
		if emailColumn >= len(row) {
			continue
		}
		email := strings.TrimSpace(row[emailColumn])
		if email == "" {
			continue
		}
		out.WriteString(email)
		out.WriteString("\n")
		count++
	}

	votersPath := filepath.Join(dir, "voters.txt")
	if err := os.WriteFile(votersPath, []byte(out.String()), 0644); err != nil {
		return err
	}
	slog.Info("wrote voters file", "path", votersPath, "emails", count)
	return nil
}
