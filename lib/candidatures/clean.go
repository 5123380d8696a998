// Package candidatures prepares raw candidature exports for the batch
// driver: redacting contact details out of a national CSV, splitting it
// into per-election candidates files and extracting voter emails from
// per-election rolls.
package candidatures

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/dan-ringwald/balotilo/lib/textutil"
)

// columns 2..7 of the national export hold candidate names with contact
// details mixed in; column 1 is the department number.
const (
	departmentColumn    = 1
	firstCandidateColumn = 2
	lastCandidateColumn  = 7
)

// CleanCSV redacts emails and phone numbers from the candidate columns and
// zero-pads the department column, writing the result to outPath. The
// header row is carried over untouched.
func CleanCSV(inPath, outPath string) error {
	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	reader := csv.NewReader(in)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if departmentColumn < len(row) {
			row[departmentColumn] = textutil.PadDepartment(row[departmentColumn])
		}
		for col := firstCandidateColumn; col <= lastCandidateColumn && col < len(row); col++ {
			row[col] = textutil.CleanCandidate(row[col])
		}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	writer := csv.NewWriter(out)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}
