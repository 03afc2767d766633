package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
)

// scrubDropColumns are raw columns with no predictive value that the scrub
// pass removes before the file is distributed.
var scrubDropColumns = map[string]struct{}{
	"date":         {},
	"match_type":   {},
	"event_name":   {},
	"gender":       {},
	"team_type":    {},
	"method":       {},
	"match_number": {},
}

// ScrubReport describes a raw-file scrub pass.
type ScrubReport struct {
	Rows           int
	DroppedColumns []string
	FilledCells    int
}

// ScrubRawCSV copies the raw CSV from inPath to outPath, dropping the
// fixed set of non-predictive columns and filling empty cells with the
// literal "None" placeholder.
func ScrubRawCSV(inPath, outPath string) (ScrubReport, error) {
	in, err := os.Open(inPath)
	if err != nil {
		return ScrubReport{}, fmt.Errorf("open raw csv %s: %w", inPath, err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return ScrubReport{}, fmt.Errorf("create scrubbed csv %s: %w", outPath, err)
	}
	defer out.Close()

	r := csv.NewReader(in)
	r.FieldsPerRecord = -1
	w := csv.NewWriter(out)

	header, err := r.Read()
	if err != nil {
		return ScrubReport{}, fmt.Errorf("read header of %s: %w", inPath, err)
	}

	var report ScrubReport
	keep := make([]int, 0, len(header))
	outHeader := make([]string, 0, len(header))
	for i, name := range header {
		if _, drop := scrubDropColumns[name]; drop {
			report.DroppedColumns = append(report.DroppedColumns, name)
			continue
		}
		keep = append(keep, i)
		outHeader = append(outHeader, name)
	}
	if err := w.Write(outHeader); err != nil {
		return ScrubReport{}, fmt.Errorf("write header: %w", err)
	}

	row := make([]string, len(keep))
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return ScrubReport{}, fmt.Errorf("read %s: %w", inPath, err)
		}
		for j, i := range keep {
			v := ""
			if i < len(record) {
				v = record[i]
			}
			if v == "" {
				v = nullLiteral
				report.FilledCells++
			}
			row[j] = v
		}
		if err := w.Write(row); err != nil {
			return ScrubReport{}, fmt.Errorf("write row: %w", err)
		}
		report.Rows++
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return ScrubReport{}, fmt.Errorf("flush scrubbed csv: %w", err)
	}

	log.Info().
		Str("in", inPath).
		Str("out", outPath).
		Int("rows", report.Rows).
		Strs("dropped_columns", report.DroppedColumns).
		Int("filled_cells", report.FilledCells).
		Msg("raw csv scrubbed")
	return report, nil
}
