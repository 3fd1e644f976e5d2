// Package export renders rollups and KPI summaries as downloadable files.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/pdc-tracking/backend/internal/models"
)

// MonthLayout is the format of the Month column.
const MonthLayout = "2006-01"

// CSVHeader returns the header row for a rollup with the given channels.
func CSVHeader(channels []models.Channel) []string {
	header := make([]string, 0, len(channels)+1)
	header = append(header, "Month")
	for _, ch := range channels {
		header = append(header, ch.Label())
	}
	return header
}

// WriteRollupCSV writes one row per month. Values use the shortest decimal
// representation that round-trips; absent channel values are empty cells.
func WriteRollupCSV(w io.Writer, r models.MonthlyRollup) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader(r.Channels)); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, row := range r.Rows {
		rec := make([]string, 0, len(r.Channels)+1)
		rec = append(rec, row.Month.Format(MonthLayout))
		for _, ch := range r.Channels {
			v, ok := row.Value(ch)
			if !ok {
				rec = append(rec, "")
				continue
			}
			rec = append(rec, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// CSVFilename is the download name of a device rollup.
func CSVFilename(device string, r models.TimeRange) string {
	return fmt.Sprintf("%s_%s_%s_monthly.csv", device, r.Start.Format("20060102"), r.End.Format("20060102"))
}
