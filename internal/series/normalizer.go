// Package series turns a raw engagement table into canonical minute-indexed metrics.
package series

import (
	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/sirupsen/logrus"
)

// Normalize coerces the metric columns of table into a Series. Rows are never
// dropped; unreadable cells become zero and unreadable minutes the row ordinal.
func Normalize(table models.RawTable, mapping models.FieldMapping) (*models.Series, error) {
	if table.Len() == 0 {
		return nil, &models.EmptyDataError{Artifact: "metrics"}
	}

	timeMatch, hasTime := mapping[models.FieldTime]
	minutes, holes := MinuteIndex(table.Rows, timeMatch, hasTime)
	if holes > 0 {
		logrus.Debugf("series: %d of %d minute cells unreadable, using row ordinal", holes, table.Len())
	}

	s := &models.Series{
		Minutes: minutes,
		Metrics: make(map[models.Metric][]float64),
	}

	for _, metric := range models.Metrics {
		column, ok := mapping.Column(metric)
		if !ok {
			continue
		}

		values := make([]float64, table.Len())
		invalid := 0
		for i, row := range table.Rows {
			v, ok := ParseNumber(row[column])
			if !ok {
				invalid++
				continue
			}
			if v < 0 {
				invalid++
				v = 0
			}
			values[i] = v
		}
		if invalid > 0 {
			logrus.Debugf("series: %s has %d unreadable cells, set to 0", metric, invalid)
		}
		s.Metrics[metric] = values
	}

	return s, nil
}

// MinuteIndex resolves the minute of every row and reports how many rows fell
// back to their ordinal.
func MinuteIndex(rows []map[string]string, match models.FieldMatch, hasTime bool) ([]int, int) {
	minutes := make([]int, len(rows))
	if !hasTime {
		for i := range rows {
			minutes[i] = i
		}
		return minutes, 0
	}

	holes := 0
	switch match.Unit {
	case models.UnitSeconds:
		for i, row := range rows {
			sec, ok := ParseSeconds(row[match.Column])
			m, inRange := SecondsToMinutes(sec)
			if !ok || !inRange {
				minutes[i] = i
				holes++
				continue
			}
			minutes[i] = m
		}

	case models.UnitClock:
		var base float64
		haveBase := false
		for i, row := range rows {
			t, ok := ParseClock(row[match.Column])
			if !ok {
				minutes[i] = i
				holes++
				continue
			}
			sec := float64(t.Unix())
			if !haveBase {
				base = sec
				haveBase = true
			}
			m, inRange := SecondsToMinutes(sec - base)
			if !inRange {
				minutes[i] = i
				holes++
				continue
			}
			minutes[i] = m
		}

	default:
		for i, row := range rows {
			v, ok := ParseNumber(row[match.Column])
			m, inRange := ToMinute(v)
			if !ok || !inRange {
				minutes[i] = i
				holes++
				continue
			}
			minutes[i] = m
		}
	}

	return minutes, holes
}
