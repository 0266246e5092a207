package comments

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/livecommerce/stream-analyzer/internal/models"
	"github.com/livecommerce/stream-analyzer/internal/series"
	"github.com/sirupsen/logrus"
)

const (
	unknownUser = "不明"
	unknownTime = "時刻不明"
)

// Extract builds comments from a comment log. Rows with a blank comment text are
// dropped; an empty result is an *models.EmptyDataError.
func Extract(table models.RawTable, mapping models.FieldMapping) ([]models.Comment, error) {
	textColumn, ok := mapping.Column(models.FieldCommentText)
	if !ok {
		return nil, fmt.Errorf("comments: mapping has no %s field", models.FieldCommentText)
	}
	userColumn, hasUser := mapping.Column(models.FieldUser)
	timeMatch, hasTime := mapping[models.FieldTime]

	var base time.Time
	haveBase := false

	comments := make([]models.Comment, 0, table.Len())
	dropped := 0
	for _, row := range table.Rows {
		text := strings.TrimSpace(row[textColumn])
		if text == "" {
			dropped++
			continue
		}

		c := models.Comment{Text: text, User: unknownUser, Timestamp: unknownTime}
		if hasUser {
			if user := strings.TrimSpace(row[userColumn]); user != "" {
				c.User = user
			}
		}

		if hasTime {
			raw := strings.TrimSpace(row[timeMatch.Column])
			switch timeMatch.Unit {
			case models.UnitSeconds:
				sec, ok := series.ParseSeconds(raw)
				if m, inRange := series.SecondsToMinutes(sec); ok && inRange {
					c.Minute, c.HasMinute = m, true
					c.Timestamp = fmt.Sprintf("%d分%02d秒", m, int(math.Floor(sec))%60)
				}
			case models.UnitClock:
				if raw != "" {
					c.Timestamp = raw
				}
				if t, ok := series.ParseClock(raw); ok {
					if !haveBase {
						base, haveBase = t, true
					}
					if m, ok := series.SecondsToMinutes(t.Sub(base).Seconds()); ok {
						c.Minute, c.HasMinute = m, true
					}
				}
			default:
				v, ok := series.ParseNumber(raw)
				if m, inRange := series.ToMinute(v); ok && inRange {
					c.Minute, c.HasMinute = m, true
					c.Timestamp = fmt.Sprintf("%d分", c.Minute)
				}
			}
		}

		comments = append(comments, c)
	}

	if dropped > 0 {
		logrus.Debugf("comments: dropped %d rows with blank text", dropped)
	}
	if len(comments) == 0 {
		return nil, &models.EmptyDataError{Artifact: "comments"}
	}

	return comments, nil
}
