package schema

import "github.com/livecommerce/stream-analyzer/internal/models"

// Rule maps a label substring to a canonical field. Higher priority wins.
type Rule struct {
	Field    models.Field
	Pattern  string
	Priority int
	Unit     models.TimeUnit
}

// Profile is the rule set for one kind of input artifact.
type Profile struct {
	Name  string
	Rules []Rule

	// Required fields must all be detected.
	Required []models.Field
	// RequireAny needs at least one of its fields detected.
	RequireAny []models.Field
}

// Patterns are written in their normalized form: NFKC, lower case.

// MetricsProfile detects columns of the engagement timeseries export.
var MetricsProfile = Profile{
	Name: "metrics",
	Rules: []Rule{
		{models.FieldTime, "分", 9, models.UnitMinutes},
		{models.FieldTime, "minute", 9, models.UnitMinutes},
		{models.FieldTime, "秒", 8, models.UnitSeconds},
		{models.FieldTime, "second", 8, models.UnitSeconds},
		{models.FieldTime, "sec", 7, models.UnitSeconds},
		{models.FieldTime, "elapsed", 6, models.UnitSeconds},
		{models.FieldTime, "timestamp", 5, models.UnitClock},
		{models.FieldTime, "時刻", 5, models.UnitClock},
		{models.FieldTime, "time", 4, models.UnitClock},
		{models.FieldTime, "時間", 4, models.UnitClock},
		{models.FieldTime, "経過", 3, models.UnitMinutes},

		{models.FieldViewers, "同時視聴", 10, models.UnitNone},
		{models.FieldViewers, "視聴者", 9, models.UnitNone},
		{models.FieldViewers, "viewer", 9, models.UnitNone},
		{models.FieldViewers, "concurrent", 8, models.UnitNone},
		{models.FieldViewers, "視聴", 7, models.UnitNone},
		{models.FieldViewers, "watch", 6, models.UnitNone},
		{models.FieldViewers, "同時", 5, models.UnitNone},
		{models.FieldViewers, "ユーザー", 3, models.UnitNone},

		{models.FieldLikes, "いいね", 9, models.UnitNone},
		{models.FieldLikes, "like", 9, models.UnitNone},
		{models.FieldLikes, "favorite", 7, models.UnitNone},
		{models.FieldLikes, "heart", 6, models.UnitNone},
		{models.FieldLikes, "ハート", 6, models.UnitNone},

		{models.FieldComments, "コメント", 9, models.UnitNone},
		{models.FieldComments, "comment", 9, models.UnitNone},
		{models.FieldComments, "chat", 7, models.UnitNone},
		{models.FieldComments, "チャット", 7, models.UnitNone},

		{models.FieldClicks, "クリック", 9, models.UnitNone},
		{models.FieldClicks, "click", 9, models.UnitNone},
		{models.FieldClicks, "商品", 5, models.UnitNone},
		{models.FieldClicks, "product", 5, models.UnitNone},
	},
	RequireAny: models.Metrics,
}

// CommentsProfile detects columns of the comment log export.
var CommentsProfile = Profile{
	Name: "comments",
	Rules: []Rule{
		{models.FieldCommentText, "original_text", 10, models.UnitNone},
		{models.FieldCommentText, "original", 9, models.UnitNone},
		{models.FieldCommentText, "text", 8, models.UnitNone},
		{models.FieldCommentText, "コメント", 7, models.UnitNone},
		{models.FieldCommentText, "comment", 6, models.UnitNone},
		{models.FieldCommentText, "message", 5, models.UnitNone},
		{models.FieldCommentText, "本文", 4, models.UnitNone},
		{models.FieldCommentText, "content", 3, models.UnitNone},

		{models.FieldTime, "elapsed", 9, models.UnitSeconds},
		{models.FieldTime, "秒", 8, models.UnitSeconds},
		{models.FieldTime, "second", 8, models.UnitSeconds},
		{models.FieldTime, "分", 7, models.UnitMinutes},
		{models.FieldTime, "minute", 7, models.UnitMinutes},
		{models.FieldTime, "timestamp", 6, models.UnitClock},
		{models.FieldTime, "時刻", 6, models.UnitClock},
		{models.FieldTime, "time", 5, models.UnitClock},
		{models.FieldTime, "時間", 5, models.UnitClock},

		{models.FieldUser, "username", 9, models.UnitNone},
		{models.FieldUser, "user", 8, models.UnitNone},
		{models.FieldUser, "ユーザー", 8, models.UnitNone},
		{models.FieldUser, "名前", 6, models.UnitNone},
		{models.FieldUser, "name", 5, models.UnitNone},
		{models.FieldUser, "投稿者", 4, models.UnitNone},
		{models.FieldUser, "author", 4, models.UnitNone},
	},
	Required: []models.Field{models.FieldCommentText},
}

// fields returns the distinct fields of p in first-rule order.
func (p Profile) fields() []models.Field {
	seen := make(map[models.Field]bool)
	var fields []models.Field
	for _, r := range p.Rules {
		if !seen[r.Field] {
			seen[r.Field] = true
			fields = append(fields, r.Field)
		}
	}
	return fields
}

func (p Profile) rulesFor(field models.Field) []Rule {
	var rules []Rule
	for _, r := range p.Rules {
		if r.Field == field {
			rules = append(rules, r)
		}
	}
	return rules
}
