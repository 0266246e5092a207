package comments

import (
	"regexp"

	"github.com/livecommerce/stream-analyzer/internal/models"
)

// Rule files a comment under Category when Pattern matches anywhere in its text.
type Rule struct {
	Category models.Category
	Pattern  *regexp.Regexp
}

// Group is a category and its pattern fragments.
type Group struct {
	Category models.Category
	Patterns []string
}

// DefaultGroups are evaluated top to bottom; the first group with a match wins.
// Purchase cues come first so "買います？" counts as purchase intent.
var DefaultGroups = []Group{
	{
		Category: models.CategoryPurchaseIntent,
		Patterns: []string{`買`, `購入`, `注文`, `ポチ`, `カート`, `決済`, `買い物`, `ほしい`, `(?i)\bbuy\b`, `(?i)add(ed)? to cart`},
	},
	{
		Category: models.CategoryQuestion,
		Patterns: []string{`？`, `\?`, `ですか`, `ますか`, `どう`, `なに`, `いつ`, `どこ`, `誰`, `何`},
	},
	{
		Category: models.CategorySurprise,
		Patterns: []string{`すごい`, `えー`, `！`, `!`, `わー`, `おー`, `マジ`, `うそ`, `本当`, `(?i)\bwow\b`},
	},
	{
		Category: models.CategoryAnticipation,
		Patterns: []string{`楽しみ`, `欲しい`, `気になる`, `いいね`, `素敵`, `かわいい`, `かっこいい`, `ワクワク`},
	},
	{
		Category: models.CategoryGreeting,
		Patterns: []string{`こんにちは`, `こんばんは`, `おはよう`, `初めて`, `はじめまして`, `よろしく`, `来ました`, `(?i)\bhello\b`},
	},
}

// Compile flattens groups into an ordered rule table.
func Compile(groups []Group) ([]Rule, error) {
	var rules []Rule
	for _, g := range groups {
		for _, p := range g.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, err
			}
			rules = append(rules, Rule{Category: g.Category, Pattern: re})
		}
	}
	return rules, nil
}

// MustCompile is like Compile but panics on an invalid pattern.
func MustCompile(groups []Group) []Rule {
	rules, err := Compile(groups)
	if err != nil {
		panic(err)
	}
	return rules
}

var defaultRules = MustCompile(DefaultGroups)

// Match returns the category of the first rule matching text, or other.
func Match(text string, rules []Rule) models.Category {
	for _, r := range rules {
		if r.Pattern.MatchString(text) {
			return r.Category
		}
	}
	return models.CategoryOther
}
