// Package comments loads viewer comments and sorts them into intent categories
// with ordered literal pattern rules.
package comments

import (
	"github.com/livecommerce/stream-analyzer/internal/models"
)

// DefaultExampleLimit is how many example comments a category keeps.
const DefaultExampleLimit = 10

// Classifier assigns each comment to exactly one category.
type Classifier struct {
	rules        []Rule
	exampleLimit int
}

// NewClassifier creates a Classifier. A nil rule table uses DefaultGroups.
func NewClassifier(rules []Rule, exampleLimit int) *Classifier {
	if rules == nil {
		rules = defaultRules
	}
	if exampleLimit <= 0 {
		exampleLimit = DefaultExampleLimit
	}
	return &Classifier{rules: rules, exampleLimit: exampleLimit}
}

// Classify partitions comments with the default rules.
func Classify(comments []models.Comment) models.ClassificationResult {
	return NewClassifier(nil, DefaultExampleLimit).Classify(comments)
}

// Classify folds comments into a ClassificationResult.
func (c *Classifier) Classify(comments []models.Comment) models.ClassificationResult {
	acc := emptyResult()
	for _, comment := range comments {
		acc = c.fold(acc, comment)
	}
	return c.finish(acc)
}

func emptyResult() models.ClassificationResult {
	result := models.ClassificationResult{
		Categories: make(map[models.Category]int, len(models.Categories)),
		Examples:   make(map[models.Category][]models.Comment, len(models.Categories)),
		Details:    make(map[models.Category][]models.Comment, len(models.Categories)),
	}
	for _, category := range models.Categories {
		result.Categories[category] = 0
		result.Details[category] = []models.Comment{}
	}
	return result
}

func (c *Classifier) fold(acc models.ClassificationResult, comment models.Comment) models.ClassificationResult {
	category := Match(comment.Text, c.rules)
	acc.Details[category] = append(acc.Details[category], comment)
	acc.Categories[category]++
	acc.Total++
	return acc
}

func (c *Classifier) finish(acc models.ClassificationResult) models.ClassificationResult {
	for category, bucket := range acc.Details {
		n := len(bucket)
		if n > c.exampleLimit {
			n = c.exampleLimit
		}
		examples := make([]models.Comment, n)
		copy(examples, bucket[:n])
		acc.Examples[category] = examples
	}
	return acc
}

// Share returns the fraction of comments filed under category.
func Share(result models.ClassificationResult, category models.Category) float64 {
	if result.Total == 0 {
		return 0
	}
	return float64(result.Categories[category]) / float64(result.Total)
}
