package report

import (
	"github.com/livecommerce/stream-analyzer/internal/comments"
	"github.com/livecommerce/stream-analyzer/internal/correlation"
	"github.com/livecommerce/stream-analyzer/internal/models"
)

const (
	clickPeakThreshold     = 3
	purchaseShareThreshold = 0.1
	retentionThreshold     = 0.5
	questionShareThreshold = 0.2
)

var standardNextActions = []string{
	"冒頭30秒で「今日の配信で得られる3つのメリット」を明示する",
	"商品を常に画面中央に配置し、前後の動きでオートフォーカスを活用する",
	"「残り○個」「あと○分」などの限定性を強調して「今」買う理由を提示する",
}

// Recommend derives presentation hints from a finished analysis. clickPeaks is
// the number of click peaks before truncation.
func Recommend(s *models.Series, clickPeaks int, classification models.ClassificationResult) *models.Recommendations {
	rec := &models.Recommendations{
		GoodPoints:   []string{},
		Improvements: []string{},
		NextActions:  append([]string(nil), standardNextActions...),
	}

	if clickPeaks > clickPeakThreshold {
		rec.GoodPoints = append(rec.GoodPoints,
			"【商品クリック誘導が効果的】複数のタイミングでクリック数が増加しており、視覚的な商品訴求が成功しています。")
	}
	if comments.Share(classification, models.CategoryPurchaseIntent) > purchaseShareThreshold {
		rec.GoodPoints = append(rec.GoodPoints,
			"【購入意欲の高いコメントが多い】視聴者の購買意欲を引き出すことに成功しています。")
	}

	if s.Has(models.FieldViewers) && correlation.RetentionRatio(s.Values(models.FieldViewers)) < retentionThreshold {
		rec.Improvements = append(rec.Improvements,
			"【視聴維持率の改善】配信後半で視聴者が大幅に減少しています。中盤に複数の山場を設けて離脱を防ぎましょう。")
	}
	if comments.Share(classification, models.CategoryQuestion) > questionShareThreshold {
		rec.Improvements = append(rec.Improvements,
			"【質問への即応性向上】質問コメントが多いため、リアルタイムでの回答を強化することでエンゲージメントが向上します。")
	}

	return rec
}
