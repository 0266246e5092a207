package timeline

import (
	"context"
	"fmt"

	"github.com/livecommerce/stream-analyzer/internal/models"
)

// Scene types of a typical live-commerce broadcast.
const (
	SceneOpening      = "オープニング"
	SceneIntroduction = "導入"
	SceneProductIntro = "商品紹介（前半）"
	SceneProductDemo  = "商品紹介（中盤）・実演"
	SceneQAndPurchase = "質疑応答・購入促進"
	SceneClosing      = "クロージング"
)

// SceneType returns the scene a broadcast is usually in at minute.
func SceneType(minute int) string {
	switch {
	case minute <= 0:
		return SceneOpening
	case minute <= 2:
		return SceneIntroduction
	case minute <= 5:
		return SceneProductIntro
	case minute <= 10:
		return SceneProductDemo
	case minute <= 15:
		return SceneQAndPurchase
	default:
		return SceneClosing
	}
}

// SyntheticSource emits one event per minute, labelled with the typical scene.
// It is the fallback when no real timeline exists.
type SyntheticSource struct {
	Duration int
}

func (s SyntheticSource) GetName() string {
	return "synthetic"
}

func (s SyntheticSource) Events(ctx context.Context, sessionID string) ([]models.TimelineEvent, error) {
	if s.Duration <= 0 {
		return nil, ErrNoEvents
	}
	events := make([]models.TimelineEvent, 0, s.Duration)
	for minute := 0; minute < s.Duration; minute++ {
		scene := SceneType(minute)
		events = append(events, models.TimelineEvent{
			Minute:      minute,
			Description: fmt.Sprintf("%d分目のシーン（%s）", minute, scene),
			SceneType:   scene,
		})
	}
	return events, nil
}
