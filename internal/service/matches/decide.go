package matches

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/youyuan/match-engine/internal/activity"
	"github.com/youyuan/match-engine/internal/db"
	apperrors "github.com/youyuan/match-engine/internal/errors"
)

// Supported decide actions.
const (
	ActionLike      = "like"
	ActionSuperLike = "super_like"
	ActionPass      = "pass"
)

// Intent-strength scores stored on the action row. Unrelated to the
// compatibility score used for browsing.
const (
	intentScoreSuperLike = 0.9
	intentScoreDefault   = 0.5
)

// DecideResult is the outcome of one decide call.
type DecideResult struct {
	Action      db.MatchAction
	MutualMatch bool
}

// Decide records a directional action and reconciles reciprocal pending
// likes into a mutual match.
//
// The row insert and the reciprocal promotion run in one transaction; a
// second decide on the same pair fails with ErrDuplicateAction whatever
// the action value.
func (s *Service) Decide(ctx context.Context, actorID, targetID uint64, action string) (DecideResult, error) {
	if actorID == 0 {
		return DecideResult{}, apperrors.Validationf("missing actor")
	}
	if targetID == 0 {
		return DecideResult{}, apperrors.Validationf("missing target")
	}
	if actorID == targetID {
		return DecideResult{}, apperrors.Validationf("cannot decide on yourself")
	}

	normalized, err := normalizeAction(action)
	if err != nil {
		return DecideResult{}, err
	}

	if _, err := s.profiles.GetUser(ctx, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DecideResult{}, apperrors.NotFoundf("target %d", targetID)
		}
		return DecideResult{}, apperrors.Map(err)
	}

	row := db.MatchAction{
		ActorID:  actorID,
		TargetID: targetID,
		Status:   initialStatus(normalized),
		Score:    intentScore(normalized),
	}

	mutual, err := s.actions.DecideAndReconcile(ctx, &row, s.appCtx.Config.Match.PromoteRetries)
	if err != nil {
		return DecideResult{}, apperrors.Map(err)
	}

	if mutual {
		// best-effort counter bump for both sides of the new match
		_ = s.appCtx.RedisCache.IncrMatchCount(ctx, actorID)
		_ = s.appCtx.RedisCache.IncrMatchCount(ctx, targetID)
	}

	s.appCtx.Activity.Record(actorID, activity.TypeMatchAction, map[string]any{
		"target_id": targetID,
		"action":    normalized,
		"mutual":    mutual,
	})

	s.appCtx.Logger.Info("decision recorded",
		"actor", actorID,
		"target", targetID,
		"action", normalized,
		"mutual", mutual,
	)

	return DecideResult{Action: row, MutualMatch: mutual}, nil
}

func normalizeAction(input string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(input))
	value = strings.ReplaceAll(value, "-", "_")
	switch value {
	case ActionLike, ActionPass, ActionSuperLike:
		return value, nil
	case "superlike":
		return ActionSuperLike, nil
	default:
		return "", apperrors.Validationf("unsupported action %q", input)
	}
}

// initialStatus assigns the state-machine entry point: a pass is
// immediately terminal, likes wait for reciprocation.
func initialStatus(action string) string {
	if action == ActionPass {
		return db.StatusRejected
	}
	return db.StatusPending
}

func intentScore(action string) float64 {
	if action == ActionSuperLike {
		return intentScoreSuperLike
	}
	return intentScoreDefault
}
