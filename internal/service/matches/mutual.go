package matches

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	apperrors "github.com/youyuan/match-engine/internal/errors"
)

// MutualMatch is one formed match as seen by the requesting user.
type MutualMatch struct {
	UserID    uint64
	Username  string
	Score     float64
	MatchedAt time.Time
}

// MutualPage lists a user's mutual matches with the total count.
type MutualPage struct {
	Matches []MutualMatch
	Total   int64
	HasMore bool
}

// MutualMatches lists the requester's formed matches, newest first.
//
// The total is served cache-first from Redis; on a miss the store count
// is written back with a TTL.
func (s *Service) MutualMatches(ctx context.Context, userID uint64, limit, offset int) (MutualPage, error) {
	if userID == 0 {
		return MutualPage{}, apperrors.Validationf("missing requester")
	}

	cfg := s.appCtx.Config
	if limit <= 0 {
		limit = cfg.Match.DefaultPageLimit
	}
	if limit > cfg.Match.MaxPageLimit {
		limit = cfg.Match.MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	if _, err := s.profiles.GetUser(ctx, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return MutualPage{}, apperrors.NotFoundf("requester %d", userID)
		}
		return MutualPage{}, apperrors.Map(err)
	}

	actions, err := s.actions.ListAcceptedActions(ctx, userID, limit+1, offset)
	if err != nil {
		return MutualPage{}, apperrors.Map(err)
	}

	page := MutualPage{}
	if len(actions) > limit {
		page.HasMore = true
		actions = actions[:limit]
	}

	targetIDs := make([]uint64, 0, len(actions))
	for _, a := range actions {
		targetIDs = append(targetIDs, a.TargetID)
	}
	names, err := s.profiles.UsernamesByID(ctx, targetIDs)
	if err != nil {
		return MutualPage{}, apperrors.Map(err)
	}

	for _, a := range actions {
		page.Matches = append(page.Matches, MutualMatch{
			UserID:    a.TargetID,
			Username:  names[a.TargetID],
			Score:     a.Score,
			MatchedAt: a.UpdatedAt,
		})
	}

	total, hit, err := s.appCtx.RedisCache.GetMatchCount(ctx, userID)
	if err != nil || !hit {
		total, err = s.actions.AcceptedPairCount(ctx, userID)
		if err != nil {
			return MutualPage{}, apperrors.Map(err)
		}
		_ = s.appCtx.RedisCache.SetMatchCount(ctx, userID, total)
	}
	page.Total = total

	return page, nil
}
