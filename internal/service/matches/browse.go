package matches

import (
	"context"
	"errors"
	"sort"

	"gorm.io/gorm"

	"github.com/youyuan/match-engine/internal/activity"
	apperrors "github.com/youyuan/match-engine/internal/errors"
	"github.com/youyuan/match-engine/internal/match"
)

// Candidate is one ranked browse result.
type Candidate struct {
	UserID            uint64
	Username          string
	Age               *int
	Location          string
	Occupation        string
	Interests         []string
	MatchScore        int
	DistanceKm        *float64
	DistanceFormatted string
	IsMutualMatch     bool
}

// Page is a ranked slice of candidates.
type Page struct {
	Candidates []Candidate
	HasMore    bool
}

// Browse returns a ranked page of candidates for the requester.
//
// Candidates the requester already decided on are excluded regardless of
// status. A recognizable requester gender forces the opposite gender and
// ignores the stored preference. Candidates whose own preference excludes
// the requester stay in the page but have their displayed score scaled by
// the mismatch penalty.
func (s *Service) Browse(ctx context.Context, requesterID uint64, limit, offset int) (Page, error) {
	if requesterID == 0 {
		return Page{}, apperrors.Validationf("missing requester")
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

	requester, err := s.profiles.GetUser(ctx, requesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Page{}, apperrors.NotFoundf("requester %d", requesterID)
		}
		return Page{}, apperrors.Map(err)
	}

	requesterProfile, err := s.profiles.GetProfile(ctx, requesterID)
	if err != nil {
		return Page{}, apperrors.Map(err)
	}

	decided, err := s.actions.ExistingTargetIDs(ctx, requesterID)
	if err != nil {
		return Page{}, apperrors.Map(err)
	}
	exclude := append(decided, requesterID)

	filter := match.EffectiveGenderFilter(requester.Gender, requesterProfile.PreferredGenderList())

	// one extra row past the page decides HasMore
	rows, err := s.profiles.FetchActiveCandidates(ctx, exclude, filter.CandidateTokens(), offset+limit+1)
	if err != nil {
		return Page{}, apperrors.Map(err)
	}

	requesterView := profileView(requesterProfile)
	requesterCoords := coordinates(requesterProfile)
	requesterGender := match.NormalizeGender(requester.Gender)
	now := s.now()

	ranked := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		score := match.Score(requesterView, profileView(row.Profile), now)
		if !match.PreferenceAccepts(row.Profile.PreferredGenderList(), requesterGender) {
			// soft penalty: de-prioritized, not filtered out
			score = int(float64(score) * cfg.Match.MismatchPenalty)
		}

		candidate := Candidate{
			UserID:     row.User.ID,
			Username:   row.User.Username,
			Location:   row.Profile.Location,
			Occupation: row.Profile.Occupation,
			Interests:  row.Profile.InterestList(),
			MatchScore: score,
		}
		if row.Profile.BirthDate != nil {
			age := match.AgeAt(*row.Profile.BirthDate, now)
			candidate.Age = &age
		}
		if d := match.DistanceBetween(requesterCoords, coordinates(row.Profile)); d != nil {
			candidate.DistanceKm = d
			candidate.DistanceFormatted = match.FormatDistance(*d)
		}
		ranked = append(ranked, candidate)
	}

	sortCandidates(ranked, requesterCoords != nil)

	page := Page{}
	if offset < len(ranked) {
		end := offset + limit
		if end > len(ranked) {
			end = len(ranked)
		}
		page.Candidates = ranked[offset:end]
		page.HasMore = len(ranked) > end
	}

	s.appCtx.Activity.Record(requesterID, activity.TypeViewRecommendations, map[string]any{
		"count": len(page.Candidates),
	})

	s.appCtx.Logger.Debug("browse served",
		"requester", requesterID,
		"candidates", len(page.Candidates),
		"has_more", page.HasMore,
	)

	return page, nil
}

// sortCandidates orders by ascending distance (missing last) then
// descending score when the requester has coordinates, by descending
// score alone otherwise.
func sortCandidates(candidates []Candidate, byDistance bool) {
	sort.SliceStable(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if byDistance {
			switch {
			case a.DistanceKm != nil && b.DistanceKm == nil:
				return true
			case a.DistanceKm == nil && b.DistanceKm != nil:
				return false
			case a.DistanceKm != nil && b.DistanceKm != nil && *a.DistanceKm != *b.DistanceKm:
				return *a.DistanceKm < *b.DistanceKm
			}
		}
		return a.MatchScore > b.MatchScore
	})
}
