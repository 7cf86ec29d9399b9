// Package matches implements the matching engine's two operations:
// browsing ranked candidates and recording like/pass/super-like decisions,
// including the mutual-match reconciliation between them.
package matches

import (
	"time"

	"github.com/youyuan/match-engine/internal/app"
	"github.com/youyuan/match-engine/internal/db"
	"github.com/youyuan/match-engine/internal/match"
	"github.com/youyuan/match-engine/internal/repository"
)

// Service contains the business logic on top of the repository, cache and
// activity layers.
type Service struct {
	appCtx   *app.AppContext
	profiles *repository.ProfileRepository
	actions  *repository.MatchActionRepository

	now func() time.Time
}

// NewService creates the matches service with dependencies from AppContext.
func NewService(appCtx *app.AppContext) *Service {
	return &Service{
		appCtx:   appCtx,
		profiles: repository.NewProfileRepository(appCtx.DB),
		actions:  repository.NewMatchActionRepository(appCtx.DB),
		now:      time.Now,
	}
}

// profileView adapts a stored profile to the scorer's read model.
func profileView(p db.Profile) match.ProfileView {
	return match.ProfileView{
		BirthDate:  p.BirthDate,
		Location:   p.Location,
		Occupation: p.Occupation,
		Interests:  p.InterestList(),
	}
}

// coordinates returns the profile's optional coordinates.
func coordinates(p db.Profile) *match.Coordinates {
	if p.Latitude == nil || p.Longitude == nil {
		return nil
	}
	return &match.Coordinates{Lat: *p.Latitude, Lon: *p.Longitude}
}
