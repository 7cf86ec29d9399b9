package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/youyuan/match-engine/internal/db"
)

// ProfileRepository provides the read-only profile queries the matching
// engine needs. Profiles are owned and mutated elsewhere; nothing here
// writes.
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a repository bound to the given DB connection.
func NewProfileRepository(database *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: database}
}

// CandidateRow pairs a user with their profile for ranking.
type CandidateRow struct {
	User    db.User
	Profile db.Profile
}

// GetUser loads a user by ID.
func (r *ProfileRepository) GetUser(ctx context.Context, id uint64) (db.User, error) {
	var user db.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	return user, err
}

// GetProfile loads the profile for a user. A user without a profile row
// yields an empty profile, not an error; every profile field is optional
// to the engine.
func (r *ProfileRepository) GetProfile(ctx context.Context, userID uint64) (db.Profile, error) {
	var profile db.Profile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Limit(1).
		Find(&profile).Error
	return profile, err
}

// FetchInterests returns the recorded interests for a user.
func (r *ProfileRepository) FetchInterests(ctx context.Context, userID uint64) ([]string, error) {
	profile, err := r.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.InterestList(), nil
}

// FetchPreferredGenders returns the stated gender preference for a user.
func (r *ProfileRepository) FetchPreferredGenders(ctx context.Context, userID uint64) ([]string, error) {
	profile, err := r.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return profile.PreferredGenderList(), nil
}

// UsernamesByID resolves usernames for a set of user IDs in one query.
// IDs without a matching user are simply absent from the result.
func (r *ProfileRepository) UsernamesByID(ctx context.Context, ids []uint64) (map[uint64]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []db.User
	if err := r.db.WithContext(ctx).
		Select("id", "username").
		Where("id IN ?", ids).
		Find(&users).Error; err != nil {
		return nil, err
	}

	names := make(map[uint64]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Username
	}
	return names, nil
}

// FetchActiveCandidates returns active users matching the gender token
// filter, excluding the given IDs, bounded by limit. A nil genderIn means
// no gender constraint.
//
// Profiles are loaded in a second query and joined in memory; users
// without a profile row still appear, with an empty profile.
func (r *ProfileRepository) FetchActiveCandidates(
	ctx context.Context,
	excludeIDs []uint64,
	genderIn []string,
	limit int,
) ([]CandidateRow, error) {
	query := r.db.WithContext(ctx).
		Model(&db.User{}).
		Where("active = ?", true)

	if len(excludeIDs) > 0 {
		query = query.Where("id NOT IN ?", excludeIDs)
	}
	if len(genderIn) > 0 {
		query = query.Where("LOWER(gender) IN ?", genderIn)
	}

	var users []db.User
	if err := query.
		Order("last_login_at DESC, id ASC").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}

	ids := make([]uint64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}

	var profiles []db.Profile
	if err := r.db.WithContext(ctx).
		Where("user_id IN ?", ids).
		Find(&profiles).Error; err != nil {
		return nil, err
	}
	byUser := make(map[uint64]db.Profile, len(profiles))
	for _, p := range profiles {
		byUser[p.UserID] = p
	}

	rows := make([]CandidateRow, 0, len(users))
	for _, u := range users {
		rows = append(rows, CandidateRow{User: u, Profile: byUser[u.ID]})
	}
	return rows, nil
}
