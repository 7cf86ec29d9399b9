package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/youyuan/match-engine/internal/db"
	apperrors "github.com/youyuan/match-engine/internal/errors"
)

// MatchActionRepository provides data access for MatchAction rows and owns
// the transactional decide-and-reconcile sequence.
type MatchActionRepository struct {
	db *gorm.DB
}

// NewMatchActionRepository creates a repository bound to the given DB connection.
func NewMatchActionRepository(database *gorm.DB) *MatchActionRepository {
	return &MatchActionRepository{db: database}
}

// ExistingTargetIDs returns every target the actor already has a row for,
// regardless of status. Browse excludes these unconditionally.
func (r *MatchActionRepository) ExistingTargetIDs(ctx context.Context, actorID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).
		Model(&db.MatchAction{}).
		Where("actor_id = ?", actorID).
		Pluck("target_id", &ids).Error
	return ids, err
}

// FindAction returns the row for (actor, target), optionally restricted to
// a status. A nil result means no row exists.
func (r *MatchActionRepository) FindAction(
	ctx context.Context,
	actorID, targetID uint64,
	status string,
) (*db.MatchAction, error) {
	query := r.db.WithContext(ctx).
		Where("actor_id = ? AND target_id = ?", actorID, targetID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var action db.MatchAction
	err := query.First(&action).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &action, nil
}

// AcceptedPairCount returns how many mutual matches the user is part of,
// counting each pair once via the user's own directional row.
func (r *MatchActionRepository) AcceptedPairCount(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&db.MatchAction{}).
		Where("actor_id = ? AND status = ?", userID, db.StatusAccepted).
		Count(&count).Error
	return count, err
}

// ListAcceptedActions returns the user's accepted directional rows, newest
// promotion first, for the mutual-match listing.
func (r *MatchActionRepository) ListAcceptedActions(
	ctx context.Context,
	userID uint64,
	limit, offset int,
) ([]db.MatchAction, error) {
	var actions []db.MatchAction
	err := r.db.WithContext(ctx).
		Where("actor_id = ? AND status = ?", userID, db.StatusAccepted).
		Order("updated_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&actions).Error
	return actions, err
}

// DecideAndReconcile inserts the action row and, when it is pending,
// promotes it together with a reciprocal pending row to accepted — all in
// one transaction. Returns whether a mutual match formed.
//
// Serialization conflicts are retried up to attempts times with backoff;
// a duplicate pair always surfaces as ErrDuplicateAction.
func (r *MatchActionRepository) DecideAndReconcile(
	ctx context.Context,
	action *db.MatchAction,
	attempts int,
) (bool, error) {
	if attempts < 1 {
		attempts = 1
	}
	initialStatus := action.Status

	var (
		mutual bool
		err    error
	)
	for i := 0; i < attempts; i++ {
		// every attempt replays from a clean row: an aborted transaction
		// must not leak its assigned ID or status into the next one
		action.ID = 0
		action.Status = initialStatus

		mutual, err = r.decideOnce(ctx, action)
		if err == nil {
			if mutual {
				action.Status = db.StatusAccepted
			}
			return mutual, nil
		}
		if !isRetryableConflict(err) {
			return false, err
		}

		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(time.Duration(i+1) * 25 * time.Millisecond):
		}
	}
	return false, fmt.Errorf("%v: %w", err, apperrors.ErrStoreConflict)
}

func (r *MatchActionRepository) decideOnce(ctx context.Context, action *db.MatchAction) (bool, error) {
	mutual := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// One row per ordered pair. Checked up front for a clean error;
		// the unique index still backs this under concurrent inserts.
		var count int64
		if err := tx.Model(&db.MatchAction{}).
			Where("actor_id = ? AND target_id = ?", action.ActorID, action.TargetID).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return apperrors.ErrDuplicateAction
		}

		if err := tx.Create(action).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.ErrDuplicateAction
			}
			return err
		}

		if action.Status != db.StatusPending {
			return nil
		}

		// Reciprocal pending row. Locked on MySQL so two concurrent
		// reciprocal likes serialize on the promotion; the loser of the
		// race retries and observes the winner's committed row.
		query := tx.Where(
			"actor_id = ? AND target_id = ? AND status = ?",
			action.TargetID, action.ActorID, db.StatusPending,
		)
		if tx.Dialector.Name() == "mysql" {
			query = query.Clauses(clause.Locking{Strength: "UPDATE"})
		}

		var reciprocal db.MatchAction
		err := query.First(&reciprocal).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		res := tx.Model(&db.MatchAction{}).
			Where("id IN ? AND status = ?", []uint64{action.ID, reciprocal.ID}, db.StatusPending).
			Update("status", db.StatusAccepted)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected != 2 {
			// a one-sided promotion must never commit
			return fmt.Errorf("promoted %d of 2 rows: %w", res.RowsAffected, apperrors.ErrStoreConflict)
		}

		// the caller reflects the promotion onto the row only after the
		// transaction has committed
		mutual = true
		return nil
	})
	return mutual, err
}

// isRetryableConflict matches the transient isolation failures worth
// replaying the transaction for.
func isRetryableConflict(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, apperrors.ErrDuplicateAction) {
		return false
	}
	if errors.Is(err, apperrors.ErrStoreConflict) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, fragment := range []string{
		"deadlock",
		"lock wait timeout",
		"try restarting transaction",
		"database is locked",
	} {
		if strings.Contains(msg, fragment) {
			return true
		}
	}
	return false
}
