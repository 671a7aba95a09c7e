package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/tour-booking/internal/model"
)

// ReviewRepo stores tour reviews, one per user and tour.
type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		"INSERT INTO reviews (tour_id, user_id, rating, comment) VALUES (?,?,?,?)",
		rv.TourID, rv.UserID, rv.Rating, rv.Comment)
	if err != nil {
		if isDuplicate(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rv = *created
	return nil
}

func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
	var rv model.Review
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT id, tour_id, user_id, rating, comment, created_at FROM reviews WHERE id=? LIMIT 1", id).
		Scan(&rv.ID, &rv.TourID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt)
	if err != nil {
		return nil, rowErr(err)
	}
	return &rv, nil
}

func (r *ReviewRepo) ListByTour(ctx context.Context, tourID uint64) ([]model.Review, error) {
	rows, err := conn(ctx, r.DB).QueryContext(ctx,
		"SELECT id, tour_id, user_id, rating, comment, created_at FROM reviews WHERE tour_id=? ORDER BY created_at DESC, id DESC",
		tourID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.TourID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *ReviewRepo) Exists(ctx context.Context, userID, tourID uint64) (bool, error) {
	var n int
	err := conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT COUNT(*) FROM reviews WHERE user_id=? AND tour_id=?", userID, tourID).Scan(&n)
	return n > 0, err
}

func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	return affected(conn(ctx, r.DB).ExecContext(ctx, "DELETE FROM reviews WHERE id=?", id))
}
