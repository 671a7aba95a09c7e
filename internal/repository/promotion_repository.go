package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/tour-booking/internal/model"
)

// PromotionRepo stores discount codes.  Codes are unique and upper-cased.
type PromotionRepo struct{ DB *sql.DB }

func NewPromotionRepo(db *sql.DB) *PromotionRepo { return &PromotionRepo{DB: db} }

const promotionColumns = "id, code, description, discount_percent, start_date, end_date, is_active"

func scanPromotion(row interface{ Scan(...any) error }) (model.Promotion, error) {
	var p model.Promotion
	err := row.Scan(&p.ID, &p.Code, &p.Description, &p.DiscountPercent, &p.StartDate, &p.EndDate, &p.IsActive)
	return p, err
}

func (r *PromotionRepo) Create(ctx context.Context, p *model.Promotion) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	res, err := conn(ctx, r.DB).ExecContext(ctx,
		`INSERT INTO promotions (code, description, discount_percent, start_date, end_date, is_active)
		 VALUES (?,?,?,?,?,?)`,
		p.Code, p.Description, p.DiscountPercent, p.StartDate, p.EndDate, p.IsActive)
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
	p.ID = uint64(id)
	return nil
}

func (r *PromotionRepo) GetByID(ctx context.Context, id uint64) (*model.Promotion, error) {
	p, err := scanPromotion(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+promotionColumns+" FROM promotions WHERE id=? LIMIT 1", id))
	if err != nil {
		return nil, rowErr(err)
	}
	return &p, nil
}

func (r *PromotionRepo) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	p, err := scanPromotion(conn(ctx, r.DB).QueryRowContext(ctx,
		"SELECT "+promotionColumns+" FROM promotions WHERE code=? LIMIT 1",
		strings.ToUpper(strings.TrimSpace(code))))
	if err != nil {
		return nil, rowErr(err)
	}
	return &p, nil
}

// List returns every promotion, or only those usable at *activeAt when it
// is non-nil.
func (r *PromotionRepo) List(ctx context.Context, activeAt *time.Time) ([]model.Promotion, error) {
	query := "SELECT " + promotionColumns + " FROM promotions"
	var args []any
	if activeAt != nil {
		query += " WHERE is_active = 1 AND start_date <= ? AND end_date >= ?"
		args = append(args, *activeAt, *activeAt)
	}
	query += " ORDER BY start_date DESC, id DESC"
	rows, err := conn(ctx, r.DB).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Promotion{}
	for rows.Next() {
		p, err := scanPromotion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PromotionRepo) Update(ctx context.Context, p *model.Promotion) error {
	p.Code = strings.ToUpper(strings.TrimSpace(p.Code))
	_, err := conn(ctx, r.DB).ExecContext(ctx,
		`UPDATE promotions SET code=?, description=?, discount_percent=?, start_date=?, end_date=?, is_active=?
		 WHERE id=?`,
		p.Code, p.Description, p.DiscountPercent, p.StartDate, p.EndDate, p.IsActive, p.ID)
	if isDuplicate(err) {
		return ErrConflict
	}
	return err
}

func (r *PromotionRepo) Delete(ctx context.Context, id uint64) error {
	return affected(conn(ctx, r.DB).ExecContext(ctx, "DELETE FROM promotions WHERE id=?", id))
}
