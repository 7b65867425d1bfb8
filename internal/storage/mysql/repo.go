package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	drv "github.com/go-sql-driver/mysql"

	"mall_admin/internal/domain"
)

const errDuplicateEntry = 1062

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) ListCategories(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, listCategoriesSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	var c domain.Category
	err := r.db.QueryRowContext(ctx, getCategorySQL, id).Scan(&c.ID, &c.Name)
	return c, notFound(err)
}

func (r *Repo) InsertShop(ctx context.Context, s domain.Shop) (domain.Shop, error) {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, nextShopIDSQL).Scan(&s.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertShopSQL, s.ID, s.Name, s.CategoryID, s.DateAdded)
		return err
	})
	if isDuplicate(err) {
		return domain.Shop{}, fmt.Errorf("shop %q already exists: %w", s.Name, domain.ErrConflict)
	}
	if err != nil {
		return domain.Shop{}, err
	}
	return s, nil
}

// DeleteShop removes room assignments and commercials first to satisfy the FKs.
func (r *Repo) DeleteShop(ctx context.Context, id int64) error {
	return r.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, deleteShopRoomsByShopSQL, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteCommercialsByShopSQL, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, deleteShopSQL, id)
		if err != nil {
			return err
		}
		return affectedOne(res)
	})
}

func (r *Repo) GetShop(ctx context.Context, id int64) (domain.Shop, error) {
	var s domain.Shop
	err := r.db.QueryRowContext(ctx, getShopSQL, id).Scan(&s.ID, &s.Name, &s.CategoryID, &s.DateAdded)
	return s, notFound(err)
}

func (r *Repo) ListShops(ctx context.Context) ([]domain.Shop, error) {
	rows, err := r.db.QueryContext(ctx, listShopsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Shop
	for rows.Next() {
		var s domain.Shop
		if err := rows.Scan(&s.ID, &s.Name, &s.CategoryID, &s.DateAdded); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repo) InsertCommercial(ctx context.Context, c domain.Commercial) (domain.Commercial, error) {
	err := r.inTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx, nextCommercialIDSQL).Scan(&c.ID); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, insertCommercialSQL, c.ID, c.ShopID, c.Title, c.Body, c.DateAdded)
		return err
	})
	if err != nil {
		return domain.Commercial{}, err
	}
	return c, nil
}

func (r *Repo) DeleteCommercial(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, deleteCommercialSQL, id)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *Repo) GetCommercial(ctx context.Context, id int64) (domain.Commercial, error) {
	var c domain.Commercial
	err := r.db.QueryRowContext(ctx, getCommercialSQL, id).Scan(&c.ID, &c.ShopID, &c.Title, &c.Body, &c.DateAdded)
	return c, notFound(err)
}

func (r *Repo) ListCommercials(ctx context.Context, shopID int64) ([]domain.Commercial, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if shopID > 0 {
		rows, err = r.db.QueryContext(ctx, listCommercialsByShopSQL, shopID)
	} else {
		rows, err = r.db.QueryContext(ctx, listCommercialsSQL)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Commercial
	for rows.Next() {
		var c domain.Commercial
		if err := rows.Scan(&c.ID, &c.ShopID, &c.Title, &c.Body, &c.DateAdded); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) UpsertShopRoom(ctx context.Context, sr domain.ShopRoom) error {
	_, err := r.db.ExecContext(ctx, upsertShopRoomSQL, sr.RoomID, sr.ShopID)
	return err
}

func (r *Repo) DeleteShopRoom(ctx context.Context, roomID int64) error {
	res, err := r.db.ExecContext(ctx, deleteShopRoomSQL, roomID)
	if err != nil {
		return err
	}
	return affectedOne(res)
}

func (r *Repo) ListShopRooms(ctx context.Context) ([]domain.ShopRoom, error) {
	rows, err := r.db.QueryContext(ctx, listShopRoomsSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ShopRoom
	for rows.Next() {
		var sr domain.ShopRoom
		if err := rows.Scan(&sr.RoomID, &sr.ShopID); err != nil {
			return nil, err
		}
		out = append(out, sr)
	}
	return out, rows.Err()
}

func (r *Repo) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

func affectedOne(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func isDuplicate(err error) bool {
	var me *drv.MySQLError
	return errors.As(err, &me) && me.Number == errDuplicateEntry
}
