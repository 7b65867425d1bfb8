package mysql_test

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	drv "github.com/go-sql-driver/mysql"

	"mall_admin/internal/domain"
	mysqlrepo "mall_admin/internal/storage/mysql"
)

func newMock(t *testing.T) (*mysqlrepo.Repo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		_ = db.Close()
	})
	return mysqlrepo.New(db), mock
}

func q(s string) string { return regexp.QuoteMeta(s) }

func TestInsertShop_UsesNextID(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT COALESCE(MAX(id), 0) + 1 FROM shops")).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(4))
	mock.ExpectExec(q("INSERT INTO shops")).
		WithArgs(int64(4), "Game", int64(2), "07/03/2024").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectCommit()

	s, err := repo.InsertShop(context.Background(), domain.Shop{Name: "Game", CategoryID: 2, DateAdded: "07/03/2024"})
	if err != nil {
		t.Fatalf("InsertShop: %v", err)
	}
	if s.ID != 4 {
		t.Fatalf("expected id 4, got %d", s.ID)
	}
}

func TestInsertShop_DuplicateNameIsConflict(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT COALESCE(MAX(id), 0) + 1 FROM shops")).
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(2))
	mock.ExpectExec(q("INSERT INTO shops")).
		WillReturnError(&drv.MySQLError{Number: 1062, Message: "Duplicate entry 'Game'"})
	mock.ExpectRollback()

	_, err := repo.InsertShop(context.Background(), domain.Shop{Name: "Game", CategoryID: 1})
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestDeleteShop_Cascades(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM shop_rooms WHERE shop_id = ?")).WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(q("DELETE FROM commercials WHERE shop_id = ?")).WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM shops WHERE id = ?")).WithArgs(int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.DeleteShop(context.Background(), 3); err != nil {
		t.Fatalf("DeleteShop: %v", err)
	}
}

func TestDeleteShop_MissingRollsBack(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM shop_rooms")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM commercials")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(q("DELETE FROM shops")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	if err := repo.DeleteShop(context.Background(), 9); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetShop_NotFound(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(q("FROM shops WHERE id = ?")).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "category_id", "date_added"}))

	if _, err := repo.GetShop(context.Background(), 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListCommercials_ByShop(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectQuery(q("WHERE shop_id = ?")).WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "shop_id", "title", "body", "date_added"}).
			AddRow(1, 1, "Sale", "50% off", "01/02/2024").
			AddRow(3, 1, "More", "", "02/02/2024"))

	cs, err := repo.ListCommercials(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListCommercials: %v", err)
	}
	if len(cs) != 2 || cs[1].ID != 3 || cs[0].Body != "50% off" {
		t.Fatalf("unexpected commercials %+v", cs)
	}
}

func TestUpsertAndDeleteShopRoom(t *testing.T) {
	repo, mock := newMock(t)
	mock.ExpectExec(q("INSERT INTO shop_rooms")).WithArgs(int64(5), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM shop_rooms WHERE room_id = ?")).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q("DELETE FROM shop_rooms WHERE room_id = ?")).WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	ctx := context.Background()
	if err := repo.UpsertShopRoom(ctx, domain.ShopRoom{RoomID: 5, ShopID: 2}); err != nil {
		t.Fatalf("UpsertShopRoom: %v", err)
	}
	if err := repo.DeleteShopRoom(ctx, 5); err != nil {
		t.Fatalf("DeleteShopRoom: %v", err)
	}
	if err := repo.DeleteShopRoom(ctx, 5); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
