package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/souleimarejeb/rbac-app/internal/errors"
	"github.com/souleimarejeb/rbac-app/internal/model"
	"github.com/souleimarejeb/rbac-app/internal/testutil"
)

var userColumns = []string{
	"id", "name", "last_name", "username", "email", "password",
	"authentication_id", "live", "created_at", "updated_at", "deleted_at",
}

func newRepoWithMock(t *testing.T) (UserRepository, sqlmock.Sqlmock) {
	t.Helper()
	gdb, mock := testutil.NewGormMock(t)
	return NewUserRepository(gdb), mock
}

func userRow(rows *sqlmock.Rows, id, username string, deletedAt interface{}) *sqlmock.Rows {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	var live interface{} = true
	if deletedAt != nil {
		live = nil
	}
	return rows.AddRow(id, "Alice", "Smith", username, username+"@example.com", "$argon2id$hash", "x", live, now, now, deletedAt)
}

func TestUserRepository_Create(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec("INSERT INTO `users`").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &model.User{
		Name:             "Alice",
		LastName:         "Smith",
		Username:         "alice01",
		Email:            "alice@example.com",
		PasswordHash:     "$argon2id$hash",
		AuthenticationID: "x",
	}
	require.NoError(t, repo.Create(context.Background(), u))

	assert.NotEmpty(t, u.ID)
	assert.False(t, u.CreatedAt.IsZero())
	assert.False(t, u.State.IsDeleted())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_Duplicate(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'alice01-1' for key 'idx_users_username_live'"})

	err := repo.Create(context.Background(), &model.User{Username: "alice01", Email: "alice@example.com"})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Create_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(errors.New("db down"))

	err := repo.Create(context.Background(), &model.User{Username: "alice01"})

	require.Error(t, err)
	assert.False(t, errors.Is(err, apperrors.ErrConflict))
	assert.Contains(t, err.Error(), "create user: db down")
}

func TestUserRepository_FindByID(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\? AND `users`.`deleted_at` IS NULL").
		WillReturnRows(userRow(sqlmock.NewRows(userColumns), "u-1", "alice01", nil))

	got, err := repo.FindByID(context.Background(), "u-1")
	require.NoError(t, err)

	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "alice01", got.Username)
	assert.Equal(t, "$argon2id$hash", got.PasswordHash)
	assert.False(t, got.State.IsDeleted())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_FindByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err := repo.FindByID(context.Background(), "missing")

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.EqualError(t, err, "User with ID missing not found")
}

func TestUserRepository_FindByUsername(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\? AND `users`.`deleted_at` IS NULL").
		WillReturnRows(userRow(sqlmock.NewRows(userColumns), "u-1", "alice01", nil))

	got, err := repo.FindByUsername(context.Background(), "alice01")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WillReturnRows(sqlmock.NewRows(userColumns))

	_, err = repo.FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRepository_FindAnyByID_ReturnsDeleted(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	deletedAt := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT \\* FROM `users` WHERE id = \\? ORDER BY").
		WillReturnRows(userRow(sqlmock.NewRows(userColumns), "u-1", "alice01", deletedAt))

	got, err := repo.FindAnyByID(context.Background(), "u-1")
	require.NoError(t, err)

	at, deleted := got.State.DeletedAt()
	assert.True(t, deleted)
	assert.Equal(t, deletedAt, at.UTC())
}

func TestUserRepository_List(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows(userColumns)
	userRow(rows, "u-1", "alice01", nil)
	userRow(rows, "u-2", "bob0002", nil)
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`deleted_at` IS NULL ORDER BY created_at ASC").
		WillReturnRows(rows)

	users, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "bob0002", users[1].Username)
}

func TestUserRepository_ListPage(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users` WHERE `users`.`deleted_at` IS NULL").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`deleted_at` IS NULL ORDER BY created_at ASC LIMIT").
		WillReturnRows(userRow(sqlmock.NewRows(userColumns), "u-3", "carol03", nil))

	users, total, err := repo.ListPage(context.Background(), 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, users, 1)
	assert.Equal(t, "carol03", users[0].Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec("UPDATE `users` SET .*`name`=\\?.* WHERE .*`id` = \\?").
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &model.User{ID: "u-1", Name: "NewName", Username: "alice01", Email: "alice@example.com"}
	require.NoError(t, repo.Update(context.Background(), u))
	assert.False(t, u.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_Update_Conflict(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec("UPDATE `users` SET").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry"})

	err := repo.Update(context.Background(), &model.User{ID: "u-1", Username: "taken"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestUserRepository_SoftDelete(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectExec("UPDATE `users` SET `deleted_at`=\\?,`live`=.* WHERE id = \\? AND `users`.`deleted_at` IS NULL").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.SoftDelete(context.Background(), "u-1", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_SoftDelete_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectExec("UPDATE `users` SET").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), "missing", time.Now())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUserRecord_Mapping(t *testing.T) {
	u := &model.User{ID: "u-1", Username: "alice01", PasswordHash: "h"}
	rec := fromModel(u)
	require.NotNil(t, rec.Live)
	assert.True(t, *rec.Live)
	assert.Equal(t, "h", rec.Password)

	at := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	u.State = model.DeletedAt(at)
	rec = fromModel(u)
	assert.Nil(t, rec.Live)
	assert.True(t, rec.DeletedAt.Valid)

	back := rec.toModel()
	got, deleted := back.State.DeletedAt()
	assert.True(t, deleted)
	assert.Equal(t, at, got)
}
