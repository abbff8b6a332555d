package ledger

import (
	"context"
	"testing"
	"time"

	"kosh/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	return db, mock
}

func expectLock(mock sqlmock.Sqlmock, accountID uint, balance float64) {
	mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE .* FOR UPDATE`).
		WithArgs(accountID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_hash", "mobile", "balance"}).
			AddRow(accountID, "user", "hash", "9999999999", balance))
}

func expectBalanceUpdate(mock sqlmock.Sqlmock, accountID uint, balance float64) {
	mock.ExpectExec(`UPDATE "accounts" SET "balance"=\$1`).
		WithArgs(balance, sqlmock.AnyArg(), accountID).
		WillReturnResult(sqlmock.NewResult(0, 1))
}

func expectRecordInsert(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`INSERT INTO "transactions"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
}

func TestApply(t *testing.T) {
	t.Run("credit applies and appends a record", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectBegin()
		expectLock(mock, 1, 100)
		expectBalanceUpdate(mock, 1, 150)
		expectRecordInsert(mock)
		mock.ExpectCommit()

		balance, err := svc.Apply(context.Background(), 1, models.KindCredit, 50)
		assert.NoError(t, err)
		assert.Equal(t, float64(150), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("debit below balance succeeds", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectBegin()
		expectLock(mock, 1, 100)
		expectBalanceUpdate(mock, 1, 80)
		expectRecordInsert(mock)
		mock.ExpectCommit()

		balance, err := svc.Apply(context.Background(), 1, models.KindDebit, 20)
		assert.NoError(t, err)
		assert.Equal(t, float64(80), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("debit over balance rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectBegin()
		expectLock(mock, 1, 100)
		mock.ExpectRollback()

		_, err := svc.Apply(context.Background(), 1, models.KindDebit, 150)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("non-positive amount is rejected before touching the database", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		_, err := svc.Apply(context.Background(), 1, models.KindCredit, 0)
		assert.ErrorIs(t, err, ErrInvalidAmount)

		_, err = svc.Apply(context.Background(), 1, models.KindDebit, -5)
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		db, _ := newMockDB(t)
		svc := NewService(db, nil, 0)

		_, err := svc.Apply(context.Background(), 1, "adjustment", 10)
		assert.ErrorIs(t, err, ErrInvalidKind)
	})

	t.Run("missing account", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE .* FOR UPDATE`).
			WithArgs(uint(7), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := svc.Apply(context.Background(), 7, models.KindCredit, 10)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

type recordingNotifier struct {
	calls chan notifyCall
}

type notifyCall struct {
	accountID uint
	kind      string
	amount    float64
	balance   float64
}

func (n *recordingNotifier) Notify(_ context.Context, accountID uint, kind string, amount, balance float64) error {
	n.calls <- notifyCall{accountID, kind, amount, balance}
	return nil
}

func TestApplyNotifiesAfterCommit(t *testing.T) {
	db, mock := newMockDB(t)
	notifier := &recordingNotifier{calls: make(chan notifyCall, 1)}
	svc := NewService(db, notifier, 0)

	mock.ExpectBegin()
	expectLock(mock, 1, 0)
	expectBalanceUpdate(mock, 1, 10)
	expectRecordInsert(mock)
	mock.ExpectCommit()

	_, err := svc.Apply(context.Background(), 1, models.KindCredit, 10)
	require.NoError(t, err)

	select {
	case call := <-notifier.calls:
		assert.Equal(t, notifyCall{1, models.KindCredit, 10, 10}, call)
	case <-time.After(time.Second):
		t.Fatal("expected a notification")
	}
}

func TestTransfer(t *testing.T) {
	t.Run("debits sender and credits recipient atomically", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectBegin()
		expectLock(mock, 1, 100)
		expectLock(mock, 2, 0)
		expectBalanceUpdate(mock, 1, 70)
		expectBalanceUpdate(mock, 2, 30)
		expectRecordInsert(mock)
		expectRecordInsert(mock)
		mock.ExpectCommit()

		balance, err := svc.Transfer(context.Background(), 1, 2, 30)
		assert.NoError(t, err)
		assert.Equal(t, float64(70), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("locks rows in ascending id order regardless of direction", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		// Sender has the higher id; the lower id must still be locked first.
		mock.ExpectBegin()
		expectLock(mock, 2, 0)
		expectLock(mock, 5, 100)
		expectBalanceUpdate(mock, 5, 60)
		expectBalanceUpdate(mock, 2, 40)
		expectRecordInsert(mock)
		expectRecordInsert(mock)
		mock.ExpectCommit()

		balance, err := svc.Transfer(context.Background(), 5, 2, 40)
		assert.NoError(t, err)
		assert.Equal(t, float64(60), balance)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insufficient sender funds roll back", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectBegin()
		expectLock(mock, 1, 10)
		expectLock(mock, 2, 0)
		mock.ExpectRollback()

		_, err := svc.Transfer(context.Background(), 1, 2, 30)
		assert.ErrorIs(t, err, ErrInsufficientFunds)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing recipient rolls back the debit", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectBegin()
		expectLock(mock, 1, 100)
		mock.ExpectQuery(`SELECT \* FROM "accounts" WHERE .* FOR UPDATE`).
			WithArgs(uint(2), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))
		mock.ExpectRollback()

		_, err := svc.Transfer(context.Background(), 1, 2, 30)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("self transfer is rejected", func(t *testing.T) {
		db, _ := newMockDB(t)
		svc := NewService(db, nil, 0)

		_, err := svc.Transfer(context.Background(), 3, 3, 10)
		assert.ErrorIs(t, err, ErrSelfTransfer)
	})
}

func TestGetBalance(t *testing.T) {
	t.Run("returns current balance", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectQuery(`SELECT \* FROM "accounts"`).
			WithArgs(uint(1), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id", "balance"}).AddRow(1, 42.5))

		balance, err := svc.GetBalance(context.Background(), 1)
		assert.NoError(t, err)
		assert.Equal(t, 42.5, balance)
	})

	t.Run("missing account", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectQuery(`SELECT \* FROM "accounts"`).
			WithArgs(uint(9), 1).
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		_, err := svc.GetBalance(context.Background(), 9)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})
}

func TestStatement(t *testing.T) {
	db, mock := newMockDB(t)
	svc := NewService(db, nil, 0)

	now := time.Now()
	mock.ExpectQuery(`SELECT \* FROM "transactions" WHERE account_id = \$1 ORDER BY created_at DESC, id DESC`).
		WithArgs(uint(1)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "account_id", "kind", "amount", "updated_balance", "created_at"}).
			AddRow(2, 1, models.KindDebit, 30, 70, now).
			AddRow(1, 1, models.KindCredit, 100, 100, now.Add(-time.Minute)))

	records, err := svc.Statement(context.Background(), 1)
	assert.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, models.KindDebit, records[0].Kind)
	assert.Equal(t, models.KindCredit, records[1].Kind)
}

func TestDeleteAccount(t *testing.T) {
	t.Run("removes history and account together", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "transactions" WHERE account_id = \$1`).
			WithArgs(uint(1)).
			WillReturnResult(sqlmock.NewResult(0, 3))
		mock.ExpectExec(`DELETE FROM "accounts" WHERE "accounts"."id" = \$1`).
			WithArgs(uint(1)).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := svc.DeleteAccount(context.Background(), 1)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing account rolls back", func(t *testing.T) {
		db, mock := newMockDB(t)
		svc := NewService(db, nil, 0)

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "transactions" WHERE account_id = \$1`).
			WithArgs(uint(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec(`DELETE FROM "accounts" WHERE "accounts"."id" = \$1`).
			WithArgs(uint(9)).
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		err := svc.DeleteAccount(context.Background(), 9)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
