package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/retailcore/internal/application/uow"
	"github.com/erp/retailcore/internal/domain/sequence"
	"github.com/erp/retailcore/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSequenceRepository_NextLocksCounterRow(t *testing.T) {
	mockDB := testutil.NewMockDB(t)
	repo := NewGormSequenceRepository(mockDB.DB)
	tenantID := uuid.New()

	mockDB.Mock.ExpectExec(`INSERT INTO "document_sequences" .* ON CONFLICT DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mockDB.Mock.ExpectQuery(`SELECT \* FROM "document_sequences" WHERE .* FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"tenant_id", "kind", "value", "updated_at"}).
			AddRow(tenantID.String(), string(sequence.KindSalesOrder), 41, time.Now()))
	mockDB.Mock.ExpectExec(`UPDATE "document_sequences" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	n, err := repo.Next(context.Background(), tenantID, sequence.KindSalesOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
	mockDB.ExpectationsWereMet(t)
}

func TestGormSequenceRepository_CountersAreIndependent(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	repo := NewGormSequenceRepository(db)
	ctx := context.Background()
	tenantA, tenantB := uuid.New(), uuid.New()

	for want := int64(1); want <= 3; want++ {
		n, err := repo.Next(ctx, tenantA, sequence.KindSalesOrder)
		require.NoError(t, err)
		assert.Equal(t, want, n)
	}

	n, err := repo.Next(ctx, tenantA, sequence.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = repo.Next(ctx, tenantB, sequence.KindSalesOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	current, err := repo.Current(ctx, tenantA, sequence.KindSalesOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(3), current)

	current, err = repo.Current(ctx, uuid.New(), sequence.KindInvoice)
	require.NoError(t, err)
	assert.Zero(t, current)
}

func TestGormSequenceRepository_RollbackDoesNotBurnNumbers(t *testing.T) {
	db := testutil.NewSQLiteDB(t)
	scope := NewGormTransactionScope(db)
	ctx := context.Background()
	tenantID := uuid.New()

	err := scope.Execute(ctx, func(repos uow.Repositories) error {
		_, err := repos.SequenceRepo().Next(ctx, tenantID, sequence.KindInvoice)
		require.NoError(t, err)
		return assert.AnError
	})
	require.ErrorIs(t, err, assert.AnError)

	n, err := NewGormSequenceRepository(db).Next(ctx, tenantID, sequence.KindInvoice)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}
