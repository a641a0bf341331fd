package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/spin-wheel-promo/internal/model"
)

// mockRow implements pgx.Row for testing Insert.
type mockRow struct {
	scanFn func(dest ...any) error
}

func (m *mockRow) Scan(dest ...any) error {
	if m.scanFn != nil {
		return m.scanFn(dest...)
	}
	return nil
}

// mockRows implements pgx.Rows over in-memory records.
type mockRows struct {
	data      [][]any
	index     int
	errOnScan error
	errOnRows error
}

func (m *mockRows) Close() {}

func (m *mockRows) Err() error {
	return m.errOnRows
}

func (m *mockRows) Next() bool {
	if m.index < len(m.data) {
		m.index++
		return true
	}
	return false
}

func (m *mockRows) Scan(dest ...any) error {
	if m.errOnScan != nil {
		return m.errOnScan
	}
	row := m.data[m.index-1]
	for i, d := range dest {
		switch p := d.(type) {
		case *int64:
			*p = row[i].(int64)
		case *string:
			*p = row[i].(string)
		case *float64:
			*p = row[i].(float64)
		case *time.Time:
			*p = row[i].(time.Time)
		}
	}
	return nil
}

func (m *mockRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (m *mockRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (m *mockRows) RawValues() [][]byte                          { return nil }
func (m *mockRows) Values() ([]any, error)                       { return nil, nil }
func (m *mockRows) Conn() *pgx.Conn                              { return nil }

// mockPool implements PoolInterface for testing.
type mockPool struct {
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	pingErr    error
}

func (m *mockPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if m.queryRowFn != nil {
		return m.queryRowFn(ctx, sql, args...)
	}
	return &mockRow{}
}

func (m *mockPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if m.queryFn != nil {
		return m.queryFn(ctx, sql, args...)
	}
	return &mockRows{}, nil
}

func (m *mockPool) Ping(ctx context.Context) error {
	return m.pingErr
}

func TestAwardRepository_Insert_Success(t *testing.T) {
	var capturedSQL string
	var capturedArgs []any
	createdAt := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)

	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			capturedSQL = sql
			capturedArgs = args
			return &mockRow{scanFn: func(dest ...any) error {
				*(dest[0].(*int64)) = 42
				*(dest[1].(*time.Time)) = createdAt
				return nil
			}}
		},
	}

	repo := NewAwardRepositoryWithPool(mock)
	award := &model.Award{
		SessionID:       "sess-1",
		UserName:        "Asha",
		Code:            "MASALA25",
		DiscountLabel:   "25% OFF",
		RotationDegrees: 1579.5,
	}

	err := repo.Insert(context.Background(), award)

	require.NoError(t, err)
	assert.Contains(t, capturedSQL, "INSERT INTO awards")
	assert.Contains(t, capturedSQL, "RETURNING id, created_at")
	assert.Equal(t, []any{"sess-1", "Asha", "MASALA25", "25% OFF", 1579.5}, capturedArgs)
	assert.Equal(t, int64(42), award.ID)
	assert.Equal(t, createdAt, award.CreatedAt)
}

func TestAwardRepository_Insert_DatabaseError(t *testing.T) {
	dbErr := errors.New("connection refused")
	mock := &mockPool{
		queryRowFn: func(ctx context.Context, sql string, args ...any) pgx.Row {
			return &mockRow{scanFn: func(dest ...any) error { return dbErr }}
		},
	}

	repo := NewAwardRepositoryWithPool(mock)
	err := repo.Insert(context.Background(), &model.Award{Code: "RICE30"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert award RICE30")
	assert.True(t, errors.Is(err, dbErr), "should wrap original error")
}

func TestAwardRepository_Recent_Success(t *testing.T) {
	t1 := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	t2 := t1.Add(-time.Minute)
	var capturedArgs []any

	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			capturedArgs = args
			assert.Contains(t, sql, "ORDER BY created_at DESC")
			return &mockRows{data: [][]any{
				{int64(2), "sess-2", "Ravi", "FEAST50", "50% OFF", 1700.0, t1},
				{int64(1), "sess-1", "Asha", "SPICE20", "20% OFF", 1200.0, t2},
			}}, nil
		},
	}

	repo := NewAwardRepositoryWithPool(mock)
	awards, err := repo.Recent(context.Background(), 10)

	require.NoError(t, err)
	assert.Equal(t, []any{10}, capturedArgs)
	require.Len(t, awards, 2)
	assert.Equal(t, model.Award{
		ID: 2, SessionID: "sess-2", UserName: "Ravi", Code: "FEAST50",
		DiscountLabel: "50% OFF", RotationDegrees: 1700, CreatedAt: t1,
	}, awards[0])
	assert.Equal(t, "SPICE20", awards[1].Code)
}

func TestAwardRepository_Recent_Empty(t *testing.T) {
	repo := NewAwardRepositoryWithPool(&mockPool{})
	awards, err := repo.Recent(context.Background(), 5)

	require.NoError(t, err)
	require.NotNil(t, awards, "Should return empty slice, not nil")
	assert.Len(t, awards, 0)
}

func TestAwardRepository_Recent_Errors(t *testing.T) {
	dbErr := errors.New("boom")
	testCases := []struct {
		name    string
		queryFn func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
		wantMsg string
	}{
		{
			name: "query_error",
			queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return nil, dbErr
			},
			wantMsg: "query recent awards",
		},
		{
			name: "scan_error",
			queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return &mockRows{data: [][]any{{}}, errOnScan: dbErr}, nil
			},
			wantMsg: "scan award",
		},
		{
			name: "rows_error",
			queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
				return &mockRows{errOnRows: dbErr}, nil
			},
			wantMsg: "iterate award rows",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			repo := NewAwardRepositoryWithPool(&mockPool{queryFn: tc.queryFn})
			awards, err := repo.Recent(context.Background(), 5)

			require.Error(t, err)
			assert.Nil(t, awards)
			assert.Contains(t, err.Error(), tc.wantMsg)
			assert.ErrorIs(t, err, dbErr)
		})
	}
}

func TestAwardRepository_CountByCode(t *testing.T) {
	mock := &mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			assert.Contains(t, sql, "GROUP BY code")
			return &mockRows{data: [][]any{
				{"FEAST50", int64(7)},
				{"RICE30", int64(3)},
			}}, nil
		},
	}

	repo := NewAwardRepositoryWithPool(mock)
	counts, err := repo.CountByCode(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []model.AwardCount{{Code: "FEAST50", Count: 7}, {Code: "RICE30", Count: 3}}, counts)
}

func TestAwardRepository_CountByCode_QueryError(t *testing.T) {
	dbErr := errors.New("timeout")
	repo := NewAwardRepositoryWithPool(&mockPool{
		queryFn: func(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
			return nil, dbErr
		},
	})

	counts, err := repo.CountByCode(context.Background())
	assert.Nil(t, counts)
	assert.ErrorIs(t, err, dbErr)
}

func TestAwardRepository_Ping(t *testing.T) {
	repo := NewAwardRepositoryWithPool(&mockPool{pingErr: errors.New("down")})
	assert.EqualError(t, repo.Ping(context.Background()), "down")
}

func TestNopAwardRepository(t *testing.T) {
	repo := NewNopAwardRepository()
	ctx := context.Background()

	a := &model.Award{Code: "TASTE35"}
	b := &model.Award{Code: "RICE30"}
	require.NoError(t, repo.Insert(ctx, a))
	require.NoError(t, repo.Insert(ctx, b))
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.False(t, a.CreatedAt.IsZero())

	recent, err := repo.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, recent)

	counts, err := repo.CountByCode(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	assert.NoError(t, repo.Ping(ctx))
}
