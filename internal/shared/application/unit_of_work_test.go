package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txKey struct{}

// recordingUnitOfWork logs the calls it receives and fails on demand.
type recordingUnitOfWork struct {
	calls       []string
	beginErr    error
	commitErr   error
	rollbackErr error
}

func (u *recordingUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	u.calls = append(u.calls, "begin")
	if u.beginErr != nil {
		return ctx, u.beginErr
	}
	return context.WithValue(ctx, txKey{}, "tx"), nil
}

func (u *recordingUnitOfWork) Commit(ctx context.Context) error {
	u.calls = append(u.calls, "commit:"+txName(ctx))
	return u.commitErr
}

func (u *recordingUnitOfWork) Rollback(ctx context.Context) error {
	u.calls = append(u.calls, "rollback:"+txName(ctx))
	return u.rollbackErr
}

func txName(ctx context.Context) string {
	name, _ := ctx.Value(txKey{}).(string)
	return name
}

func TestWithUnitOfWork(t *testing.T) {
	errWrite := errors.New("outbox insert failed")
	errCommit := errors.New("database is locked")

	tests := []struct {
		name      string
		uow       *recordingUnitOfWork
		fnErr     error
		wantCalls []string
		wantErr   error
		ranFn     bool
	}{
		{
			name:      "commits when the function succeeds",
			uow:       &recordingUnitOfWork{},
			wantCalls: []string{"begin", "commit:tx"},
			ranFn:     true,
		},
		{
			name:      "rolls back and passes the function error through",
			uow:       &recordingUnitOfWork{},
			fnErr:     errWrite,
			wantCalls: []string{"begin", "rollback:tx"},
			wantErr:   errWrite,
			ranFn:     true,
		},
		{
			name:      "a rollback failure does not hide the function error",
			uow:       &recordingUnitOfWork{rollbackErr: errors.New("conn closed")},
			fnErr:     errWrite,
			wantCalls: []string{"begin", "rollback:tx"},
			wantErr:   errWrite,
			ranFn:     true,
		},
		{
			name:      "skips the function when begin fails",
			uow:       &recordingUnitOfWork{beginErr: errCommit},
			wantCalls: []string{"begin"},
			wantErr:   errCommit,
		},
		{
			name:      "wraps a commit failure",
			uow:       &recordingUnitOfWork{commitErr: errCommit},
			wantCalls: []string{"begin", "commit:tx"},
			wantErr:   errCommit,
			ranFn:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			err := WithUnitOfWork(context.Background(), tt.uow, func(ctx context.Context) error {
				ran = true
				assert.Equal(t, "tx", txName(ctx), "function runs inside the transaction")
				return tt.fnErr
			})

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.ranFn, ran)
			assert.Equal(t, tt.wantCalls, tt.uow.calls)
		})
	}

	t.Run("the function error is returned unwrapped", func(t *testing.T) {
		err := WithUnitOfWork(context.Background(), &recordingUnitOfWork{}, func(context.Context) error {
			return errWrite
		})

		assert.Same(t, errWrite, err)
	})

	t.Run("a commit failure is labelled", func(t *testing.T) {
		err := WithUnitOfWork(context.Background(), &recordingUnitOfWork{commitErr: errCommit}, func(context.Context) error {
			return nil
		})

		assert.EqualError(t, err, "commit: database is locked")
	})

	t.Run("rolls back and re-panics when the function panics", func(t *testing.T) {
		uow := &recordingUnitOfWork{}

		assert.PanicsWithValue(t, "store exploded", func() {
			_ = WithUnitOfWork(context.Background(), uow, func(context.Context) error {
				panic("store exploded")
			})
		})
		assert.Equal(t, []string{"begin", "rollback:tx"}, uow.calls)
	})
}
