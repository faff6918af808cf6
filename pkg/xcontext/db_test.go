package xcontext_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tensaku-lab/backend/internal/entity"
	"github.com/tensaku-lab/backend/pkg/testutil"
	"github.com/tensaku-lab/backend/pkg/xcontext"
)

func Test_WithDBTransaction(t *testing.T) {
	ctx := testutil.MockContext()

	count := func() int64 {
		var n int64
		require.NoError(t, xcontext.DB(ctx).Model(&entity.User{}).Count(&n).Error)
		return n
	}

	t.Run("rollback", func(t *testing.T) {
		txCtx := xcontext.WithDBTransaction(ctx)
		require.NoError(t, xcontext.DB(txCtx).Create(&entity.User{Base: entity.Base{ID: "u1"}, Handle: "u1"}).Error)
		xcontext.WithRollbackDBTransaction(txCtx)
		require.Equal(t, int64(0), count())
	})

	t.Run("commit", func(t *testing.T) {
		txCtx := xcontext.WithDBTransaction(ctx)
		defer xcontext.WithRollbackDBTransaction(txCtx)
		require.NoError(t, xcontext.DB(txCtx).Create(&entity.User{Base: entity.Base{ID: "u2"}, Handle: "u2"}).Error)
		require.NoError(t, xcontext.WithCommitDBTransaction(txCtx))
		require.Equal(t, int64(1), count())
	})

	t.Run("nested rollback keeps outer changes", func(t *testing.T) {
		outer := xcontext.WithDBTransaction(ctx)
		defer xcontext.WithRollbackDBTransaction(outer)
		require.NoError(t, xcontext.DB(outer).Create(&entity.User{Base: entity.Base{ID: "u3"}, Handle: "u3"}).Error)

		inner := xcontext.WithDBTransaction(outer)
		require.NoError(t, xcontext.DB(inner).Create(&entity.User{Base: entity.Base{ID: "u4"}, Handle: "u4"}).Error)
		xcontext.WithRollbackDBTransaction(inner)

		require.NoError(t, xcontext.WithCommitDBTransaction(outer))

		var ids []string
		require.NoError(t, xcontext.DB(ctx).Model(&entity.User{}).Order("id").Pluck("id", &ids).Error)
		require.Equal(t, []string{"u2", "u3"}, ids)
	})
}
