package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	"github.com/Samantha1101854/pilltime-pro2/internal/errs"
	"github.com/Samantha1101854/pilltime-pro2/internal/storage"
)

var _ storage.KV = (*KV)(nil)

func TestKV_AgainstMiniredis(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	kv, err := Open(ctx, "redis://"+mr.Addr(), "pt:")
	require.NoError(t, err)
	defer kv.Close()

	_, err = kv.Get(ctx, "pilltime-reminders")
	require.ErrorIs(t, err, errs.ErrNotFound)

	require.NoError(t, kv.Set(ctx, "pilltime-reminders", []byte(`[]`)))
	got, err := kv.Get(ctx, "pilltime-reminders")
	require.NoError(t, err)
	require.Equal(t, `[]`, string(got))

	// prefix is applied on the server side
	raw, err := mr.Get("pt:pilltime-reminders")
	require.NoError(t, err)
	require.Equal(t, `[]`, raw)

	require.NoError(t, kv.Remove(ctx, "pilltime-reminders"))
	require.False(t, mr.Exists("pt:pilltime-reminders"))
}

func TestOpen_BadURL(t *testing.T) {
	_, err := Open(context.Background(), "::not-a-url", "")
	require.Error(t, err)
}
