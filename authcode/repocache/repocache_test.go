package repocache_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-oidc-core/authcode"
	"github.com/jrsteele09/go-oidc-core/authcode/repocache"
	"github.com/jrsteele09/go-oidc-core/claims"
	"github.com/stretchr/testify/require"
)

func testRecord(code string) authcode.Record {
	return authcode.ToRecord(
		authcode.Code{Value: code, Expires: time.Now().Add(10 * time.Minute)},
		[]claims.Claim{claims.New("sub", "user-42")},
	)
}

func TestRepo(t *testing.T) {
	t.Run("store then redeem", func(t *testing.T) {
		repo := repocache.New()
		require.NoError(t, repo.Store(testRecord("code-1")))

		record, err := repo.Redeem("code-1")
		require.NoError(t, err)
		require.Equal(t, "code-1", record.Code)
		require.Len(t, record.Claims, 1)
	})

	t.Run("redeem consumes the record", func(t *testing.T) {
		repo := repocache.New()
		require.NoError(t, repo.Store(testRecord("code-2")))

		_, err := repo.Redeem("code-2")
		require.NoError(t, err)

		_, err = repo.Redeem("code-2")
		require.ErrorIs(t, err, repocache.ErrCodeNotFound)
	})

	t.Run("unknown code", func(t *testing.T) {
		repo := repocache.New()
		_, err := repo.Redeem("never-stored")
		require.ErrorIs(t, err, repocache.ErrCodeNotFound)
	})

	t.Run("expired record is rejected at store time", func(t *testing.T) {
		repo := repocache.New()
		expired := authcode.Record{Code: "code-3", Expires: time.Now().Add(-time.Minute)}
		require.Error(t, repo.Store(expired))
	})

	t.Run("empty code rejected", func(t *testing.T) {
		repo := repocache.New()
		require.Error(t, repo.Store(authcode.Record{Expires: time.Now().Add(time.Minute)}))
		_, err := repo.Redeem("")
		require.Error(t, err)
	})
}
