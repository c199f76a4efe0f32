package hibp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	passwordHash   = "5BAA61E4C9B93F3F0682250B6CF8331B7EE68FD8"
	passwordPrefix = "5BAA6"
	passwordSuffix = "1E4C9B93F3F0682250B6CF8331B7EE68FD8"
)

func fakeCorpus(t *testing.T, body string) RangeQuery {
	return RangeQueryFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		assert.Equal(t, passwordPrefix, prefix)
		return []byte(body), nil
	})
}

func TestHashPassword(t *testing.T) {
	d := HashPassword("password")
	assert.Equal(t, passwordHash, d.Hash)
	assert.Equal(t, passwordPrefix, d.Prefix)
	assert.Equal(t, passwordSuffix, d.Suffix)
	assert.Len(t, d.Suffix, 35)

	// UTF-8 bytes are hashed as is.
	assert.Equal(t, "F517DDF1D32A112FF1AD55C66D1B12CB38E7E8F7", HashPassword("pässwörd").Hash)
}

func TestParseDigest(t *testing.T) {
	d, err := ParseDigest("5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8")
	require.NoError(t, err)
	assert.Equal(t, HashPassword("password"), d)

	_, err = ParseDigest("5baa61e4")
	assert.ErrorIs(t, err, ErrInvalidHash)

	_, err = ParseDigest("ZBAA61E4C9B93F3F0682250B6CF8331B7EE68FD8")
	assert.ErrorIs(t, err, ErrInvalidHash)
}

func TestLookup_Found(t *testing.T) {
	body := "1E4C9B93F3F0682250B6CF8331B7EE68FC0:12\r\n" +
		passwordSuffix + ":9545824\r\n" +
		"1E4C9B93F3F0682250B6CF8331B7EE68FD9:3"

	res := NewLookup(fakeCorpus(t, body), time.Second).Check(context.Background(), "password")
	require.NoError(t, res.Err)
	assert.False(t, res.Failed())
	assert.Equal(t, int64(9545824), res.Count)
	assert.Equal(t, StatusFound, res.Status())
}

func TestLookup_NotFound(t *testing.T) {
	body := "1E4C9B93F3F0682250B6CF8331B7EE68FC0:12\r\n1E4C9B93F3F0682250B6CF8331B7EE68FD9:3\r\n"

	res := NewLookup(fakeCorpus(t, body), time.Second).Check(context.Background(), "password")
	require.NoError(t, res.Err)
	assert.Zero(t, res.Count)
	assert.Equal(t, StatusNotFound, res.Status())
}

func TestLookup_EmptyRange(t *testing.T) {
	res := NewLookup(fakeCorpus(t, ""), 0).Check(context.Background(), "password")
	assert.False(t, res.Failed())
	assert.Zero(t, res.Count)
}

func TestLookup_TransportFailure(t *testing.T) {
	boom := errors.New("connection reset")
	ranges := RangeQueryFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		return nil, boom
	})

	res := NewLookup(ranges, time.Second).Check(context.Background(), "password")
	assert.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, ErrLookupFailed)
	assert.ErrorIs(t, res.Err, boom)
	assert.Equal(t, Unavailable, res.Count)
	assert.NotZero(t, res.Count)
	assert.Equal(t, StatusUnavailable, res.Status())
}

func TestLookup_Timeout(t *testing.T) {
	ranges := RangeQueryFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})

	start := time.Now()
	res := NewLookup(ranges, 20*time.Millisecond).Check(context.Background(), "password")
	assert.Less(t, time.Since(start), time.Second)
	assert.True(t, res.Failed())
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
}

func TestLookup_CaseSensitiveSuffix(t *testing.T) {
	body := "1e4c9b93f3f0682250b6cf8331b7ee68fd8:100"
	res := NewLookup(fakeCorpus(t, body), time.Second).Check(context.Background(), "password")
	assert.Zero(t, res.Count)
}

func TestParseRange_SkipsMalformed(t *testing.T) {
	body := []byte("no-colon-here\n" +
		"1E4C9B93F3F0682250B6CF8331B7EE68FC0:abc\n" +
		"1E4C9B93F3F0682250B6CF8331B7EE68FC1:-4\n" +
		"\n" +
		passwordSuffix + ":42\n")

	count, malformed := ParseRange(body, passwordSuffix)
	assert.Equal(t, int64(42), count)
	assert.Equal(t, 3, malformed)

	count, malformed = ParseRange(body, "0000000000000000000000000000000000A")
	assert.Zero(t, count)
	assert.Equal(t, 3, malformed)
}

func TestParseRange_PaddingEntries(t *testing.T) {
	body := []byte(passwordSuffix + ":0\r\n0018A45C4D1DEF81644B54AB7F969B88D65:0\r\n")
	count, malformed := ParseRange(body, passwordSuffix)
	assert.Zero(t, count)
	assert.Zero(t, malformed)
}

func TestResult_Status(t *testing.T) {
	assert.Equal(t, StatusFound, Result{Count: 1}.Status())
	assert.Equal(t, StatusNotFound, Result{}.Status())
	assert.Equal(t, StatusUnavailable, Result{Count: Unavailable, Err: ErrLookupFailed}.Status())
}
