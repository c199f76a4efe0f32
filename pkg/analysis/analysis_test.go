package analysis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alvinbaena/pwd-analyzer/pkg/hibp"
	"github.com/alvinbaena/pwd-analyzer/pkg/strength"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passwordSuffix = "1E4C9B93F3F0682250B6CF8331B7EE68FD8"

func newService(ranges hibp.RangeQuery, patterns bool) *Service {
	return NewService(
		strength.NewAnalyzer(strength.DefaultOptions()),
		hibp.NewLookup(ranges, time.Second),
		patterns,
	)
}

func TestService_Analyze(t *testing.T) {
	ranges := hibp.RangeQueryFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		return []byte(passwordSuffix + ":9545824"), nil
	})

	report := newService(ranges, true).Analyze(context.Background(), "password")

	assert.Equal(t, 2, report.Strength.Score)
	assert.Equal(t, "Instantly", report.Strength.CrackTime)
	assert.Equal(t, int64(9545824), report.Breach.Count)
	assert.Equal(t, hibp.StatusFound, report.Breach.Status())
	require.NotNil(t, report.Patterns)
	assert.Equal(t, 0, report.Patterns.Score)
}

func TestService_BreachFailureKeepsStructure(t *testing.T) {
	ranges := hibp.RangeQueryFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		return nil, errors.New("timeout")
	})

	report := newService(ranges, false).Analyze(context.Background(), "P@ssw0rd123!")

	assert.Equal(t, 5, report.Strength.Score)
	assert.Empty(t, report.Strength.Feedback)
	assert.True(t, report.Breach.Failed())
	assert.Equal(t, hibp.Unavailable, report.Breach.Count)
	assert.Nil(t, report.Patterns)
}

func TestService_EmptyPassword(t *testing.T) {
	ranges := hibp.RangeQueryFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		return nil, nil
	})

	report := newService(ranges, true).Analyze(context.Background(), "")
	assert.Equal(t, 0, report.Strength.Score)
	assert.Equal(t, "Instantly", report.Strength.CrackTime)
	assert.False(t, report.Breach.Failed())
	require.NotNil(t, report.Patterns)
}

func TestService_CheckHash(t *testing.T) {
	ranges := hibp.RangeQueryFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		assert.Equal(t, "5BAA6", prefix)
		return []byte(passwordSuffix + ":12"), nil
	})
	svc := newService(ranges, false)

	res, err := svc.CheckHash(context.Background(), "5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8")
	require.NoError(t, err)
	assert.Equal(t, int64(12), res.Count)

	_, err = svc.CheckHash(context.Background(), "nope")
	assert.ErrorIs(t, err, hibp.ErrInvalidHash)
}

func TestService_Concurrent(t *testing.T) {
	ranges := hibp.RangeQueryFunc(func(ctx context.Context, prefix string) ([]byte, error) {
		return []byte(passwordSuffix + ":1"), nil
	})
	svc := newService(ranges, false)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			report := svc.Analyze(context.Background(), "password")
			assert.Equal(t, int64(1), report.Breach.Count)
		}()
	}
	wg.Wait()
}
