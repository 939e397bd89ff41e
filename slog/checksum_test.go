package slog_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/fwojciec/fetchfilter"
	"github.com/fwojciec/fetchfilter/mock"
	ffslog "github.com/fwojciec/fetchfilter/slog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggingHasher_Sum(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	inner := &mock.Hasher{
		SumFn: func(_ context.Context, _ string, _ fetchfilter.ProgressFunc) (string, error) {
			return "5eb63bbbe01eeed093cb22bb8f5acdc3", nil
		},
		AlgorithmFn: func() fetchfilter.Algorithm { return fetchfilter.AlgorithmMD5 },
	}

	h := ffslog.NewLoggingHasher(inner, logger)
	digest, err := h.Sum(context.Background(), "/out/r.zip", nil)

	require.NoError(t, err)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", digest)
	assert.Equal(t, fetchfilter.AlgorithmMD5, h.Algorithm())
	output := buf.String()
	assert.Contains(t, output, "checksum")
	assert.Contains(t, output, "path=/out/r.zip")
	assert.Contains(t, output, "algorithm=md5")
	assert.Contains(t, output, "digest=5eb63bbbe01eeed093cb22bb8f5acdc3")
}

func TestLoggingChecksumStore(t *testing.T) {
	t.Parallel()

	t.Run("logs record and load", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ChecksumStore{
			LoadFn: func(_ context.Context) error { return nil },
			LookupFn: func(filename string) (string, bool) {
				return "abc", filename == "r.zip"
			},
			RecordFn: func(_ context.Context, _, _ string) error { return nil },
		}

		s := ffslog.NewLoggingChecksumStore(inner, logger)
		require.NoError(t, s.Load(context.Background()))
		require.NoError(t, s.Record(context.Background(), "r.zip", "abc"))
		digest, ok := s.Lookup("r.zip")

		assert.True(t, ok)
		assert.Equal(t, "abc", digest)
		output := buf.String()
		assert.Contains(t, output, "checksum store load")
		assert.Contains(t, output, "checksum store record")
		assert.Contains(t, output, "file=r.zip")
	})

	t.Run("logs persist failure", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		logger := slog.New(slog.NewTextHandler(&buf, nil))
		inner := &mock.ChecksumStore{
			RecordFn: func(_ context.Context, _, _ string) error { return errors.New("disk full") },
		}

		err := ffslog.NewLoggingChecksumStore(inner, logger).Record(context.Background(), "r.zip", "abc")

		require.Error(t, err)
		assert.Contains(t, buf.String(), "err=\"disk full\"")
	})
}
