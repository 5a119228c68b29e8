package trace_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/request"
	"github.com/sarchlab/cachesim/trace"
)

func writeGzipTrace(t *testing.T, lines []string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.trace.gz")

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	gz := gzip.NewWriter(f)
	for _, line := range lines {
		_, err := gz.Write([]byte(line + "\n"))
		require.NoError(t, err)
	}
	require.NoError(t, gz.Close())

	return path
}

func TestReaderParsesRecordsAndNormalizesAddressesPerCore(t *testing.T) {
	path := writeGzipTrace(t, []string{
		"100 0x1000 0x2000 0x3000 8 0",
		"101 0x1008 0x2008 0x3008 8 1",
	})

	r, err := trace.NewReader(path, 3)
	require.NoError(t, err)
	defer r.Close()

	ref, ok := r.Next()
	require.True(t, ok)
	require.Equal(t, uint64(100), ref.ICount)
	require.Equal(t, request.KindRead, ref.Kind)
	require.Equal(t, uint64(0x1000)|(3<<48), ref.IP)
	require.Equal(t, uint64(0x3000)|(uint64(3)<<32), ref.PAddr)

	ref2, ok := r.Next()
	require.True(t, ok)
	require.Equal(t, request.KindWrite, ref2.Kind)

	_, ok = r.Next()
	require.False(t, ok)
}

func TestReaderSkipsBlankLines(t *testing.T) {
	path := writeGzipTrace(t, []string{
		"1 0 0 0 8 0",
		"",
		"   ",
		"2 0 0 0 8 0",
	})

	r, err := trace.NewReader(path, 0)
	require.NoError(t, err)
	defer r.Close()

	count := 0
	for {
		_, ok := r.Next()
		if !ok {
			break
		}
		count++
	}

	require.Equal(t, 2, count)
}
