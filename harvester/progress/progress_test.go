package progress

import (
	"testing"

	logging "github.com/ipfs/go-log/v2"
	"github.com/stretchr/testify/require"
)

func TestTriangle(t *testing.T) {
	tri := NewTriangle(logging.Logger("test"), 2)
	require.Equal(t, int64(0), tri.Count())

	for i := 0; i < 100; i++ {
		tri.Update()
	}
	require.Equal(t, int64(100), tri.Count())
	tri.Done()
}

func TestTriangleMinimumBase(t *testing.T) {
	tri := NewTriangle(logging.Logger("test"), 0)
	tri.Update()
	require.Equal(t, int64(1), tri.Count())
}
