package worker

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMap_PreservesOrder(t *testing.T) {
	p := NewPool(4)
	defer p.Stop()

	in := make([]int, 500)
	for i := range in {
		in[i] = i
	}
	out := Map(p, in, func(_ int, v int) int { return v * 2 })

	require.Len(t, out, len(in))
	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
}

func TestMap_Empty(t *testing.T) {
	p := NewPool(2)
	defer p.Stop()

	out := Map(p, []string{}, func(int, string) int { return 1 })
	assert.Empty(t, out)
}

func TestStop_DrainsQueue(t *testing.T) {
	p := NewPool(3)
	var n atomic.Int64
	for i := 0; i < 100; i++ {
		p.Submit(func() { n.Add(1) })
	}
	p.Stop()
	p.Stop()
	assert.Equal(t, int64(100), n.Load())
}

func TestNewPool_ClampsSize(t *testing.T) {
	p := NewPool(0)
	defer p.Stop()

	out := Map(p, []int{1, 2, 3}, func(i int, v int) int { return i + v })
	assert.Equal(t, []int{1, 3, 5}, out)
}
