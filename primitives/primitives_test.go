package primitives_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sarchlab/cachesim/primitives"
)

func TestSaturatingIncrementIdempotentAtMax(t *testing.T) {
	c := primitives.NewSaturating(0, 3)
	for i := 0; i < 10; i++ {
		c.Increment()
	}

	require.Equal(t, 3, c.Value())
	require.True(t, c.IsSaturatedHigh())
}

func TestSaturatingDecrementIdempotentAtZero(t *testing.T) {
	c := primitives.NewSaturating(1, 3)
	for i := 0; i < 10; i++ {
		c.Decrement()
	}

	require.Equal(t, 0, c.Value())
	require.True(t, c.IsSaturatedLow())
}

func TestSaturatingSetClamps(t *testing.T) {
	c := primitives.NewSaturating(0, 5)
	c.Set(100)
	require.Equal(t, 5, c.Value())

	c.Set(-100)
	require.Equal(t, 0, c.Value())
}

func TestCyclicAddWrapsAndIdentity(t *testing.T) {
	c := primitives.NewCyclic(4)
	require.Equal(t, 1, c.Add(1))
	require.Equal(t, 3, c.Add(2))
	require.Equal(t, 3, c.Add(4)) // add(n*size) == identity
	require.Equal(t, 3, c.Add(8))
}

func TestCyclicPeekDoesNotMutate(t *testing.T) {
	c := primitives.NewCyclic(5)
	c.Set(2)
	require.Equal(t, 4, c.Peek(2))
	require.Equal(t, 2, c.Hand())
}
