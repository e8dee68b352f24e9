package metrics

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	t.Run("concurrent updates", func(t *testing.T) {
		c := NewCollector()
		c.Start(500)

		var wg sync.WaitGroup
		for g := 0; g < 8; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := 0; i < 50; i++ {
					c.AddExpansion(i % 40)
					c.AddNode()
				}
			}()
		}
		wg.Wait()

		m := c.Complete(Solved, 17)
		require.Equal(t, 500, m.Budget)
		require.Equal(t, 400, m.Expanded)
		require.Equal(t, 400, m.Nodes)
		require.Equal(t, 39, m.MaxBucket)
		require.Equal(t, 17, m.SolutionLength)
		require.Equal(t, Solved, m.Outcome)
		require.False(t, m.StartTime.IsZero())
	})

	t.Run("start resets", func(t *testing.T) {
		c := NewCollector()
		c.Start(10)
		c.AddExpansion(3)
		c.Start(20)
		m := c.Complete(Exhausted, 0)
		require.Zero(t, m.Expanded)
		require.Zero(t, m.MaxBucket)
	})

	t.Run("dummy", func(t *testing.T) {
		c := NewDummyCollector()
		c.Start(10)
		c.AddExpansion(3)
		c.AddNode()
		require.Equal(t, SearchMetric{Outcome: Cancelled}, c.Complete(Cancelled, 0))
	})
}
