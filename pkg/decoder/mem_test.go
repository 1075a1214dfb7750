//go:build test

package decoder

import (
	"fmt"
	"runtime"
	"sync"
	"testing"

	"github.com/bastiangx/swipeserve/pkg/dictionary"
	"github.com/bastiangx/swipeserve/pkg/gesture"
	"github.com/bastiangx/swipeserve/pkg/keys"
	"github.com/charmbracelet/log"
)

func init() {
	log.SetLevel(log.ErrorLevel)
}

var memWords = []string{"hello", "the", "world", "people", "coffee", "thought", "little", "water"}

// recorded holds one synthesized gesture per memWords entry.
func recorded(layout keys.KeyLookup) [][]gesture.TimestampedPoint {
	out := make([][]gesture.TimestampedPoint, len(memWords))
	for i, w := range memWords {
		out[i] = gesture.Synthesize(w, layout, gesture.DefaultSynthOptions())
	}
	return out
}

// TestTrackerReuseMemory drives one tracker through many gestures, the way
// the server does, and checks the heap does not grow with the gesture count.
func TestTrackerReuseMemory(t *testing.T) {
	for _, iterations := range []int{100, 500, 2500} {
		t.Run(fmt.Sprintf("iterations_%d", iterations), func(t *testing.T) {
			layout := grid()
			gestures := recorded(layout)
			dec := New(dictionary.Build(commonWords), DefaultContractions(), DefaultParams())
			tr := gesture.NewTracker(layout, gesture.DefaultParams())

			var baseline runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&baseline)
			baselineGoroutines := runtime.NumGoroutine()

			for i := 0; i < iterations; i++ {
				for _, samples := range gestures {
					tr.Begin(samples[0].Position, samples[0].Time, nil)
					for _, s := range samples[1:] {
						tr.AddSample(s.Position, s.Time)
					}
					_ = dec.Rank(tr.Finalize(), 5)
				}
			}

			var final runtime.MemStats
			runtime.GC()
			runtime.ReadMemStats(&final)

			memDelta := int64(final.HeapAlloc) - int64(baseline.HeapAlloc)
			totalOps := iterations * len(gestures)
			memPerOp := float64(memDelta) / float64(totalOps)
			goroutineDelta := runtime.NumGoroutine() - baselineGoroutines

			t.Logf("iterations=%d ops=%d mem_delta=%d bytes mem_per_op=%.2f goroutine_delta=%d",
				iterations, totalOps, memDelta, memPerOp, goroutineDelta)

			if memPerOp > 1000 {
				t.Errorf("heap grows with gestures: %.2f bytes retained per gesture", memPerOp)
			}
			if goroutineDelta > 2 {
				t.Errorf("goroutine leak detected: %d goroutines leaked", goroutineDelta)
			}
		})
	}
}

func TestConcurrentDecodersMemory(t *testing.T) {
	layout := grid()
	gestures := recorded(layout)
	dec := New(dictionary.Build(commonWords), DefaultContractions(), DefaultParams())

	var baseline runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&baseline)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 125; i++ {
				for _, samples := range gestures {
					_ = dec.Rank(gesture.Track(layout, gesture.DefaultParams(), samples), 5)
				}
			}
		}()
	}
	wg.Wait()

	var final runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&final)
	memDelta := int64(final.HeapAlloc) - int64(baseline.HeapAlloc)
	t.Logf("workers=8 mem_delta=%d bytes", memDelta)
	if memDelta > 4<<20 {
		t.Errorf("heap grew by %d bytes across concurrent decodes", memDelta)
	}
}

func BenchmarkTrack(b *testing.B) {
	layout := grid()
	samples := gesture.Synthesize("thought", layout, gesture.DefaultSynthOptions())
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = gesture.Track(layout, gesture.DefaultParams(), samples)
	}
}

func BenchmarkRank(b *testing.B) {
	layout := grid()
	dec := New(dictionary.Build(commonWords), DefaultContractions(), DefaultParams())
	hits := gesture.Track(layout, gesture.DefaultParams(), gesture.Synthesize("thought", layout, gesture.DefaultSynthOptions()))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = dec.Rank(hits, 5)
	}
}
