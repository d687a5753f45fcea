package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/firewatch/firewatch/pkg/types"
)

func sweep(site string) *types.Sweep {
	return &types.Sweep{ID: site + "-sweep", SiteID: site, Source: "simulate:120"}
}

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestPutAndGet(t *testing.T) {
	st := New(5 * time.Minute)
	st.Put(sweep("ridge"))

	e, ok := st.Get("ridge")
	if !ok {
		t.Fatal("Get: expected entry, got none")
	}
	if e.Sweep.SiteID != "ridge" {
		t.Errorf("SiteID: got %q, want ridge", e.Sweep.SiteID)
	}
}

func TestGet_Missing(t *testing.T) {
	st := New(5 * time.Minute)
	if _, ok := st.Get("unknown"); ok {
		t.Fatal("Get on empty store: expected false, got true")
	}
}

func TestPut_Overwrites(t *testing.T) {
	st := New(5 * time.Minute)
	st.Put(&types.Sweep{ID: "first", SiteID: "ridge"})
	st.Put(&types.Sweep{ID: "second", SiteID: "ridge"})

	e, ok := st.Get("ridge")
	if !ok {
		t.Fatal("Get: expected entry after two Puts")
	}
	if e.Sweep.ID != "second" {
		t.Errorf("ID: got %q, want second", e.Sweep.ID)
	}
}

func TestList_ExcludesStaleAndSorts(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(sweep("old"))

	st.now = fixedClock(base)
	st.Put(sweep("valley"))
	st.Put(sweep("canyon"))

	entries := st.List()
	if len(entries) != 2 {
		t.Fatalf("List: got %d entries, want 2", len(entries))
	}
	if entries[0].Sweep.SiteID != "canyon" || entries[1].Sweep.SiteID != "valley" {
		t.Errorf("List order: got %s, %s", entries[0].Sweep.SiteID, entries[1].Sweep.SiteID)
	}
}

func TestLive(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(sweep("old"))
	st.now = fixedClock(base)
	st.Put(sweep("new"))

	if _, ok := st.Live("old"); ok {
		t.Error("Live returned a stale entry")
	}
	if _, ok := st.Get("old"); !ok {
		t.Error("Get should still return the stale entry")
	}
	if _, ok := st.Live("new"); !ok {
		t.Error("Live missed a fresh entry")
	}
}

func TestCount_IncludesStale(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(sweep("old"))
	st.now = fixedClock(base)
	st.Put(sweep("new"))

	if n := st.Count(); n != 2 {
		t.Errorf("Count: got %d, want 2", n)
	}
}

func TestEvict_RemovesStale(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(sweep("old1"))
	st.Put(sweep("old2"))

	st.now = fixedClock(base)
	st.Put(sweep("live"))

	if removed := st.Evict(base); removed != 2 {
		t.Errorf("Evict: removed %d, want 2", removed)
	}
	if st.Count() != 1 {
		t.Errorf("Count after evict: got %d, want 1", st.Count())
	}
}

func TestEvict_NoOp_AllLive(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)
	st.now = fixedClock(base)
	st.Put(sweep("ridge"))

	if removed := st.Evict(base); removed != 0 {
		t.Errorf("Evict on live entry: removed %d, want 0", removed)
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	st := New(time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		st.Run(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestConcurrentMixedOps(t *testing.T) {
	st := New(5 * time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			st.Put(sweep("ridge"))
		}()
		go func() {
			defer wg.Done()
			st.List()
		}()
		go func() {
			defer wg.Done()
			st.Live("ridge")
		}()
	}
	wg.Wait()

	if st.Count() != 1 {
		t.Errorf("Count after concurrent puts: got %d, want 1", st.Count())
	}
}
