package session

import (
	"sync"
	"testing"
	"time"

	"github.com/jonatanjacobsson/ifc-ids-mcp/internal/ids"
)

func TestWithCreatesSessionOnFirstUse(t *testing.T) {
	st := NewStore()
	err := st.With("s1", func(doc *ids.Document) error {
		if doc == nil {
			t.Fatal("nil document on first use")
		}
		if doc.Title != ids.DefaultTitle {
			t.Errorf("title = %q, want default", doc.Title)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d, want 1", st.Len())
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	st := NewStore()
	if err := st.With("a", func(doc *ids.Document) error {
		doc.Title = "session a"
		return nil
	}); err != nil {
		t.Fatalf("With(a): %v", err)
	}

	if err := st.With("b", func(doc *ids.Document) error {
		if doc.Title == "session a" {
			t.Error("session b sees session a's document")
		}
		return nil
	}); err != nil {
		t.Fatalf("With(b): %v", err)
	}
}

func TestReplaceSwapsDocument(t *testing.T) {
	st := NewStore()
	st.Replace("s1", ids.NewDocument(ids.Info{Title: "loaded"}))

	if err := st.With("s1", func(doc *ids.Document) error {
		if doc.Title != "loaded" {
			t.Errorf("title = %q, want loaded", doc.Title)
		}
		return nil
	}); err != nil {
		t.Fatalf("With: %v", err)
	}
}

func TestSweepEvictsOnlyIdleSessions(t *testing.T) {
	st := NewStore()
	now := time.Now()
	st.clock = func() time.Time { return now }

	st.Replace("old", ids.NewDocument(ids.Info{}))

	now = now.Add(2 * time.Hour)
	st.Replace("fresh", ids.NewDocument(ids.Info{}))

	if n := st.Sweep(time.Hour); n != 1 {
		t.Fatalf("Sweep = %d, want 1", n)
	}
	if st.Len() != 1 {
		t.Errorf("Len = %d after sweep, want 1", st.Len())
	}

	// the evicted session id starts over with a fresh document
	if err := st.With("old", func(doc *ids.Document) error {
		if doc.Title != ids.DefaultTitle {
			t.Errorf("title = %q, want fresh default document", doc.Title)
		}
		return nil
	}); err != nil {
		t.Fatalf("With: %v", err)
	}
}

func TestSweepSkipsBusySession(t *testing.T) {
	st := NewStore()
	now := time.Now()
	st.clock = func() time.Time { return now }
	st.Replace("busy", ids.NewDocument(ids.Info{Title: "keep me"}))

	entered := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = st.With("busy", func(doc *ids.Document) error {
			close(entered)
			<-release
			return nil
		})
	}()

	<-entered
	now = now.Add(2 * time.Hour)
	if n := st.Sweep(time.Hour); n != 0 {
		t.Errorf("Sweep = %d while session busy, want 0", n)
	}
	close(release)
	wg.Wait()

	if err := st.With("busy", func(doc *ids.Document) error {
		if doc.Title != "keep me" {
			t.Errorf("busy session's document was evicted")
		}
		return nil
	}); err != nil {
		t.Fatalf("With: %v", err)
	}
}

func TestConcurrentSameSessionOperations(t *testing.T) {
	st := NewStore()
	const workers = 16

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = st.With("shared", func(doc *ids.Document) error {
				_, err := doc.AddSpecification(ids.SpecificationParams{
					Name:        "s",
					IfcVersions: []string{"IFC4"},
				})
				return err
			})
		}()
	}
	wg.Wait()

	if err := st.With("shared", func(doc *ids.Document) error {
		if len(doc.Specifications) != workers {
			t.Errorf("specifications = %d, want %d", len(doc.Specifications), workers)
		}
		seen := make(map[string]bool)
		for _, s := range doc.Specifications {
			if seen[s.Identifier] {
				t.Errorf("duplicate auto identifier %q", s.Identifier)
			}
			seen[s.Identifier] = true
		}
		return nil
	}); err != nil {
		t.Fatalf("With: %v", err)
	}
}
