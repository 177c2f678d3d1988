package orchestrator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"productshot/config"
	"productshot/internal/catalog"
	"productshot/internal/generation"
	"productshot/internal/imageurl"
	"productshot/internal/queue"
)

func mugRequest() generation.Request {
	req := generation.NewRequest("A red ceramic mug")
	req.Category = "home-decor"
	req.Settings.NumImages = 2
	return req
}

func TestGenerateEndToEndSuccess(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"images":["/generated/a.png","/generated/b.png"],"metadata":{"prompt":"a red mug"}}`))
	}))
	defer ts.Close()

	base := ts.URL + "/api"
	client := generation.NewClient(config.GenerationConfig{BaseUrl: base, TimeoutMs: 2000})
	o := New(client, WithQueue(queue.New(1)), WithBaseURL(base))

	res, err := o.Generate(context.Background(), mugRequest())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	want := []string{ts.URL + "/generated/a.png", ts.URL + "/generated/b.png"}
	if len(res.Images) != 2 || res.Images[0] != want[0] || res.Images[1] != want[1] {
		t.Fatalf("result images = %v, want %v", res.Images, want)
	}

	st := o.Snapshot()
	if st.Loading {
		t.Fatalf("loading should be false after completion")
	}
	if st.Error != nil {
		t.Fatalf("error should be nil, got %q", *st.Error)
	}
	if len(st.Images) != 2 || st.Images[0] != want[0] || st.Images[1] != want[1] {
		t.Fatalf("state images = %v, want %v", st.Images, want)
	}
	if st.Metadata == nil || st.Metadata.Prompt != "a red mug" {
		t.Fatalf("metadata = %+v", st.Metadata)
	}
}

func TestGenerateEndToEndRateLimited(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer ts.Close()

	base := ts.URL + "/api"
	client := generation.NewClient(config.GenerationConfig{BaseUrl: base, TimeoutMs: 2000})
	o := New(client, WithQueue(queue.New(1)), WithBaseURL(base))

	_, err := o.Generate(context.Background(), mugRequest())
	if !errors.Is(err, generation.ErrHTTP) {
		t.Fatalf("expected HTTP error, got %v", err)
	}
	if code := generation.CodeOf(err); code != "HTTP_429" {
		t.Fatalf("code = %s, want HTTP_429", code)
	}

	st := o.Snapshot()
	if st.Error == nil || *st.Error != "rate limited" {
		t.Fatalf("state error = %v, want rate limited", st.Error)
	}
	if len(st.Images) != 0 {
		t.Fatalf("images should be empty, got %v", st.Images)
	}
	if st.Loading {
		t.Fatalf("loading should be false")
	}
}

type stubGenerator struct {
	calls atomic.Int32
	fn    func(ctx context.Context, req generation.Request) (*generation.Response, error)
}

func (s *stubGenerator) Generate(ctx context.Context, req generation.Request) (*generation.Response, error) {
	s.calls.Add(1)
	return s.fn(ctx, req)
}

func TestGenerateRejectsInvalidRequestWithoutCalling(t *testing.T) {
	gen := &stubGenerator{fn: func(context.Context, generation.Request) (*generation.Response, error) {
		t.Fatal("generator must not be called")
		return nil, nil
	}}
	o := New(gen)

	for name, req := range map[string]generation.Request{
		"empty description": generation.NewRequest("   "),
		"unknown category": func() generation.Request {
			r := generation.NewRequest("A red ceramic mug")
			r.Category = "spaceships"
			return r
		}(),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := o.Generate(context.Background(), req)
			if !errors.Is(err, generation.ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			st := o.Snapshot()
			if st.Error == nil || st.Loading {
				t.Fatalf("unexpected state %+v", st)
			}
		})
	}
	if n := gen.calls.Load(); n != 0 {
		t.Fatalf("generator called %d times", n)
	}
}

func TestGenerateClearsPreviousErrorAndImages(t *testing.T) {
	fail := true
	var seen []State
	var mu sync.Mutex

	gen := &stubGenerator{fn: func(context.Context, generation.Request) (*generation.Response, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return &generation.Response{Success: true, Images: imageurl.Paths("/generated/x.png")}, nil
	}}
	o := New(gen, WithBaseURL("http://localhost:3000/api"), WithObserver(func(s State) {
		mu.Lock()
		seen = append(seen, s)
		mu.Unlock()
	}))

	if _, err := o.Generate(context.Background(), mugRequest()); err == nil {
		t.Fatal("expected failure")
	}
	if st := o.Snapshot(); st.Error == nil || *st.Error != "boom" {
		t.Fatalf("error = %v, want boom", st.Error)
	}

	fail = false
	mu.Lock()
	seen = nil
	mu.Unlock()

	if _, err := o.Generate(context.Background(), mugRequest()); err != nil {
		t.Fatalf("generate: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(seen))
	}
	if !seen[0].Loading || seen[0].Error != nil || len(seen[0].Images) != 0 {
		t.Fatalf("start notification should clear error and images: %+v", seen[0])
	}
	last := seen[1]
	if last.Loading || last.Error != nil {
		t.Fatalf("final notification = %+v", last)
	}
	if len(last.Images) != 1 || last.Images[0] != "http://localhost:3000/generated/x.png" {
		t.Fatalf("images = %v", last.Images)
	}
}

func TestGenerateUnsuccessfulResponseLeavesGalleryEmpty(t *testing.T) {
	gen := &stubGenerator{fn: func(context.Context, generation.Request) (*generation.Response, error) {
		return &generation.Response{Success: false, Images: imageurl.Paths("/generated/x.png")}, nil
	}}
	o := New(gen)

	res, err := o.Generate(context.Background(), mugRequest())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(res.Images) != 0 {
		t.Fatalf("result images = %v", res.Images)
	}
	st := o.Snapshot()
	if len(st.Images) != 0 || st.Error != nil || st.Loading {
		t.Fatalf("state = %+v", st)
	}
}

func TestLoadingStaysTrueWhileAnotherGenerationRuns(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)

	gen := &stubGenerator{fn: func(ctx context.Context, req generation.Request) (*generation.Response, error) {
		started <- struct{}{}
		if req.Description == "slow mug" {
			<-release
		}
		return &generation.Response{Success: true, Images: imageurl.Paths("/generated/" + req.Description + ".png")}, nil
	}}
	o := New(gen, WithQueue(queue.New(2)))

	slow := mugRequest()
	slow.Description = "slow mug"
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.Generate(context.Background(), slow)
	}()
	<-started

	if _, err := o.Generate(context.Background(), mugRequest()); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !o.Snapshot().Loading {
		t.Fatal("loading should stay true while the slow generation is in flight")
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("slow generation did not finish")
	}
	if o.Snapshot().Loading {
		t.Fatal("loading should be false once nothing is in flight")
	}
}

func TestDismissError(t *testing.T) {
	gen := &stubGenerator{fn: func(context.Context, generation.Request) (*generation.Response, error) {
		return nil, errors.New("boom")
	}}
	o := New(gen)
	_, _ = o.Generate(context.Background(), mugRequest())

	if o.Snapshot().Error == nil {
		t.Fatal("expected an error to dismiss")
	}
	o.DismissError()
	if st := o.Snapshot(); st.Error != nil {
		t.Fatalf("error after dismiss = %q", *st.Error)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	gen := &stubGenerator{fn: func(context.Context, generation.Request) (*generation.Response, error) {
		return &generation.Response{Success: true, Images: imageurl.Paths("/generated/x.png")}, nil
	}}
	o := New(gen)
	_, _ = o.Generate(context.Background(), mugRequest())

	snap := o.Snapshot()
	snap.Images[0] = "mutated"
	if o.Snapshot().Images[0] == "mutated" {
		t.Fatal("snapshot shares its slice with the orchestrator")
	}
}

func TestGenerateCancelledWhileQueued(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 2)
	gen := &stubGenerator{fn: func(ctx context.Context, req generation.Request) (*generation.Response, error) {
		started <- struct{}{}
		if req.Description == "slow mug" {
			<-release
		}
		return &generation.Response{Success: true, Images: imageurl.Paths("/generated/x.png")}, nil
	}}
	o := New(gen, WithQueue(queue.New(1)))

	slow := mugRequest()
	slow.Description = "slow mug"
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = o.Generate(context.Background(), slow)
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := o.Generate(ctx, mugRequest())

	if !errors.Is(err, generation.ErrUnknown) {
		t.Fatalf("expected UNKNOWN_ERROR, got %v", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("cause should stay reachable, got %v", err)
	}
	st := o.Snapshot()
	if st.Error == nil || *st.Error != catalog.TextErrorGeneric {
		t.Fatalf("state error = %v, want the generic message", st.Error)
	}
	if !st.Loading {
		t.Fatal("loading should stay true while the slow generation runs")
	}

	close(release)
	<-done
}
