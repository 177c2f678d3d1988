// Package orchestrator owns the generation state a UI renders: whether a
// request is in flight, the current error and the current gallery.
package orchestrator

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"productshot/config"
	"productshot/internal/catalog"
	"productshot/internal/generation"
	"productshot/internal/imageurl"
	"productshot/internal/queue"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
)

type State struct {
	Loading   bool                 `json:"loading"`
	Error     *string              `json:"error"`
	Images    []string             `json:"images"`
	Metadata  *generation.Metadata `json:"metadata,omitempty"`
	UpdatedAt time.Time            `json:"updatedAt"`
}

func (s State) clone() State {
	out := s
	out.Images = slices.Clone(s.Images)
	if out.Images == nil {
		out.Images = []string{}
	}
	if s.Error != nil {
		msg := *s.Error
		out.Error = &msg
	}
	if s.Metadata != nil {
		md := *s.Metadata
		out.Metadata = &md
	}
	return out
}

// Result is what a single Generate call produced.
type Result struct {
	ID       string               `json:"id"`
	Images   []string             `json:"images"`
	Metadata *generation.Metadata `json:"metadata,omitempty"`
}

type Observer func(State)

type Orchestrator struct {
	gen       generation.Generator
	queue     *queue.Queue
	baseURL   string
	observers []Observer
	log       *log.Logger
	now       func() time.Time

	mu       sync.Mutex
	state    State
	inFlight int
}

type Option func(*Orchestrator)

// WithQueue runs every generation through q. Without it calls go straight
// to the generator.
func WithQueue(q *queue.Queue) Option {
	return func(o *Orchestrator) { o.queue = q }
}

// WithBaseURL sets the API base used to resolve relative image paths.
func WithBaseURL(base string) Option {
	return func(o *Orchestrator) { o.baseURL = base }
}

func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) {
		if fn != nil {
			o.observers = append(o.observers, fn)
		}
	}
}

func WithLogger(l *log.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.log = l
		}
	}
}

func New(gen generation.Generator, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gen:     gen,
		baseURL: config.DefaultBaseUrl,
		log:     log.With("component", "orchestrator"),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.state = State{Images: []string{}, UpdatedAt: o.now()}
	return o
}

// Snapshot returns a copy of the current state.
func (o *Orchestrator) Snapshot() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state.clone()
}

// Generate validates req, runs it through the queue and folds the outcome
// into the shared state. The returned error is the same one whose message
// ends up in State.Error.
func (o *Orchestrator) Generate(ctx context.Context, req generation.Request) (Result, error) {
	id := uuid.NewString()
	req = req.Normalize()

	if err := req.Validate(); err != nil {
		o.update(func(s *State) {
			msg := generation.Message(err)
			s.Error = &msg
			s.Images = []string{}
			s.Metadata = nil
		})
		o.log.Warn("generation rejected", "id", id, "err", err)
		return Result{ID: id}, err
	}

	o.update(func(s *State) {
		o.inFlight++
		s.Loading = true
		s.Error = nil
		s.Images = []string{}
		s.Metadata = nil
	})

	started := time.Now()
	o.log.Info("generation started", "id", id, "category", req.Category, "style", req.Style, "angle", req.Angle)

	resp, err := o.run(ctx, req)

	var result Result
	o.update(func(s *State) {
		o.inFlight--
		s.Loading = o.inFlight > 0

		if err != nil {
			msg := generation.Message(err)
			s.Error = &msg
			return
		}
		if resp != nil && resp.Success && len(resp.Images) > 0 {
			s.Images = imageurl.Normalize(o.baseURL, resp.Images)
			md := resp.Metadata
			s.Metadata = &md
			result = Result{ID: id, Images: slices.Clone(s.Images), Metadata: &md}
		}
	})

	if err != nil {
		o.log.Error("generation failed", "id", id, "code", generation.CodeOf(err), "err", err, "took", time.Since(started))
		return Result{ID: id}, err
	}
	if result.ID == "" {
		o.log.Warn("generation returned no images", "id", id, "success", resp != nil && resp.Success)
		return Result{ID: id, Images: []string{}}, nil
	}
	o.log.Info("generation finished", "id", id, "images", len(result.Images), "took", time.Since(started))
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, req generation.Request) (*generation.Response, error) {
	task := func() (*generation.Response, error) {
		return o.gen.Generate(ctx, req)
	}
	if o.queue == nil {
		return task()
	}
	resp, err := queue.Do(ctx, o.queue, task)
	var gerr *generation.Error
	if err != nil && !errors.As(err, &gerr) && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		// gave up while still waiting for a slot
		return nil, &generation.Error{
			Kind:    generation.KindUnknown,
			Message: catalog.TextErrorGeneric,
			Details: err,
		}
	}
	return resp, err
}

// DismissError clears the current error, if any.
func (o *Orchestrator) DismissError() {
	o.update(func(s *State) { s.Error = nil })
}

func (o *Orchestrator) update(fn func(*State)) {
	o.mu.Lock()
	fn(&o.state)
	o.state.UpdatedAt = o.now()
	snap := o.state.clone()
	observers := o.observers
	o.mu.Unlock()

	for _, obs := range observers {
		obs(snap)
	}
}
