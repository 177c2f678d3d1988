package services

import (
	"context"
	"errors"
	"sync"

	"productshot/config"
	"productshot/internal/gallery"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type GalleryJob struct {
	JobID    string
	ClientID string
	Images   []string
}

var (
	ErrGalleryShuttingDown = errors.New("service shutting down")
	ErrGalleryQueueFull    = errors.New("queue full")
)

// GalleryService saves galleries into the configured directory in the
// background and reports the outcome to the requesting websocket client.
type GalleryService struct {
	hub     *Hub
	baseDir string
	dl      *gallery.Downloader

	queue chan GalleryJob
	group errgroup.Group

	mu      sync.RWMutex
	closing bool
	ctx     context.Context
	log     *log.Logger
}

func NewGalleryService(ctx context.Context, hub *Hub, cfg config.GalleryConfig, dl *gallery.Downloader) *GalleryService {
	queueSize := cfg.QueueSize
	if queueSize <= 0 {
		queueSize = config.DefaultGalleryQueue
	}
	s := &GalleryService{
		hub:     hub,
		baseDir: cfg.Dir,
		dl:      dl,
		queue:   make(chan GalleryJob, queueSize),
		ctx:     ctx,
		log:     log.With("component", "gallery-jobs"),
	}
	s.group.SetLimit(1)
	return s
}

func (s *GalleryService) Run() {
	go func() {
		for {
			select {
			case <-s.ctx.Done():
				return
			case job, ok := <-s.queue:
				if !ok {
					return
				}
				s.group.Go(func() error {
					s.runJob(job)
					return nil
				})
			}
		}
	}()
}

// Enqueue schedules a save of images and returns the job id the websocket
// events will carry.
func (s *GalleryService) Enqueue(clientID string, images []string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closing {
		return "", ErrGalleryShuttingDown
	}

	job := GalleryJob{JobID: uuid.NewString(), ClientID: clientID, Images: images}
	select {
	case s.queue <- job:
		return job.JobID, nil
	default:
		return "", ErrGalleryQueueFull
	}
}

func (s *GalleryService) Shutdown() {
	s.mu.Lock()
	if !s.closing {
		s.closing = true
		close(s.queue)
	}
	s.mu.Unlock()
	_ = s.group.Wait()
}

// WS only emits saved/failed.
func (s *GalleryService) runJob(job GalleryJob) {
	if s.ctx.Err() != nil {
		return
	}

	saved, err := s.dl.DownloadAll(s.ctx, job.Images, s.baseDir)
	if err != nil {
		s.log.Error("gallery job failed", "jobId", job.JobID, "err", err)
		s.hub.SendTo(job.ClientID, WSEvent{
			Type:    EventGalleryFailed,
			JobID:   job.JobID,
			Message: err.Error(),
		})
		return
	}

	paths := make([]string, 0, len(saved))
	var failures []string
	for _, sv := range saved {
		if sv.Err != nil {
			failures = append(failures, sv.URL+": "+sv.Err.Error())
			continue
		}
		paths = append(paths, sv.Path)
	}

	if len(paths) == 0 {
		s.hub.SendTo(job.ClientID, WSEvent{
			Type:     EventGalleryFailed,
			JobID:    job.JobID,
			Message:  "no image could be saved",
			Failures: failures,
		})
		return
	}

	s.log.Info("gallery job finished", "jobId", job.JobID, "saved", len(paths), "failed", len(failures))
	s.hub.SendTo(job.ClientID, WSEvent{
		Type:     EventGallerySaved,
		JobID:    job.JobID,
		Paths:    paths,
		Failures: failures,
	})
}
