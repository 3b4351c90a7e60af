package uploads

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// AssetStorage persists uploaded media bytes under a key.
type AssetStorage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// AssetStatusUpdater records the outcome of background persistence for a video.
type AssetStatusUpdater interface {
	MarkAssetReady(ctx context.Context, videoID string) error
	MarkAssetFailed(ctx context.Context, videoID string) error
}

// IngestorConfig controls the concurrency characteristics of the ingestor.
type IngestorConfig struct {
	QueueSize int
	Workers   int
}

// Ingestor asynchronously moves staged upload files into durable storage. The
// upload handler stages the multipart body in a temp file and returns
// immediately; workers push the bytes to the object store and flip the video's
// asset status.
type Ingestor struct {
	storage AssetStorage
	updater AssetStatusUpdater
	logger  *slog.Logger

	jobs   chan ingestJob
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type ingestJob struct {
	videoID  string
	key      string
	stagedAt string
}

var errIngestorClosed = errors.New("upload ingestor closed")

// NewIngestor constructs a background worker pool that persists staged uploads.
func NewIngestor(storage AssetStorage, updater AssetStatusUpdater, cfg IngestorConfig, logger *slog.Logger) *Ingestor {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 16
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	ctx, cancel := context.WithCancel(context.Background())

	ing := &Ingestor{
		storage: storage,
		updater: updater,
		logger:  logger,
		jobs:    make(chan ingestJob, cfg.QueueSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	ing.wg.Add(cfg.Workers)
	for i := 0; i < cfg.Workers; i++ {
		go ing.worker()
	}

	return ing
}

// Enqueue schedules persistence of the staged file at stagedPath under key.
// The ingestor owns the staged file from this point and removes it when done.
func (i *Ingestor) Enqueue(ctx context.Context, videoID, key, stagedPath string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	default:
	}

	job := ingestJob{videoID: videoID, key: key, stagedAt: stagedPath}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-i.ctx.Done():
		return errIngestorClosed
	case i.jobs <- job:
		return nil
	}
}

// Shutdown waits for the worker pool to drain outstanding jobs.
func (i *Ingestor) Shutdown(ctx context.Context) error {
	i.once.Do(func() {
		i.cancel()
		close(i.jobs)
	})

	done := make(chan struct{})
	go func() {
		i.wg.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}

func (i *Ingestor) worker() {
	defer i.wg.Done()

	for {
		select {
		case <-i.ctx.Done():
			return
		case job, ok := <-i.jobs:
			if !ok {
				return
			}
			i.handleJob(job)
		}
	}
}

func (i *Ingestor) handleJob(job ingestJob) {
	defer func() {
		if err := os.Remove(job.stagedAt); err != nil && !errors.Is(err, os.ErrNotExist) {
			i.logger.Warn("remove staged upload", "videoId", job.videoID, "path", job.stagedAt, "error", err)
		}
	}()

	if i.storage == nil || i.updater == nil {
		i.logger.Error("upload ingestor missing dependencies", "hasStorage", i.storage != nil, "hasUpdater", i.updater != nil)
		return
	}

	f, err := os.Open(job.stagedAt)
	if err != nil {
		i.logger.Error("open staged upload", "videoId", job.videoID, "path", job.stagedAt, "error", err)
		i.recordFailure(job.videoID)
		return
	}
	defer f.Close()

	saveCtx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	location, err := i.storage.Save(saveCtx, job.key, f)
	if err != nil {
		i.logger.Error("persist upload", "videoId", job.videoID, "key", job.key, "error", err)
		i.recordFailure(job.videoID)
		return
	}

	if err := i.recordSuccess(job.videoID); err != nil {
		i.logger.Error("mark asset ready", "videoId", job.videoID, "error", err)
		i.recordFailure(job.videoID)
		return
	}

	i.logger.Info("upload persisted", "videoId", job.videoID, "location", location)
}

func (i *Ingestor) recordFailure(videoID string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := i.updater.MarkAssetFailed(ctx, videoID); err != nil {
		i.logger.Error("record asset failure", "videoId", videoID, "error", err)
	}
}

func (i *Ingestor) recordSuccess(videoID string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return i.updater.MarkAssetReady(ctx, videoID)
}
