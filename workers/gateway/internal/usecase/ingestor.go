package usecase

import (
	"context"
	"io"
	"time"

	"github.com/harshkrt/FinAgent/shared/application/dto"
	"github.com/harshkrt/FinAgent/shared/application/ports"
	"github.com/harshkrt/FinAgent/shared/domain/filing"
	"github.com/harshkrt/FinAgent/workers/gateway/internal/domain"
)

// Fetcher retrieves a remote filing.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*domain.FetchedDocument, error)
}

// Ingestor stores a submitted filing and announces it on the processing
// queue.
type Ingestor struct {
	validator      *RequestValidator
	fetcher        Fetcher
	storage        ports.Storage
	queue          ports.Queue
	queueName      string
	publishTimeout time.Duration
	logger         ports.Logger
	metrics        ports.Metrics
}

func NewIngestor(
	fetcher Fetcher,
	storage ports.Storage,
	queue ports.Queue,
	queueName string,
	publishTimeout time.Duration,
	logger ports.Logger,
	metrics ports.Metrics,
) *Ingestor {
	if queueName == "" {
		queueName = filing.ProcessingQueue
	}
	return &Ingestor{
		validator:      NewRequestValidator(),
		fetcher:        fetcher,
		storage:        storage,
		queue:          queue,
		queueName:      queueName,
		publishTimeout: publishTimeout,
		logger:         logger,
		metrics:        metrics,
	}
}

// document is the payload handed to storage, whichever mode produced it.
type document struct {
	body        io.Reader
	filename    string
	contentType string
	size        int64
}

func (i *Ingestor) Ingest(ctx context.Context, req *dto.IngestRequest) (*dto.IngestResult, error) {
	start := time.Now()
	mode := "none"
	if req != nil {
		mode = req.Mode()
	}

	t := &tracker{
		stage:   domain.StageReceived,
		mode:    mode,
		metrics: i.metrics,
		logger:  i.logger.WithFields(map[string]interface{}{"mode": mode}),
	}
	if req != nil && req.RequestID != "" {
		t.logger = t.logger.WithFields(map[string]interface{}{"request_id": req.RequestID})
	}

	i.metrics.IncrementCounter("ingest.requests", map[string]string{"mode": mode})
	defer func() {
		i.metrics.RecordHistogram("ingest.duration", time.Since(start).Seconds(),
			map[string]string{"mode": mode, "outcome": string(t.stage)})
	}()

	if err := i.validator.Validate(req); err != nil {
		return nil, t.fail(err)
	}
	t.advance(domain.StageValidated)

	var doc document
	if req.HasUpload() {
		doc = document{
			body:        req.Upload.Reader,
			filename:    req.Upload.Filename,
			contentType: req.Upload.ContentType,
			size:        req.Upload.Size,
		}
		t.advance(domain.StageUploadAccepted)
	} else {
		fetched, err := i.fetcher.Fetch(ctx, req.SourceURL)
		if err != nil {
			return nil, t.fail(err)
		}
		if err := ctx.Err(); err != nil {
			return nil, t.fail(filing.NetworkFailure("request cancelled before storage", err))
		}
		doc = document{
			body:        fetched.Body,
			filename:    fetched.Filename,
			contentType: fetched.ContentType,
			size:        fetched.Size,
		}
		t.advance(domain.StageFetched)
	}

	key := filing.BuildObjectKey(req.CompanyName, req.ReportType, doc.filename)
	stored, err := i.storage.Put(ctx, key, doc.body, ports.ObjectMetadata{
		ContentType:   doc.contentType,
		ContentLength: doc.size,
		UserMetadata: map[string]string{
			"ingest-mode": mode,
			"request-id":  req.RequestID,
		},
	})
	if err != nil {
		return nil, t.fail(filing.StorageFailed("failed to store file", err))
	}
	if stored == "" {
		return nil, t.fail(filing.StorageFailed("storage returned an empty object key", nil))
	}
	t.advance(domain.StageStored, "s3_path", stored)

	result := &dto.IngestResult{ObjectKey: stored, Filename: doc.filename}

	if err := i.publish(ctx, stored); err != nil {
		i.metrics.IncrementCounter("ingest.publish_failed", nil)
		t.logger.Error("stored document was not enqueued", "s3_path", stored, "queue", i.queueName, "error", err)
	} else {
		result.Enqueued = true
		t.advance(domain.StageEnqueued, "queue", i.queueName)
	}

	t.advance(domain.StageDone)
	return result, nil
}

// publish outlives the caller's cancellation so a disconnect after storage
// still announces the object.
func (i *Ingestor) publish(ctx context.Context, key string) error {
	pubCtx := context.WithoutCancel(ctx)
	if i.publishTimeout > 0 {
		var cancel context.CancelFunc
		pubCtx, cancel = context.WithTimeout(pubCtx, i.publishTimeout)
		defer cancel()
	}

	body, err := filing.NewProcessingMessage(key).Encode()
	if err != nil {
		return filing.PublishFailed(err)
	}
	err = i.queue.Publish(pubCtx, &ports.QueueMessage{Target: i.queueName, Body: body})
	if err != nil {
		return filing.PublishFailed(err)
	}
	return nil
}

type tracker struct {
	stage   domain.Stage
	mode    string
	logger  ports.Logger
	metrics ports.Metrics
}

func (t *tracker) advance(next domain.Stage, fields ...interface{}) {
	if !t.stage.CanTransitionTo(next) {
		t.logger.Error("unexpected stage transition", "from", t.stage, "to", next)
	}
	t.stage = next
	t.metrics.IncrementCounter("ingest.stage", map[string]string{"stage": string(next), "mode": t.mode})
	t.logger.Info("ingest stage", append([]interface{}{"stage", string(next)}, fields...)...)
}

func (t *tracker) fail(err error) error {
	kind := string(filing.CodeOf(err))
	if kind == "" {
		kind = "unknown"
	}
	from := t.stage
	t.stage = domain.StageFailed
	t.metrics.IncrementCounter("ingest.failed", map[string]string{"kind": kind, "mode": t.mode})
	t.logger.Error("ingest failed", "stage", string(from), "kind", kind, "error", err)
	return err
}
