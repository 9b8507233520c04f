package searchsimilar

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/searchsimilar/index"
)

// Handler answers query vectors against the configured database.
//
// Handler holds no per-query state; Handle may be called concurrently.
type Handler struct {
	cfg    Config
	opener IndexOpener
	opts   options
}

// New creates a Handler. cfg is validated on every Handle call, so a Handler
// built from an incomplete Config fails with ErrConfigurationMissing before
// the opener is used.
func New(cfg Config, opener IndexOpener, optFns ...Option) *Handler {
	opts := options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Handler{cfg: cfg, opener: opener, opts: opts}
}

// Handle opens the database, queries the K nearest neighbors of vector in
// NProbe partitions and resolves the content id of every hit concurrently.
//
// Results are in hit order. If any step fails, Handle returns no results.
func (h *Handler) Handle(ctx context.Context, vector []float32) ([]Result, error) {
	if err := h.cfg.Validate(); err != nil {
		h.opts.logger.ErrorContext(ctx, "invalid configuration", "error", err)
		return nil, err
	}

	basePath, headerFile, err := SplitHeaderKey(h.cfg.HeaderKey)
	if err != nil {
		h.opts.logger.ErrorContext(ctx, "invalid configuration", "error", err)
		return nil, err
	}

	logger := h.opts.logger.WithDatabase(h.cfg.BucketName, h.cfg.HeaderKey)

	start := time.Now()
	idx, err := h.opener.Open(ctx, h.cfg.BucketName, basePath, headerFile)
	h.opts.metricsCollector.RecordOpen(time.Since(start), err)
	logger.LogOpen(ctx, basePath, headerFile, time.Since(start), err)
	if err != nil {
		return nil, stageError(ErrIndexUnavailable, err, "open %s/%s", h.cfg.BucketName, h.cfg.HeaderKey)
	}
	defer func() {
		if cerr := idx.Close(); cerr != nil {
			logger.WarnContext(ctx, "close failed", "error", cerr)
		}
	}()

	start = time.Now()
	hits, err := idx.Query(ctx, vector, K, NProbe)
	h.opts.metricsCollector.RecordQuery(len(hits), time.Since(start), err)
	logger.LogQuery(ctx, K, NProbe, len(hits), time.Since(start), err)
	if err != nil {
		return nil, stageError(ErrQueryFailed, err, "query k=%d nprobe=%d", K, NProbe)
	}

	src := h.opts.attributeSource
	if src == nil {
		src = idx
	}

	start = time.Now()
	results, err := h.resolve(ctx, src, hits)
	h.opts.metricsCollector.RecordResolve(len(hits), time.Since(start), err)
	logger.LogResolve(ctx, ContentIDAttribute, len(hits), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "query answered", "results", len(results))
	return results, nil
}

// resolve looks up the content id of every hit concurrently. results[i]
// always belongs to hits[i]; the first failure cancels the remaining lookups.
func (h *Handler) resolve(ctx context.Context, src AttributeSource, hits []index.Hit) ([]Result, error) {
	results := make([]Result, len(hits))

	g, gctx := errgroup.WithContext(ctx)
	if h.opts.maxConcurrency > 0 {
		g.SetLimit(h.opts.maxConcurrency)
	}

	for i, hit := range hits {
		g.Go(func() error {
			id, err := resolveContentID(gctx, src, hit)
			if err != nil {
				return err
			}
			results[i] = Result{ID: id, Distance: hit.SquaredDistance}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func resolveContentID(ctx context.Context, src AttributeSource, hit index.Hit) (string, error) {
	v, ok, err := src.GetAttribute(ctx, hit, ContentIDAttribute)
	if err != nil {
		if errors.Is(err, ErrAttributeMissing) || errors.Is(err, ErrAttributeTypeMismatch) {
			return "", err
		}
		return "", stageError(ErrQueryFailed, err, "get %s of vector %d", ContentIDAttribute, hit.VectorID)
	}
	if !ok || v == nil {
		return "", &ErrUnresolvedAttribute{
			Name:     ContentIDAttribute,
			VectorID: hit.VectorID,
			Actual:   index.AttributeAbsent,
			Kind:     ErrAttributeMissing,
		}
	}

	if s, ok := v.(index.StringValue); ok {
		return string(s), nil
	}
	return "", &ErrUnresolvedAttribute{
		Name:     ContentIDAttribute,
		VectorID: hit.VectorID,
		Actual:   v.Type(),
		Kind:     ErrAttributeTypeMismatch,
	}
}
