// Package searchsimilar answers nearest-neighbor queries against a
// partitioned vector database stored in object storage.
//
// A Handler is invoked once per query vector. It opens the database located
// by the DATABASE_BUCKET_NAME and DATABASE_HEADER_KEY configuration, runs the
// query with K = 30 and NProbe = 1, and resolves the content_id attribute of
// every hit concurrently:
//
//	cfg, err := searchsimilar.LoadConfig(os.LookupEnv)
//	if err != nil { ... }
//
//	h := searchsimilar.New(cfg, opener, searchsimilar.WithLogger(searchsimilar.NewLambdaLogger(cfg.LogLevel)))
//	results, err := h.Handle(ctx, vector)
//
// Results keep the order of the hits (ascending squared distance). If a single
// hit cannot be resolved the whole call fails; partial result lists are never
// returned.
//
// # Errors
//
// Every failure matches exactly one of ErrConfigurationMissing, ErrMalformedKey,
// ErrIndexUnavailable, ErrQueryFailed, ErrAttributeMissing or
// ErrAttributeTypeMismatch through errors.Is. KindOf returns the matching kind
// name for reporting to the invoking runtime.
package searchsimilar
