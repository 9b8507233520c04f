package searchsimilar

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	attributeSource  AttributeSource
	maxConcurrency   int
}

// Option configures a Handler.
type Option func(*options)

// WithLogger sets the logger. If nil is passed, logging is disabled.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics collector.
// If nil is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithAttributeSource resolves content ids from src instead of the opened
// database.
func WithAttributeSource(src AttributeSource) Option {
	return func(o *options) {
		o.attributeSource = src
	}
}

// WithMaxConcurrency limits the number of attribute lookups in flight.
// If n <= 0, every hit is resolved in its own goroutine.
func WithMaxConcurrency(n int) Option {
	return func(o *options) {
		o.maxConcurrency = n
	}
}
