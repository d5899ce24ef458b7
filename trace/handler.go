package trace

import "context"

// Handler is the interface for trace backends.
// Implementations receive lifecycle events during orchestrator calls
// and can record or forward them as needed.
type Handler interface {
	// StartPipeline starts a pipeline span grouping the exchanges of one run.
	StartPipeline(ctx context.Context) context.Context
	// EndPipeline ends the pipeline span.
	EndPipeline(ctx context.Context, err error)

	// StartExchange starts an exchange span for the named operation.
	StartExchange(ctx context.Context, operation string) context.Context
	// EndExchange ends the exchange span with the given data.
	EndExchange(ctx context.Context, data *ExchangeData, err error)
}
