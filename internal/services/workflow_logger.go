package services

import (
	"context"
	"log/slog"
	"time"

	"ledgervault/internal/models"
)

type correlationIDKey struct{}

// WithCorrelationID tags ctx so every event logged for one user action shares an id.
func WithCorrelationID(ctx context.Context, correlationID string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, correlationID)
}

type WorkflowLogger struct {
	logger *slog.Logger
}

func NewWorkflowLogger(logger *slog.Logger) WorkflowLoggerInterface {
	return &WorkflowLogger{
		logger: logger,
	}
}

func (wl *WorkflowLogger) LogStateChange(ctx context.Context, workflowID string, from, to State) {
	wl.logger.DebugContext(ctx, "transfer workflow state change",
		slog.String("event_type", "workflow_state_change"),
		slog.String("workflow_id", workflowID),
		slog.String("old_state", from.String()),
		slog.String("new_state", to.String()),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (wl *WorkflowLogger) LogTransferSubmitted(ctx context.Context, workflowID string, draft models.TransferDraft, amount, idempotencyKey string) {
	wl.logger.InfoContext(ctx, "transfer submitted",
		slog.String("event_type", "transfer_submitted"),
		slog.String("workflow_id", workflowID),
		slog.String("kind", string(draft.Kind)),
		slog.String("from_account_id", draft.SourceAccountID),
		slog.String("to_account_id", draft.DestinationAccountID),
		slog.String("amount", amount),
		slog.String("idempotency_key", idempotencyKey),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (wl *WorkflowLogger) LogTransferCompleted(ctx context.Context, workflowID, idempotencyKey string, durationMs int64) {
	wl.logger.InfoContext(ctx, "transfer completed",
		slog.String("event_type", "transfer_completed"),
		slog.String("workflow_id", workflowID),
		slog.String("idempotency_key", idempotencyKey),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (wl *WorkflowLogger) LogTransferFailed(ctx context.Context, workflowID, idempotencyKey, errorMsg string, durationMs int64) {
	wl.logger.WarnContext(ctx, "transfer failed",
		slog.String("event_type", "transfer_failed"),
		slog.String("workflow_id", workflowID),
		slog.String("idempotency_key", idempotencyKey),
		slog.String("error", errorMsg),
		slog.Int64("duration_ms", durationMs),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (wl *WorkflowLogger) LogResponseDropped(ctx context.Context, workflowID, operation string) {
	wl.logger.DebugContext(ctx, "response arrived after workflow was dismissed",
		slog.String("event_type", "workflow_response_dropped"),
		slog.String("workflow_id", workflowID),
		slog.String("operation", operation),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (wl *WorkflowLogger) LogRecipientResolved(ctx context.Context, workflowID, email string, candidates int) {
	wl.logger.InfoContext(ctx, "recipient resolved",
		slog.String("event_type", "recipient_resolved"),
		slog.String("workflow_id", workflowID),
		slog.String("email", email),
		slog.Int("candidate_accounts", candidates),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (wl *WorkflowLogger) LogBalanceFetchFailed(ctx context.Context, accountID, errorMsg string) {
	wl.logger.WarnContext(ctx, "balance fetch failed",
		slog.String("event_type", "balance_fetch_failed"),
		slog.String("account_id", accountID),
		slog.String("error", errorMsg),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (wl *WorkflowLogger) LogStaleBalanceDropped(ctx context.Context, accountID string) {
	wl.logger.DebugContext(ctx, "balance for unlisted account dropped",
		slog.String("event_type", "stale_balance_dropped"),
		slog.String("account_id", accountID),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func (wl *WorkflowLogger) LogSessionEvent(ctx context.Context, eventType, email string) {
	wl.logger.InfoContext(ctx, "session event",
		slog.String("event_type", eventType),
		slog.String("email", email),
		slog.Time("timestamp", time.Now()),
		slog.String("correlation_id", getCorrelationID(ctx)),
	)
}

func getCorrelationID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}

	if correlationID, ok := ctx.Value(correlationIDKey{}).(string); ok {
		return correlationID
	}

	return ""
}
