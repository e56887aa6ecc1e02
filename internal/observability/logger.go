// Package observability provides structured logging helpers for memory
// operations. Log fields never include record content, only identifiers.
package observability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const (
	// LogFieldRequestID is the field name for request ID.
	LogFieldRequestID = "request_id"
	// LogFieldUserID is the field name for user ID.
	LogFieldUserID = "user_id"
	// LogFieldOperation is the field name for the memory operation.
	LogFieldOperation = "operation"
	// LogFieldMemoryID is the field name for a memory record ID.
	LogFieldMemoryID = "memory_id"
	// LogFieldCollection is the field name for a vector collection name.
	LogFieldCollection = "collection"
	// LogFieldDuration is the field name for duration in milliseconds.
	LogFieldDuration = "duration_ms"
)

// OperationContext carries structured logging state for a single memory
// operation.
type OperationContext struct {
	RequestID string
	UserID    int32
	Operation string
	StartTime time.Time
	Logger    *slog.Logger
}

// NewOperationContext creates a new operation context with a generated
// request ID.
func NewOperationContext(logger *slog.Logger, operation string, userID int32) *OperationContext {
	return &OperationContext{
		RequestID: uuid.New().String(),
		UserID:    userID,
		Operation: operation,
		StartTime: time.Now(),
		Logger:    logger,
	}
}

// Info logs an info message.
func (o *OperationContext) Info(msg string, attrs ...slog.Attr) {
	o.Logger.LogAttrs(context.Background(), slog.LevelInfo, msg, o.withBase(attrs...)...)
}

// Warn logs a warning message.
func (o *OperationContext) Warn(msg string, attrs ...slog.Attr) {
	o.Logger.LogAttrs(context.Background(), slog.LevelWarn, msg, o.withBase(attrs...)...)
}

// Error logs an error message with the error.
func (o *OperationContext) Error(msg string, err error, attrs ...slog.Attr) {
	all := append(attrs, slog.String("error", err.Error()))
	o.Logger.LogAttrs(context.Background(), slog.LevelError, msg, o.withBase(all...)...)
}

// DurationMs returns the elapsed time in milliseconds.
func (o *OperationContext) DurationMs() int64 {
	return time.Since(o.StartTime).Milliseconds()
}

func (o *OperationContext) withBase(attrs ...slog.Attr) []slog.Attr {
	base := []slog.Attr{
		slog.String(LogFieldRequestID, o.RequestID),
		slog.Int64(LogFieldUserID, int64(o.UserID)),
		slog.String(LogFieldOperation, o.Operation),
	}
	return append(base, attrs...)
}
