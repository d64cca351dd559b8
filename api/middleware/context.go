package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const (
	ctxCustomerID contextKey = "customer_id"
	ctxSessionID  contextKey = "session_id"
	ctxStoreID    contextKey = "store_id"
)

// CustomerIDFromContext returns the signed-in customer, if any.
func CustomerIDFromContext(ctx context.Context) *uuid.UUID {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxCustomerID).(uuid.UUID); ok {
		return &v
	}
	return nil
}

func SessionIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxSessionID).(string); ok {
		return v
	}
	return ""
}

func StoreIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxStoreID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// WithCustomerID injects the customer identifier into the context.
func WithCustomerID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxCustomerID, id)
}

// WithSessionID injects the anonymous session identifier into the context.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxSessionID, id)
}

// WithStoreID injects the store identifier into the context for downstream handlers.
func WithStoreID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, ctxStoreID, id)
}

// identityScope is a stable string naming the caller for key scoping.
func identityScope(ctx context.Context) string {
	if id := CustomerIDFromContext(ctx); id != nil {
		return "c:" + id.String()
	}
	if s := SessionIDFromContext(ctx); s != "" {
		return "s:" + s
	}
	return "anon"
}
