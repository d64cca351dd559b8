package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/angelmondragon/mixbar-backend/api/responses"
	"github.com/angelmondragon/mixbar-backend/api/validators"
	pkgerrors "github.com/angelmondragon/mixbar-backend/pkg/errors"
	"github.com/angelmondragon/mixbar-backend/pkg/logger"
	pkgredis "github.com/angelmondragon/mixbar-backend/pkg/redis"
)

const (
	HeaderIdempotencyKey    = "Idempotency-Key"
	HeaderIdempotentReplay  = "Idempotent-Replay"
	defaultIdempotencyTTL   = 24 * time.Hour
	reservationTTL          = time.Minute
	maxIdempotencyKeyLength = 128
)

// Mutations a shopper can double-tap. Quantity updates and deletes are
// naturally idempotent and are not listed.
var idempotentRoutes = map[string]bool{
	http.MethodPost + " /api/v1/cart/items":   true,
	http.MethodPost + " /api/v1/cart/promo":   true,
	http.MethodPost + " /api/v1/cart/abandon": true,
}

func guarded(method, path string) bool {
	return idempotentRoutes[method+" "+strings.TrimSuffix(path, "/")]
}

type recordState string

const (
	statePending  recordState = "pending"
	stateComplete recordState = "complete"
)

// idempotencyRecord is what sits under the key: first a pending reservation,
// then the captured response. Body is base64 via encoding/json.
type idempotencyRecord struct {
	State       recordState `json:"state"`
	RequestHash string      `json:"request_hash"`
	Status      int         `json:"status,omitempty"`
	ContentType string      `json:"content_type,omitempty"`
	Body        []byte      `json:"body,omitempty"`
}

type idempotencyGuard struct {
	store pkgredis.IdempotencyStore
	ttl   time.Duration
	logg  *logger.Logger
}

// Idempotency makes guarded cart mutations safe to retry. The first request
// with a given Idempotency-Key reserves it, runs, and stores its response;
// a retry with the same body gets that response back with
// Idempotent-Replay: true. A different body, or a retry while the first is
// still running, is rejected with IDEMPOTENCY_KEY_REUSED. 5xx outcomes drop
// the reservation so the client can try again. Without the header, or with
// a nil store, requests pass straight through.
func Idempotency(store pkgredis.IdempotencyStore, ttl time.Duration, logg *logger.Logger) func(http.Handler) http.Handler {
	if ttl <= 0 {
		ttl = defaultIdempotencyTTL
	}
	g := &idempotencyGuard{store: store, ttl: ttl, logg: logg}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientKey := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey))
			if g.store == nil || clientKey == "" || !guarded(r.Method, r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			if err := g.serve(w, r, next, clientKey); err != nil {
				responses.WriteError(r.Context(), g.logg, w, err)
			}
		})
	}
}

func (g *idempotencyGuard) serve(w http.ResponseWriter, r *http.Request, next http.Handler, clientKey string) error {
	ctx := r.Context()
	if len(clientKey) > maxIdempotencyKeyLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "Idempotency-Key is too long")
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, validators.MaxBodyBytes))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read request body")
	}
	r.Body = io.NopCloser(bytes.NewReader(body))

	hash := hashBody(body)
	key := g.store.IdempotencyKey(buildScope(r), clientKey)

	reserved, err := g.reserve(ctx, key, hash)
	if err != nil {
		return err
	}
	if !reserved {
		return g.replay(ctx, w, key, hash)
	}

	capture := &responseCapture{ResponseWriter: w}
	next.ServeHTTP(capture, r)
	g.settle(ctx, key, hash, capture)
	return nil
}

func (g *idempotencyGuard) reserve(ctx context.Context, key, hash string) (bool, error) {
	payload, err := json.Marshal(idempotencyRecord{State: statePending, RequestHash: hash})
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode reservation")
	}
	ok, err := g.store.SetNX(ctx, key, string(payload), reservationTTL)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve idempotency key")
	}
	return ok, nil
}

func (g *idempotencyGuard) replay(ctx context.Context, w http.ResponseWriter, key, hash string) error {
	inFlight := pkgerrors.New(pkgerrors.CodeIdempotency, "request with this idempotency key is still in progress")

	stored, err := g.store.Get(ctx, key)
	switch {
	case pkgredis.IsNil(err):
		// reservation expired between SetNX and Get
		return inFlight
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load idempotency record")
	}

	var record idempotencyRecord
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode idempotency record")
	}
	if record.RequestHash != hash {
		return pkgerrors.New(pkgerrors.CodeIdempotency, "idempotency key reused with different request body")
	}
	if record.State != stateComplete {
		return inFlight
	}

	if record.ContentType != "" {
		w.Header().Set("Content-Type", record.ContentType)
	}
	w.Header().Set(HeaderIdempotentReplay, "true")
	w.WriteHeader(record.Status)
	_, _ = w.Write(record.Body)
	return nil
}

// settle stores a completed response, or drops the reservation on 5xx.
func (g *idempotencyGuard) settle(ctx context.Context, key, hash string, capture *responseCapture) {
	status := capture.statusCode()
	if status >= http.StatusInternalServerError {
		g.logFailure(ctx, "release idempotency key", g.store.Del(ctx, key))
		return
	}
	payload, err := json.Marshal(idempotencyRecord{
		State:       stateComplete,
		RequestHash: hash,
		Status:      status,
		ContentType: capture.Header().Get("Content-Type"),
		Body:        capture.body.Bytes(),
	})
	if err != nil {
		g.logFailure(ctx, "encode idempotency record", err)
		return
	}
	g.logFailure(ctx, "persist idempotency record", g.store.Set(ctx, key, string(payload), g.ttl))
}

func (g *idempotencyGuard) logFailure(ctx context.Context, msg string, err error) {
	if err == nil || g.logg == nil || errors.Is(err, context.Canceled) {
		return
	}
	g.logg.Error(ctx, msg, err)
}

// buildScope keys records per cart owner, store and route so two shoppers
// reusing a key never collide.
func buildScope(r *http.Request) string {
	ctx := r.Context()
	return strings.Join([]string{
		identityScope(ctx),
		StoreIDFromContext(ctx).String(),
		r.Method,
		strings.TrimSuffix(r.URL.Path, "/"),
	}, "|")
}

func hashBody(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

type responseCapture struct {
	http.ResponseWriter
	body   bytes.Buffer
	status int
}

func (c *responseCapture) statusCode() int {
	if c.status == 0 {
		return http.StatusOK
	}
	return c.status
}

func (c *responseCapture) WriteHeader(code int) {
	if c.status == 0 {
		c.status = code
	}
	c.ResponseWriter.WriteHeader(code)
}

func (c *responseCapture) Write(b []byte) (int, error) {
	if c.status == 0 {
		c.status = http.StatusOK
	}
	c.body.Write(b)
	return c.ResponseWriter.Write(b)
}
