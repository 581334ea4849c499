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
	"time"

	"storefront/globals"

	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"
)

// IdempotencyTTL is how long a replayable response is kept.
const IdempotencyTTL = 24 * time.Hour

var ErrIdempotencyNotFound = errors.New("idempotency record not found")

type IdempotencyRecord struct {
	Key         string          `json:"key"`
	Method      string          `json:"method"`
	Path        string          `json:"path"`
	StoreID     string          `json:"storeId"`
	RequestHash string          `json:"requestHash"`
	Status      int             `json:"status,omitempty"`
	Body        json.RawMessage `json:"body,omitempty"`
	Done        bool            `json:"done"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// IdempotencyStore persists records. Reserve returns false when the key already exists.
type IdempotencyStore interface {
	Reserve(ctx context.Context, rec IdempotencyRecord, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (IdempotencyRecord, error)
	Complete(ctx context.Context, rec IdempotencyRecord, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

// fingerprint identifies what a key was first used for. A reused key must match it.
func fingerprint(rec IdempotencyRecord, body []byte) string {
	sum := sha256.New()
	for _, part := range []string{rec.Method, rec.Path, rec.StoreID} {
		sum.Write([]byte(part))
		sum.Write([]byte{0})
	}
	sum.Write(body)
	return hex.EncodeToString(sum.Sum(nil))
}

// recorder tees the response to the client and keeps a copy for replay.
type recorder struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (rw *recorder) WriteHeader(status int) {
	if rw.status != 0 {
		return
	}
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recorder) Write(b []byte) (int, error) {
	if rw.status == 0 {
		rw.WriteHeader(http.StatusOK)
	}
	rw.body.Write(b)
	return rw.ResponseWriter.Write(b)
}

// replayable reports whether the captured response may be stored for replay.
func (rw *recorder) replayable() bool {
	return rw.status >= 200 && rw.status < 300 && json.Valid(rw.body.Bytes())
}

// Idempotent replays the stored response when a client repeats a request with the
// same Idempotency-Key. Without the header the request passes through.
//   - first use: reserve the key, run the handler, store a 2xx response
//   - key reused with a different body: 409
//   - key reused after completion: replay
//   - key reused while the first request is still running: 409
//
// A non-2xx response releases the key so the same request can be retried.
func Idempotent(store IdempotencyStore, logger *zap.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			key := r.Header.Get(globals.IdempotencyKeyHeader)
			if key == "" {
				next(w, r, ps)
				return
			}

			bodyBytes, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
			if err != nil {
				http.Error(w, "failed to read request body", http.StatusBadRequest)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(bodyBytes))

			ctx := r.Context()
			rec := IdempotencyRecord{
				Key:       key,
				Method:    r.Method,
				Path:      r.URL.Path,
				StoreID:   StoreIDFromContext(ctx),
				CreatedAt: time.Now(),
			}
			rec.RequestHash = fingerprint(rec, bodyBytes)

			reserved, err := store.Reserve(ctx, rec, IdempotencyTTL)
			if err != nil {
				logger.Error("idempotency reserve failed", zap.String("key", key), zap.Error(err))
				http.Error(w, "idempotency lookup error", http.StatusInternalServerError)
				return
			}

			if reserved {
				rw := &recorder{ResponseWriter: w}
				next(rw, r, ps)

				if rw.replayable() {
					rec.Status = rw.status
					rec.Body = append(json.RawMessage(nil), rw.body.Bytes()...)
					rec.Done = true
					if err := store.Complete(context.WithoutCancel(ctx), rec, IdempotencyTTL); err != nil {
						logger.Warn("idempotency complete failed", zap.String("key", key), zap.Error(err))
					}
					return
				}
				if err := store.Release(context.WithoutCancel(ctx), key); err != nil {
					logger.Warn("idempotency release failed", zap.String("key", key), zap.Error(err))
				}
				return
			}

			existing, err := store.Get(ctx, key)
			if err != nil {
				logger.Error("idempotency get failed", zap.String("key", key), zap.Error(err))
				http.Error(w, "idempotency lookup error", http.StatusInternalServerError)
				return
			}

			if existing.RequestHash != rec.RequestHash {
				http.Error(w, "idempotency-key conflict", http.StatusConflict)
				return
			}
			if !existing.Done {
				http.Error(w, "request with this idempotency-key is in progress", http.StatusConflict)
				return
			}

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Idempotent-Replayed", "true")
			w.WriteHeader(existing.Status)
			w.Write(existing.Body)
		}
	}
}
