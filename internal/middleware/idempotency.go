package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const (
	idempotencyHeader = "Idempotency-Key"
	replayHeader      = "Idempotent-Replay"
	idempotencyPrefix = "fleet:idempotency:"
	idempotencyTTL    = 24 * time.Hour
	inFlightTTL       = 30 * time.Second
)

// storedResponse is what a replay sends back. Body is kept as raw bytes so
// empty (204) and non-JSON bodies survive the round trip.
type storedResponse struct {
	StatusCode int         `json:"status_code"`
	Body       []byte      `json:"body"`
	Headers    http.Header `json:"headers"`
}

// capturingWriter copies everything the handler writes.
type capturingWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// IdempotencyMiddleware replays the stored response when a POST, PUT or PATCH
// repeats an Idempotency-Key on the same route. A second request arriving
// while the first is still running gets 409. Responses with a 5xx status are
// not stored.
func IdempotencyMiddleware(redisClient *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
		default:
			c.Next()
			return
		}

		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		storeKey := replayKey(c, key)

		stored, err := loadResponse(ctx, redisClient, storeKey)
		if err != nil && !errors.Is(err, redis.Nil) {
			// Redis unavailable: serve the request without replay protection.
			log.Printf("idempotency lookup failed for %s: %v", storeKey, err)
			c.Next()
			return
		}
		if stored != nil {
			replay(c, stored)
			return
		}

		inFlightKey := storeKey + ":inflight"
		acquired, err := redisClient.SetNX(ctx, inFlightKey, "1", inFlightTTL).Result()
		if err == nil && !acquired {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "a request with this Idempotency-Key is still in progress"})
			return
		}
		if err == nil {
			defer redisClient.Del(context.WithoutCancel(ctx), inFlightKey)
		}

		w := &capturingWriter{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = w

		c.Next()

		if status := c.Writer.Status(); status >= 200 && status < 500 {
			resp := storedResponse{
				StatusCode: status,
				Body:       w.body.Bytes(),
				Headers:    replayHeaders(c),
			}
			if err := saveResponse(context.WithoutCancel(ctx), redisClient, storeKey, &resp); err != nil {
				log.Printf("failed to store idempotent response %s: %v", storeKey, err)
			}
		}
	}
}

// replayKey scopes a client key to the method and route template, so the same
// key sent to two endpoints does not collide.
func replayKey(c *gin.Context, key string) string {
	return idempotencyPrefix + c.Request.Method + ":" + c.FullPath() + ":" + key
}

func replay(c *gin.Context, stored *storedResponse) {
	contentType := stored.Headers.Get("Content-Type")
	for k, v := range stored.Headers {
		for _, val := range v {
			c.Header(k, val)
		}
	}
	c.Header(replayHeader, "true")
	if len(stored.Body) == 0 {
		c.AbortWithStatus(stored.StatusCode)
		return
	}
	if contentType == "" {
		contentType = "application/json"
	}
	c.Data(stored.StatusCode, contentType, stored.Body)
	c.Abort()
}

func loadResponse(ctx context.Context, client *redis.Client, key string) (*storedResponse, error) {
	data, err := client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, err
	}

	var stored storedResponse
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func saveResponse(ctx context.Context, client *redis.Client, key string, resp *storedResponse) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	return client.Set(ctx, key, data, idempotencyTTL).Err()
}

// replayHeaders keeps the headers a replay needs.
func replayHeaders(c *gin.Context) http.Header {
	headers := make(http.Header)
	for _, name := range []string{"Content-Type", "Content-Disposition", "Location"} {
		if v := c.Writer.Header().Get(name); v != "" {
			headers.Set(name, v)
		}
	}
	return headers
}
