package middleware

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/IL272/Wilddict/internal/config"
)

// captureWriter captures response body/status while forwarding to the client.
type captureWriter struct {
	http.ResponseWriter
	status int
	buf    bytes.Buffer
	size   int64
	limit  int64
}

func (cw *captureWriter) WriteHeader(code int) { cw.status = code; cw.ResponseWriter.WriteHeader(code) }

func (cw *captureWriter) Write(b []byte) (int, error) {
	if cw.limit <= 0 {
		cw.buf.Write(b)
	} else if remain := cw.limit - cw.size; remain > 0 {
		if int64(len(b)) <= remain {
			cw.buf.Write(b)
		} else {
			cw.buf.Write(b[:remain])
		}
	}
	cw.size += int64(len(b))
	return cw.ResponseWriter.Write(b)
}

// ScopedCache caches successful responses in Redis under the principal that
// requested them.  A cached response is only ever served to the same
// principal, and InvalidateScope drops all of one principal's entries.
//
// Each scope carries a generation number that is part of every entry key.
// A request reads the generation before the handler runs and stores under
// it, so a response computed before an invalidation lands under a
// generation that is never read again.
type ScopedCache struct {
	cfg config.CacheConfig
	rdb *redis.Client
	log *zap.Logger
}

// NewScopedCache returns a cache backed by rdb.  A nil rdb or a disabled
// config yields a cache that passes every request through.
func NewScopedCache(cfg config.CacheConfig, rdb *redis.Client, log *zap.Logger) *ScopedCache {
	if cfg.TTL <= 0 {
		cfg.TTL = 30 * time.Second
	}
	return &ScopedCache{cfg: cfg, rdb: rdb, log: log}
}

func (sc *ScopedCache) enabled() bool { return sc != nil && sc.cfg.Enabled && sc.rdb != nil }

// scopePrefix is the key prefix shared by all keys of one principal.
func (sc *ScopedCache) scopePrefix(scope string) string {
	return sc.cfg.Prefix + ":p:" + scope + ":"
}

// genKey holds the scope's current generation.
func (sc *ScopedCache) genKey(scope string) string { return sc.scopePrefix(scope) + "gen" }

// generation returns the scope's current generation; 0 when none was set.
func (sc *ScopedCache) generation(ctx context.Context, scope string) (int64, error) {
	gen, err := sc.rdb.Get(ctx, sc.genKey(scope)).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return gen, err
}

// keyFor builds the cache key of a request.  Scope and generation stay in
// clear text; method, route and query are hashed.
func (sc *ScopedCache) keyFor(scope string, gen int64, c echo.Context) string {
	r := c.Request()
	tail := strings.Join([]string{"method", r.Method, "route", c.Path(), "q", r.URL.RawQuery}, ":")
	sum := sha1.Sum([]byte(tail))
	return fmt.Sprintf("%sv%d:%x", sc.scopePrefix(scope), gen, sum[:])
}

// InvalidateScope bumps the generation of ownerID and deletes the entries
// stored so far.
func (sc *ScopedCache) InvalidateScope(ctx context.Context, ownerID uint64) error {
	if !sc.enabled() {
		return nil
	}
	scope := strconv.FormatUint(ownerID, 10)
	if err := sc.rdb.Incr(ctx, sc.genKey(scope)).Err(); err != nil {
		return fmt.Errorf("bump generation: %w", err)
	}

	match := sc.scopePrefix(scope) + "v*"
	iter := sc.rdb.Scan(ctx, 0, match, 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("scan %s: %w", match, err)
	}
	if len(keys) == 0 {
		return nil
	}
	return sc.rdb.Del(ctx, keys...).Err()
}

// encodePayload packs: [4 bytes status][4 bytes headerLen][headerJSON][body]
func encodePayload(status int, header http.Header, body []byte) ([]byte, error) {
	hdrJSON, err := json.Marshal(header)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 8+len(hdrJSON)+len(body))
	binary.BigEndian.PutUint32(out[0:4], uint32(status))
	binary.BigEndian.PutUint32(out[4:8], uint32(len(hdrJSON)))
	copy(out[8:8+len(hdrJSON)], hdrJSON)
	copy(out[8+len(hdrJSON):], body)
	return out, nil
}

func decodePayload(bs []byte) (status int, header http.Header, body []byte, ok bool) {
	if len(bs) < 8 {
		return 0, nil, nil, false
	}
	status = int(binary.BigEndian.Uint32(bs[0:4]))
	hlen := int(binary.BigEndian.Uint32(bs[4:8]))
	if hlen < 0 || 8+hlen > len(bs) {
		return 0, nil, nil, false
	}
	hdr := make(http.Header)
	if hlen > 0 {
		if err := json.Unmarshal(bs[8:8+hlen], &hdr); err != nil {
			return 0, nil, nil, false
		}
	}
	return status, hdr, bs[8+hlen:], true
}

// Middleware serves cached responses and stores fresh 200s.  It must run
// after Authenticate; anonymous requests bypass the cache.  Responses larger
// than MaxBodyBytes are not stored.
func (sc *ScopedCache) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !sc.enabled() || !sc.cfg.Caches(c.Request().Method) {
				return next(c)
			}
			scope := principalScope(c)
			if scope == "" {
				return next(c)
			}

			ctx := c.Request().Context()
			gen, err := sc.generation(ctx, scope)
			if err != nil {
				sc.log.Warn("cache generation read failed", zap.String("scope", scope), zap.Error(err))
				return next(c)
			}
			key := sc.keyFor(scope, gen, c)

			if bs, err := sc.rdb.Get(ctx, key).Bytes(); err == nil {
				if status, hdr, body, ok := decodePayload(bs); ok {
					for k, vals := range hdr {
						if strings.EqualFold(k, echo.HeaderContentLength) {
							continue
						}
						for _, v := range vals {
							c.Response().Header().Add(k, v)
						}
					}
					c.Response().Header().Set("X-Cache", "HIT")
					c.Response().WriteHeader(status)
					_, _ = c.Response().Write(body)
					return nil
				}
			} else if err != redis.Nil {
				sc.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
			}

			maxBody := int64(sc.cfg.MaxBodyBytes)
			cw := &captureWriter{ResponseWriter: c.Response().Writer, status: http.StatusOK, limit: maxBody}
			c.Response().Writer = cw
			c.Response().Header().Set("X-Cache", "MISS")

			if err := next(c); err != nil {
				return err
			}
			if cw.status != http.StatusOK || (maxBody > 0 && cw.size > maxBody) {
				return nil
			}

			hdr := c.Response().Header().Clone()
			hdr.Del("X-Cache")
			payload, err := encodePayload(cw.status, hdr, cw.buf.Bytes())
			if err != nil {
				return nil
			}
			// the request context may already be done once the body is written
			if err := sc.rdb.Set(context.WithoutCancel(ctx), key, payload, sc.cfg.TTL).Err(); err != nil {
				sc.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
			return nil
		}
	}
}
