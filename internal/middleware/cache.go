package middleware

import (
    "bytes"
    "context"
    "crypto/sha1"
    "encoding/binary"
    "encoding/json"
    "fmt"
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"
    "github.com/redis/go-redis/v9"

    "github.com/iliyamo/live-event-ticketing/internal/config"
)

// browseRecorder tees the response body into a buffer while it streams
// to the client, capping what is kept at limit bytes.  A body that blows
// past the cap is served normally but never cached.
type browseRecorder struct {
    http.ResponseWriter
    status   int
    buf      bytes.Buffer
    written  int64
    limit    int64
    overflow bool
}

func (r *browseRecorder) WriteHeader(code int) {
    r.status = code
    r.ResponseWriter.WriteHeader(code)
}

func (r *browseRecorder) Write(b []byte) (int, error) {
    r.written += int64(len(b))
    if r.limit > 0 && r.written > r.limit {
        r.overflow = true
    } else {
        r.buf.Write(b)
    }
    return r.ResponseWriter.Write(b)
}

// browseCacheKey hashes method, matched route and raw query under the
// configured prefix.  Hashing keeps arbitrary query strings out of the
// Redis keyspace.
func browseCacheKey(prefix string, c echo.Context) string {
    r := c.Request()
    sum := sha1.Sum([]byte(r.Method + ":" + c.Path() + ":" + r.URL.RawQuery))
    return fmt.Sprintf("%s:%x", prefix, sum)
}

// cachedResponse is the stored representation: status, the JSON-encoded
// headers and the raw body, length-prefixed so one Redis value carries
// all three.
func encodeCached(status int, header http.Header, body []byte) ([]byte, error) {
    hdr, err := json.Marshal(header)
    if err != nil {
        return nil, err
    }
    out := make([]byte, 8+len(hdr)+len(body))
    binary.BigEndian.PutUint32(out[0:4], uint32(status))
    binary.BigEndian.PutUint32(out[4:8], uint32(len(hdr)))
    copy(out[8:], hdr)
    copy(out[8+len(hdr):], body)
    return out, nil
}

func decodeCached(bs []byte) (status int, header http.Header, body []byte, ok bool) {
    if len(bs) < 8 {
        return 0, nil, nil, false
    }
    status = int(binary.BigEndian.Uint32(bs[0:4]))
    hlen := int(binary.BigEndian.Uint32(bs[4:8]))
    if hlen < 0 || 8+hlen > len(bs) {
        return 0, nil, nil, false
    }
    header = make(http.Header)
    if hlen > 0 {
        if err := json.Unmarshal(bs[8:8+hlen], &header); err != nil {
            return 0, nil, nil, false
        }
    }
    return status, header, bs[8+hlen:], true
}

// NewBrowseCache caches successful GET responses of the public browse
// endpoints in Redis.  Headers are stored alongside the body so a hit is
// byte-identical to the original response.  Only 200s are cached; the
// middleware falls through transparently when disabled or when Redis is
// absent.
func NewBrowseCache(cfg config.CacheConfig, rdb *redis.Client) echo.MiddlewareFunc {
    if !cfg.Enabled || rdb == nil {
        return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
    }
    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            if c.Request().Method != http.MethodGet {
                return next(c)
            }
            ctx := c.Request().Context()
            key := browseCacheKey(cfg.Prefix, c)

            if bs, err := rdb.Get(ctx, key).Bytes(); err == nil {
                if status, hdr, body, ok := decodeCached(bs); ok {
                    for k, vals := range hdr {
                        if strings.EqualFold(k, "Content-Length") {
                            continue
                        }
                        for _, v := range vals {
                            c.Response().Header().Add(k, v)
                        }
                    }
                    c.Response().Header().Set("X-Cache", "HIT")
                    c.Response().WriteHeader(status)
                    _, werr := c.Response().Write(body)
                    return werr
                }
            }

            rec := &browseRecorder{
                ResponseWriter: c.Response().Writer,
                status:         http.StatusOK,
                limit:          int64(cfg.MaxBodyBytes),
            }
            c.Response().Writer = rec
            c.Response().Header().Set("X-Cache", "MISS")

            if err := next(c); err != nil {
                return err
            }
            if rec.status != http.StatusOK || rec.overflow {
                return nil
            }

            hdr := make(http.Header, len(c.Response().Header()))
            for k, vals := range c.Response().Header() {
                hdr[k] = append([]string(nil), vals...)
            }
            if payload, err := encodeCached(rec.status, hdr, rec.buf.Bytes()); err == nil {
                // Store off the request context so a client disconnect
                // does not abort the write.
                _ = rdb.SetEx(context.Background(), key, payload, cfg.TTL).Err()
            }
            return nil
        }
    }
}
