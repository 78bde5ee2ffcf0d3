package middleware

import (
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"

    "github.com/iliyamo/live-event-ticketing/internal/config"
)

func TestCachedResponseCodec(t *testing.T) {
    hdr := http.Header{}
    hdr.Set("Content-Type", echo.MIMEApplicationJSON)
    body := []byte(`{"events":[]}`)

    bs, err := encodeCached(http.StatusOK, hdr, body)
    require.NoError(t, err)

    status, gotHdr, gotBody, ok := decodeCached(bs)
    require.True(t, ok)
    require.Equal(t, http.StatusOK, status)
    require.Equal(t, echo.MIMEApplicationJSON, gotHdr.Get("Content-Type"))
    require.Equal(t, body, gotBody)

    // Truncated payloads are rejected rather than served half-decoded.
    _, _, _, ok = decodeCached(bs[:6])
    require.False(t, ok)
    _, _, _, ok = decodeCached(nil)
    require.False(t, ok)
}

func TestBrowseRecorderCapsCapturedBody(t *testing.T) {
    rec := &browseRecorder{ResponseWriter: httptest.NewRecorder(), status: http.StatusOK, limit: 8}
    _, err := rec.Write([]byte("12345"))
    require.NoError(t, err)
    require.False(t, rec.overflow)

    _, err = rec.Write([]byte("67890"))
    require.NoError(t, err)
    require.True(t, rec.overflow)
}

func TestBrowseCacheDisabledPassesThrough(t *testing.T) {
    mw := NewBrowseCache(config.CacheConfig{Enabled: false, TTL: time.Minute}, nil)

    req := httptest.NewRequest(http.MethodGet, "/v1/events", nil)
    res := httptest.NewRecorder()
    c := echo.New().NewContext(req, res)

    called := false
    err := mw(func(c echo.Context) error {
        called = true
        return c.JSON(http.StatusOK, echo.Map{"events": []string{}})
    })(c)
    require.NoError(t, err)
    require.True(t, called)
    require.Empty(t, res.Header().Get("X-Cache"))
}
