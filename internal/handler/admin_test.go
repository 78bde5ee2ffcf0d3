package handler

import (
    "fmt"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/labstack/echo/v4"
    "github.com/stretchr/testify/require"
)

// Grid validation must run before any repository access, so a handler
// with zero-value dependencies is enough to exercise the rejections.
func TestCreateSectionRejectsOversizedGrids(t *testing.T) {
    cases := []struct {
        name string
        rows uint32
        cols uint32
    }{
        {"just over the cap", 101, 100},
        {"product wraps uint32 to zero", 65536, 65536},
        {"product wraps uint32 to zero across halves", 2147483648, 2},
        {"zero rows", 0, 10},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            body := fmt.Sprintf(`{"name":"Floor","price_cents":5000,"row_count":%d,"col_count":%d}`, tc.rows, tc.cols)
            req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
            req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
            rec := httptest.NewRecorder()
            c := echo.New().NewContext(req, rec)
            c.SetParamNames("id")
            c.SetParamValues("7")

            h := &AdminHandler{}
            require.NoError(t, h.CreateSection(c))
            require.Equal(t, http.StatusBadRequest, rec.Code)
        })
    }
}
