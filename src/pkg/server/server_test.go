package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-captcha/src/pkg/captcha"
	echomw "chat-captcha/src/pkg/echo-middleware"
	"chat-captcha/src/pkg/ocr"
)

const testToken = "test-token"

type fakeReader struct {
	text string
	err  error
}

func (r fakeReader) Run(img image.Image) (ocr.Result, error) {
	if r.err != nil {
		return ocr.Result{}, r.err
	}
	return ocr.Result{Text: r.text}, nil
}

func encodedPNG(t *testing.T) string {
	t.Helper()
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	img.SetGray(2, 2, color.Gray{Y: 200})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func newTestServer(t *testing.T, reader captcha.Reader) http.Handler {
	t.Helper()
	t.Setenv(echomw.EnvBearerToken, testToken)
	solver := captcha.NewSolver(
		captcha.Config{FlushEvery: 5},
		ocr.DefaultValueConfig(),
		captcha.WithReader(reader),
		captcha.WithSink(ocr.NopSink{}),
	)
	return New(solver, 2, "256K")
}

func do(t *testing.T, h http.Handler, method, path, body string, authorized bool) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if authorized {
		req.Header.Set("Authorization", "Bearer "+testToken)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSolveReturnsText(t *testing.T) {
	h := newTestServer(t, fakeReader{text: "AbC12"})

	rec := do(t, h, http.MethodPost, "/v1/solve", fmt.Sprintf(`{"image":"data:image/png;base64,%s"}`, encodedPNG(t)), true)

	require.Equal(t, http.StatusOK, rec.Code)
	var response SolveResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
	assert.Equal(t, "AbC12", response.Text)
}

func TestSolveRequiresToken(t *testing.T) {
	h := newTestServer(t, fakeReader{text: "ABCD"})

	rec := do(t, h, http.MethodPost, "/v1/solve", fmt.Sprintf(`{"image":"%s"}`, encodedPNG(t)), false)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestSolveRejectsEmptyImage(t *testing.T) {
	h := newTestServer(t, fakeReader{text: "ABCD"})

	rec := do(t, h, http.MethodPost, "/v1/solve", `{"image":"  "}`, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSolveReportsFailureReason(t *testing.T) {
	tests := []struct {
		name   string
		reader fakeReader
		image  string
		reason string
	}{
		{name: "undecodable", reader: fakeReader{text: "ABCD"}, image: "!!!not-base64", reason: "decode failure"},
		{name: "segmentation", reader: fakeReader{err: fmt.Errorf("%w: 2 regions", ocr.ErrFormatMismatch)}, reason: "format mismatch"},
		{name: "invalid text", reader: fakeReader{text: "AB"}, reason: "validation failure"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newTestServer(t, tc.reader)
			payload := tc.image
			if payload == "" {
				payload = encodedPNG(t)
			}

			rec := do(t, h, http.MethodPost, "/v1/solve", fmt.Sprintf(`{"image":"%s"}`, payload), true)

			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			var response ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
			assert.Equal(t, tc.reason, response.Error)
		})
	}
}

func TestStatsCountsHits(t *testing.T) {
	h := newTestServer(t, fakeReader{text: "ABCD"})
	body := fmt.Sprintf(`{"image":"%s"}`, encodedPNG(t))

	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/v1/solve", body, true).Code)
	require.Equal(t, http.StatusOK, do(t, h, http.MethodPost, "/v1/solve", body, true).Code)

	rec := do(t, h, http.MethodGet, "/v1/stats", "", true)
	require.Equal(t, http.StatusOK, rec.Code)

	var stats captcha.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.Hits)
	assert.Equal(t, 1, stats.Misses)
	assert.Equal(t, 1, stats.Solved)
	assert.Equal(t, 1, stats.CacheSize)
}
