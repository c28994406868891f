package reddit

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	perr "subshift/internal/platform/errors"
)

type rateInfo struct {
	used      float64
	remaining float64
	reset     time.Duration
}

// parseRateHeaders reads the X-Ratelimit-* trio; Reddit sends floats like "598.0"
func parseRateHeaders(h http.Header) rateInfo {
	return rateInfo{
		used:      atof(h.Get("X-Ratelimit-Used")),
		remaining: atof(h.Get("X-Ratelimit-Remaining")),
		reset:     time.Duration(atof(h.Get("X-Ratelimit-Reset")) * float64(time.Second)),
	}
}

func atof(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// statusError maps a non-200 response onto a perr code and keeps a short body tail
func statusError(resp *http.Response, op string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	code := perr.CodeFromHTTPStatus(resp.StatusCode)
	// a 403 with an exhausted quota is throttling, not a private account
	if resp.StatusCode == http.StatusForbidden && resp.Header.Get("X-Ratelimit-Remaining") != "" &&
		atof(resp.Header.Get("X-Ratelimit-Remaining")) <= 0 {
		code = perr.ErrorCodeTooManyRequests
	}
	return perr.Newf(code, "reddit %s: status %d %s", op, resp.StatusCode, strings.TrimSpace(string(body)))
}

func drainAndClose(rc io.ReadCloser) error {
	_, _ = io.Copy(io.Discard, io.LimitReader(rc, 512))
	return rc.Close()
}
