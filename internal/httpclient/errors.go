package httpclient

import (
	"strings"

	apperrors "github.com/agbs2k8/eostre/internal/errors"
	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// messageFields are probed in order for a human readable error message.
var messageFields = []string{"message", "error", "detail", "error_description", "result", "msg"}

// RequestFailed describes a non-success response. The message comes from the
// JSON body when one of the usual fields is present and falls back to the
// status line.
func RequestFailed(resp *resty.Response) *apperrors.RequestFailed {
	body := resp.Body()
	return &apperrors.RequestFailed{
		Status:  resp.StatusCode(),
		Message: errorMessage(body, resp.Status()),
		Body:    body,
	}
}

func errorMessage(body []byte, statusLine string) string {
	if gjson.ValidBytes(body) {
		parsed := gjson.ParseBytes(body)
		if parsed.IsObject() {
			for _, field := range messageFields {
				if v := parsed.Get(field); v.Exists() && v.Type == gjson.String && v.String() != "" {
					return v.String()
				}
			}
		}
	}
	return strings.TrimSpace(statusLine)
}
