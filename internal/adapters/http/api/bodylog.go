package api

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/okian/feint/pkg/logger"
	"github.com/okian/feint/pkg/metrics"
)

// Body formats recorded in logs and metrics.
const (
	bodyFormatJSON = "json"
	bodyFormatForm = "form"
	bodyFormatRaw  = "raw"
)

// rawSnippetLimit bounds how much of an unclassifiable body makes it into a
// log line.
const rawSnippetLimit = 256

// logPostBody logs an inbound POST body for diagnostics. Valid JSON is
// logged structured; form-encoded content is logged as parsed pairs;
// anything else is logged as a raw snippet. Classification failures fall
// through to the next format and never surface to the caller.
func (s *Server) logPostBody(ctx context.Context, contentType string, body []byte, fields []logger.Field) {
	if len(body) == 0 {
		return
	}

	var parsed any
	if err := json.Unmarshal(body, &parsed); err == nil {
		metrics.RecordBodyLogged(bodyFormatJSON)
		s.log.Info(ctx, "POST JSON data",
			append(fields, logger.Any("json", parsed))...)
		return
	}

	if isFormContent(contentType) {
		if form, err := url.ParseQuery(string(body)); err == nil {
			metrics.RecordBodyLogged(bodyFormatForm)
			s.log.Info(ctx, "POST form data",
				append(fields, logger.Any("form", form))...)
			return
		}
	}

	metrics.RecordBodyLogged(bodyFormatRaw)
	s.log.Info(ctx, "POST raw data",
		append(fields,
			logger.Int("bytes", len(body)),
			logger.String("snippet", rawSnippet(body)),
		)...)
}

func isFormContent(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(contentType), "application/x-www-form-urlencoded")
}

// rawSnippet returns a short, printable preview of an arbitrary byte body.
func rawSnippet(body []byte) string {
	if len(body) > rawSnippetLimit {
		body = body[:rawSnippetLimit]
	}
	if utf8.Valid(body) {
		return string(body)
	}
	return strings.ToValidUTF8(string(body), "�")
}
