// Package gateway adapts API Gateway proxy events onto the Fiber app so the
// same routing table serves both the long-running server and the Lambda runtime.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gofiber/fiber/v2"
)

// Handler routes proxy events through an in-process Fiber app.
type Handler struct {
	app *fiber.App
}

// NewHandler wraps a fully configured Fiber app.
func NewHandler(app *fiber.App) *Handler {
	return &Handler{app: app}
}

// Invoke translates one proxy event into an HTTP round trip against the app.
func (h *Handler) Invoke(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: fiber.StatusBadRequest,
				Headers:    map[string]string{"Content-Type": "application/json"},
				Body:       `{"error":"Invalid base64 request body"}`,
			}, nil
		}
		body = decoded
	}

	req := httptest.NewRequest(event.HTTPMethod, requestURL(event), bytes.NewReader(body))
	req = req.WithContext(ctx)
	for name, value := range event.Headers {
		req.Header.Set(name, value)
	}
	for name, values := range event.MultiValueHeaders {
		for _, value := range values {
			req.Header.Add(name, value)
		}
	}
	if event.RequestContext.Identity.SourceIP != "" {
		req.Header.Set("X-Forwarded-For", event.RequestContext.Identity.SourceIP)
	}

	resp, err := h.app.Test(req, -1)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("dispatching proxy event: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("reading proxy response: %w", err)
	}

	headers := make(map[string]string, len(resp.Header))
	for name, values := range resp.Header {
		headers[name] = strings.Join(values, ",")
	}

	out := events.APIGatewayProxyResponse{
		StatusCode: resp.StatusCode,
		Headers:    headers,
	}
	if isTextual(resp.Header.Get("Content-Type")) {
		out.Body = string(raw)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(raw)
		out.IsBase64Encoded = true
	}
	return out, nil
}

// requestURL rebuilds the request path with its query string. Both the
// single-value and multi-value query maps are honored; the multi-value map
// wins when a key appears in both.
func requestURL(event events.APIGatewayProxyRequest) string {
	query := url.Values{}
	for key, value := range event.QueryStringParameters {
		query.Set(key, value)
	}
	for key, values := range event.MultiValueQueryStringParameters {
		query.Del(key)
		for _, value := range values {
			query.Add(key, value)
		}
	}

	path := event.Path
	if path == "" {
		path = "/"
	}
	if encoded := query.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}

// isTextual reports whether a response body is safe to pass through as a
// string. Everything else (listing images) is base64-encoded for the wire.
func isTextual(contentType string) bool {
	mediaType := strings.TrimSpace(strings.Split(contentType, ";")[0])
	if strings.HasPrefix(mediaType, "text/") {
		return true
	}
	switch mediaType {
	case "application/json", "application/javascript", "application/xml", "":
		return true
	}
	return strings.HasSuffix(mediaType, "+json") || strings.HasSuffix(mediaType, "+xml")
}
