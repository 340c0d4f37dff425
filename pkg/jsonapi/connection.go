package jsonapi

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/hashicorp/go-hclog"
)

// ContentType is the {json:api} media type, used for both 'Accept' and
// 'Content-Type'.
const ContentType = "application/vnd.api+json"

type Connection struct {
	Client  http.Client
	Headers map[string]string
	Logger  hclog.Logger

	// Used for testing
	RequestMethod func(method, url string, headers map[string]string,
		payload []byte) ([]byte, error)
}

/*
Request
Send a request and return the response body. Responses with a non-2xx status
are returned as an *Error carrying the parsed {json:api} error list. Every
other failure (network, redirects, unreadable bodies, cancelled contexts) is
returned as is.
*/
func (c *Connection) Request(
	ctx context.Context,
	method,
	url string,
	headers map[string]string,
	payload []byte,
) ([]byte, error) {
	logger := c.logger()
	logger.Debug("sending request", "method", method, "url", url)

	if c.RequestMethod != nil {
		return c.RequestMethod(method, url, headers, payload)
	}

	// Work on a copy so that a shared Connection is never written to
	client := c.Client
	if client.CheckRedirect == nil {
		client.CheckRedirect = func(
			req *http.Request, via []*http.Request,
		) error {
			return &RedirectError{Location: req.URL.String()}
		}
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	requestObj, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}

	for header, value := range c.Headers {
		requestObj.Header.Set(header, value)
	}
	for header, value := range headers {
		requestObj.Header.Set(header, value)
	}

	response, err := client.Do(requestObj)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	logger.Debug("received response",
		"method", method, "url", url, "status", response.StatusCode)

	errorResponse := parseErrorResponse(response.StatusCode, responseBody)
	if errorResponse != nil {
		return nil, errorResponse
	}

	return responseBody, nil
}

func (c *Connection) logger() hclog.Logger {
	if c.Logger == nil {
		return hclog.NewNullLogger()
	}
	return c.Logger.Named("jsonapi")
}
