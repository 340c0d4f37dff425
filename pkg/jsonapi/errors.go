package jsonapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

/*
Error type for {json:api} errors.

You can inspect the contents of the error response with errors.As.
Example:

	    body, err := api.Request(ctx, "PATCH", url, headers, payload)
	    var e *jsonapi.Error
	    if errors.As(err, &e) {
			for _, errorItem := range e.Errors {
				if errorItem.Status == "404" {
					fmt.Println("Something was not found")
				}
			}
	    }
*/
type Error struct {
	StatusCode int         `json:"-"`
	Errors     []ErrorItem `json:"errors"`
}

type ErrorItem struct {
	Id     string                 `json:"id,omitempty"`
	Status string                 `json:"status,omitempty"`
	Code   string                 `json:"code,omitempty"`
	Title  string                 `json:"title,omitempty"`
	Detail string                 `json:"detail,omitempty"`
	Source *ErrorSource           `json:"source,omitempty"`
	Meta   map[string]interface{} `json:"meta,omitempty"`
	Links  map[string]interface{} `json:"links,omitempty"`
}

// UnmarshalJSON accepts 'status' as a string or a number, servers send both
func (item *ErrorItem) UnmarshalJSON(data []byte) error {
	type plainItem ErrorItem
	var raw struct {
		plainItem
		Status interface{} `json:"status"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*item = ErrorItem(raw.plainItem)
	switch status := raw.Status.(type) {
	case nil:
		item.Status = ""
	case string:
		item.Status = status
	case float64:
		item.Status = strconv.FormatFloat(status, 'f', -1, 64)
	default:
		return fmt.Errorf("invalid error status %v", raw.Status)
	}
	return nil
}

type ErrorSource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
}

func (e *Error) Error() string {
	// 400, required: username is required
	result := make([]string, 0, len(e.Errors)+1)
	result = append(result, fmt.Sprint(e.StatusCode))
	for _, errorItem := range e.Errors {
		result = append(result,
			fmt.Sprintf("%s: %s", errorItem.Code, errorItem.Detail))
	}
	return strings.Join(result, ", ")
}

func (item ErrorItem) String() string {
	message := item.Detail
	if message == "" {
		message = item.Title
	}
	if item.Source != nil && item.Source.Pointer != "" {
		message = fmt.Sprintf("%s (%s)", message, item.Source.Pointer)
	}
	if item.Status != "" {
		message = fmt.Sprintf("[%s] %s", item.Status, message)
	}
	return message
}

func parseErrorResponse(statusCode int, body []byte) *Error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	errorResponse := Error{StatusCode: statusCode}

	// Intentionally ignore parse errors
	_ = json.Unmarshal(body, &errorResponse)

	if len(errorResponse.Errors) == 0 {
		errorResponse.Errors = []ErrorItem{{
			Status: strconv.Itoa(statusCode),
			Title:  http.StatusText(statusCode),
		}}
	}

	return &errorResponse
}

type RedirectError struct {
	Location string
}

func (m *RedirectError) Error() string {
	return "jsonapi does not handle redirects. You can access the Location " +
		"header with " +
		"`var e *jsonapi.RedirectError; errors.As(err, &e); e.Location`"
}
