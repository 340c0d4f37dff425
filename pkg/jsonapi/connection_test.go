package jsonapi

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRequest(t *testing.T) {
	var capturedMethod string
	var capturedPath string
	var capturedPayload []byte
	var capturedContentType string
	var capturedIntegration string

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			capturedMethod = r.Method
			capturedPath = r.URL.Path
			capturedPayload, _ = io.ReadAll(r.Body)
			capturedContentType = r.Header.Get("Content-Type")
			capturedIntegration = r.Header.Get("Integration")

			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data": {"type": "students",
                                             "id": "1",
                                             "attributes": {"full_name": "John Doe"}}}`))
		},
	))
	defer server.Close()

	api := Connection{Headers: map[string]string{"Integration": "sugar"}}
	body, err := api.Request(
		context.Background(),
		"POST",
		server.URL+"/v1/students",
		map[string]string{"Content-Type": ContentType},
		[]byte(`{"data": {"type": "students"}}`),
	)
	if err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name     string
		value    string
		expected string
	}{
		{"method", capturedMethod, "POST"},
		{"path", capturedPath, "/v1/students"},
		{"payload", string(capturedPayload), `{"data": {"type": "students"}}`},
		{"content type", capturedContentType, ContentType},
		{"extra header", capturedIntegration, "sugar"},
	}
	for _, testCase := range testCases {
		if testCase.value != testCase.expected {
			t.Errorf("Request's %s was '%s', expected '%s'",
				testCase.name, testCase.value, testCase.expected)
		}
	}

	expected := `{"data": {"type": "students",
                           "id": "1",
                           "attributes": {"full_name": "John Doe"}}}`
	if !sameJSON(body, []byte(expected)) {
		t.Errorf("Got body %s, expected %s", body, expected)
	}
}

func TestRequestErrorResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"errors": [{"status": "404",
                                                "code": "not_found"}]}`))
		},
	))
	defer server.Close()

	api := Connection{}
	_, err := api.Request(context.Background(), "GET", server.URL+"/v1/x/1",
		nil, nil)

	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Got %v, expected *Error", err)
	}
	if e.StatusCode != 404 || e.Errors[0].Code != "not_found" {
		t.Errorf("Could not parse error response: %+v", e)
	}
}

func TestRequestRefusesRedirects(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/elsewhere", http.StatusFound)
		},
	))
	defer server.Close()

	api := Connection{}
	_, err := api.Request(context.Background(), "GET", server.URL+"/v1/x/1",
		nil, nil)

	var e *RedirectError
	if !errors.As(err, &e) {
		t.Fatalf("Got %v, expected *RedirectError", err)
	}
	if e.Location != server.URL+"/elsewhere" {
		t.Errorf("Got location '%s'", e.Location)
	}
	if api.Client.CheckRedirect != nil {
		t.Error("Request should not modify the shared client")
	}
}

func TestRequestCancelled(t *testing.T) {
	server := NewTestServer("v1")
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	api := Connection{}
	_, err := api.Request(ctx, "GET", server.URL+"/v1/users/1", nil, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Got %v, expected context.Canceled", err)
	}
}

func TestGetTestConnection(t *testing.T) {
	mockData := MockData{
		"/v1/users/1": &MockEndpoint{
			Requests: []MockRequest{
				{Response: MockResponse{Text: `{"data": {"type": "users"}}`}},
				{Response: MockResponse{
					Text:   `{"errors": [{"code": "gone"}]}`,
					Status: 410,
				}},
			},
		},
	}
	api := GetTestConnection(mockData)

	_, err := api.Request(context.Background(), "GET", "/v1/users/1",
		map[string]string{"Accept": ContentType}, nil)
	if err != nil {
		t.Error(err)
	}
	captured := mockData["/v1/users/1"].Requests[0].Request
	if captured.Method != "GET" || captured.Headers["Accept"] != ContentType {
		t.Errorf("Captured wrong arguments to Request: %+v", captured)
	}

	_, err = api.Request(context.Background(), "DELETE", "/v1/users/1",
		nil, nil)
	var e *Error
	if !errors.As(err, &e) || e.StatusCode != 410 {
		t.Errorf("Got %v, expected a 410 *Error", err)
	}

	_, err = api.Request(context.Background(), "GET", "/v1/users/1", nil, nil)
	if err == nil {
		t.Error("Exhausted endpoint should return an error")
	}
}
