package jsonapi

import (
	"errors"
	"testing"
)

func TestHandleSingleErrorResponse(t *testing.T) {
	body := []byte(`{"errors": [{"status": "400",
                                 "code": "required",
                                 "title": "Missing field",
                                 "detail": "username is required"}]}`)
	errorResponse := parseErrorResponse(400, body)
	if errorResponse == nil {
		t.Error("Expected error")
		t.FailNow()
	}
	if errorResponse.StatusCode != 400 {
		t.Errorf("Got status code %d, expected 400", errorResponse.StatusCode)
	}
	expectedError := "400, required: username is required"
	if errorResponse.Error() != expectedError {
		t.Errorf("Got error '%s', expected %s",
			errorResponse.Error(), expectedError)
	}
}

func TestHandleSingleErrorResponseStructurally(t *testing.T) {
	body := []byte(`{"errors": [{"status": "400",
                                 "code": "required",
                                 "title": "Missing field",
                                 "detail": "username is required",
                                 "source": {"pointer": "/data/attributes/username"},
                                 "meta": {"field": "username"}}]}`)
	var err error = parseErrorResponse(400, body)

	var data *Error
	if !errors.As(err, &data) {
		t.Error("Could not unwrap error to *Error type")
		t.FailNow()
	}

	item := data.Errors[0]
	if item.Status != "400" ||
		item.Code != "required" ||
		item.Title != "Missing field" ||
		item.Detail != "username is required" ||
		item.Source == nil ||
		item.Source.Pointer != "/data/attributes/username" ||
		item.Meta["field"] != "username" {
		t.Error("Could not parse error data properly")
	}
}

func TestHandleDoubleErrorResponse(t *testing.T) {
	body := []byte(`{"errors": [{"status": "409",
                                 "code": "conflict",
                                 "title": "Conflict",
                                 "detail": "username is already taken"},
                                {"status": "409",
                                 "code": "conflict",
                                 "title": "Conflict",
                                 "detail": "email is already taken"}]}`)
	errorResponse := parseErrorResponse(409, body)
	if errorResponse == nil {
		t.Error("Expected error")
		t.FailNow()
	}
	if errorResponse.StatusCode != 409 {
		t.Errorf("Got status code %d, expected 409", errorResponse.StatusCode)
	}
	expectedError := "409, conflict: username is already taken, conflict: " +
		"email is already taken"
	if errorResponse.Error() != expectedError {
		t.Errorf("Got error '%s', expected %s",
			errorResponse.Error(), expectedError)
	}
}

func TestHandleErrorResponseWithoutBody(t *testing.T) {
	errorResponse := parseErrorResponse(502, []byte("<html>Bad Gateway</html>"))
	if errorResponse == nil {
		t.Error("Expected error")
		t.FailNow()
	}
	if len(errorResponse.Errors) != 1 {
		t.Fatalf("Got %d error items, expected 1", len(errorResponse.Errors))
	}
	item := errorResponse.Errors[0]
	if item.Status != "502" || item.Title != "Bad Gateway" {
		t.Errorf("Got %+v, expected a synthesized 502 item", item)
	}
}

func TestSuccessIsNotAnError(t *testing.T) {
	for _, statusCode := range []int{200, 201, 204} {
		if parseErrorResponse(statusCode, nil) != nil {
			t.Errorf("Status %d should not be an error", statusCode)
		}
	}
}

func TestErrorItemString(t *testing.T) {
	testCases := []struct {
		item     ErrorItem
		expected string
	}{
		{ErrorItem{Detail: "boom"}, "boom"},
		{ErrorItem{Title: "Not Found", Status: "404"}, "[404] Not Found"},
		{
			ErrorItem{
				Status: "400",
				Detail: "group is required",
				Source: &ErrorSource{Pointer: "/data/attributes/group"},
			},
			"[400] group is required (/data/attributes/group)",
		},
	}
	for _, testCase := range testCases {
		if testCase.item.String() != testCase.expected {
			t.Errorf("Got '%s', expected '%s'",
				testCase.item.String(), testCase.expected)
		}
	}
}

func TestHandleErrorResponseWithNumericStatus(t *testing.T) {
	body := []byte(`{"errors": [{"status": 422,
                                 "detail": "bad",
                                 "links": {"about": "http://host/errors/bad"}}]}`)
	errorResponse := parseErrorResponse(422, body)
	if errorResponse == nil {
		t.Fatal("Expected error")
	}
	if len(errorResponse.Errors) != 1 {
		t.Fatalf("Got %d error items, expected 1", len(errorResponse.Errors))
	}
	item := errorResponse.Errors[0]
	if item.Status != "422" || item.Detail != "bad" {
		t.Errorf("Got %+v, expected status 422 and detail 'bad'", item)
	}
	if item.Links["about"] != "http://host/errors/bad" {
		t.Errorf("Links were not kept: %+v", item.Links)
	}
	if item.String() != "[422] bad" {
		t.Errorf("Got '%s', expected '[422] bad'", item.String())
	}
}
