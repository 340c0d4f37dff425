package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/sugar-tools/sugar/pkg/jsonapi"
)

/*
Load
Fetch the resource with a GET request and merge the returned attributes. The
model must have an id.
*/
func (m *Model) Load(ctx context.Context) error {
	if _, ok := m.ID(); !ok {
		return ErrNoID
	}
	body, err := m.api.Request(ctx, "GET", m.URI(), m.Headers(), nil)
	return m.handleResponse("GET", body, err)
}

/*
Save
Create the resource with a POST to the collection when there is no id, update
it with a PATCH otherwise. On success the server's version of the resource,
including a newly assigned id, is merged back.
*/
func (m *Model) Save(ctx context.Context) error {
	method := "POST"
	id, hasID := m.ID()
	if hasID {
		method = "PATCH"
	}

	payload := jsonapi.PayloadSingular{}
	payload.Data.Type = m.typ
	payload.Data.Id = id
	payload.Data.Attributes = m.payloadAttributes()

	requestBody, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	body, err := m.api.Request(ctx, method, m.URI(), m.Headers(), requestBody)
	return m.handleResponse(method, body, err)
}

/*
Delete
Delete the resource on the server. On success the model loses its id but keeps
the rest of its attributes, so that it can be saved again as a new resource.
*/
func (m *Model) Delete(ctx context.Context) error {
	if _, ok := m.ID(); !ok {
		return ErrNoID
	}
	_, err := m.api.Request(ctx, "DELETE", m.URI(), m.Headers(), nil)
	if err != nil {
		return m.handleFailure("DELETE", err)
	}
	m.UnsetID()
	m.setErrors(nil)
	return nil
}

func (m *Model) handleResponse(method string, body []byte, err error) error {
	if err != nil {
		return m.handleFailure(method, err)
	}
	if err := m.overwrite(body); err != nil {
		return fmt.Errorf("could not parse response to %s %s: %w",
			method, m.URI(), err)
	}
	m.setErrors(nil)
	return nil
}

// handleFailure keeps server error responses as data and returns everything
// else
func (m *Model) handleFailure(method string, err error) error {
	var e *jsonapi.Error
	if errors.As(err, &e) {
		m.logger.Debug("server returned errors",
			"method", method, "status", e.StatusCode, "count", len(e.Errors))
		m.setErrors(e.Errors)
		return nil
	}
	m.logger.Warn("request failed", "method", method, "error", err)
	return err
}

func (m *Model) overwrite(body []byte) error {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	var response jsonapi.PayloadSingular
	if err := json.Unmarshal(body, &response); err != nil {
		return err
	}
	for key, value := range response.Data.Attributes {
		if key == errorsKey {
			continue
		}
		m.attributes[key] = value
	}
	if response.Data.Id != "" {
		m.SetID(response.Data.Id)
	}
	return nil
}
