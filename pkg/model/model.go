/*
Package model
Stateful access to a single {json:api} resource.

Usage:

    import "github.com/sugar-tools/sugar/pkg/model"

    tokens := webtoken.New("http://localhost:8080/v1/authentication",
        map[string]interface{}{"username": "admin", "password": "admin"},
        nil)
    err := tokens.Authenticate(ctx)

    user, err := model.New(model.Config{
        Host:        "http://localhost:8080",
        URI:         "v1",
        Type:        "users",
        IDAttribute: "id",
        Tokens:      tokens,
    })
    user.Set("username", "test")
    err = user.Save(ctx)  // No id yet, so a POST request is sent
    if len(user.Errors()) > 0 {
        // The server rejected the resource
    }
    user.Set("username", "abc")
    err = user.Save(ctx)  // The server assigned an id, so this is a PATCH
    err = user.Delete(ctx)

The returned error of Load, Save and Delete is reserved for transport
failures. Error responses from the server end up in Errors().
*/
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/hashicorp/go-hclog"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
)

// DefaultIDAttribute is the attribute key holding the id when Config does
// not name one. The underscore keeps it apart from ordinary fields.
const DefaultIDAttribute = "_id"

const errorsKey = "errors"

var ErrNoID = errors.New("model has no id")

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means no Authorization header.
type TokenSource interface {
	Token() string
}

type Config struct {
	Host        string                 `json:"host"`
	URI         string                 `json:"uri"`
	Type        string                 `json:"type"`
	ID          string                 `json:"id"`
	IDAttribute string                 `json:"id_attribute"`
	Attributes  map[string]interface{} `json:"attributes"`

	API    *jsonapi.Connection `json:"-"`
	Tokens TokenSource         `json:"-"`
	Logger hclog.Logger        `json:"-"`
}

func (c *Config) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Host, validation.Required),
		validation.Field(&c.URI, validation.Required),
		validation.Field(&c.Type, validation.Required),
	)
}

// ConfigurationError is returned by New when required settings are missing
type ConfigurationError struct {
	Fields []string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid model configuration: %s", e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

type Model struct {
	host        string
	uri         string
	typ         string
	idAttribute string
	attributes  map[string]interface{}

	api    *jsonapi.Connection
	tokens TokenSource
	logger hclog.Logger
}

func New(config Config) (*Model, error) {
	if err := config.validate(); err != nil {
		configErr := &ConfigurationError{Err: err}
		var fieldErrors validation.Errors
		if errors.As(err, &fieldErrors) {
			for field := range fieldErrors {
				configErr.Fields = append(configErr.Fields, field)
			}
			sort.Strings(configErr.Fields)
		}
		return nil, configErr
	}

	m := &Model{
		host:        config.Host,
		uri:         config.URI,
		typ:         config.Type,
		idAttribute: config.IDAttribute,
		attributes:  map[string]interface{}{errorsKey: []jsonapi.ErrorItem{}},
		api:         config.API,
		tokens:      config.Tokens,
		logger:      config.Logger,
	}
	if m.idAttribute == "" {
		m.idAttribute = DefaultIDAttribute
	}
	if m.api == nil {
		m.api = &jsonapi.Connection{}
	}
	if m.logger == nil {
		m.logger = hclog.NewNullLogger()
	}
	m.logger = m.logger.Named("model").With("type", m.typ)

	for key, value := range config.Attributes {
		if key == errorsKey {
			continue
		}
		m.attributes[key] = value
	}
	if config.ID != "" {
		m.SetID(config.ID)
	}
	return m, nil
}

func (m *Model) Host() string { return m.host }
func (m *Model) BaseURI() string { return m.uri }
func (m *Model) Type() string { return m.typ }
func (m *Model) IDAttribute() string { return m.idAttribute }

/*
ID
Returns the value stored under the id attribute. The boolean is false when
the model has no id; an empty string is never a valid id.
*/
func (m *Model) ID() (string, bool) {
	id := formatID(m.attributes[m.idAttribute])
	if id == "" {
		return "", false
	}
	return id, true
}

// formatID turns an id value into its URL form. Numbers decoded from JSON
// arrive as float64 and must not use exponent notation.
func formatID(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case uint64:
		return strconv.FormatUint(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

// SetID stores id under the id attribute. Setting "" removes the id.
func (m *Model) SetID(id string) {
	if id == "" {
		m.UnsetID()
		return
	}
	m.attributes[m.idAttribute] = id
}

func (m *Model) UnsetID() {
	delete(m.attributes, m.idAttribute)
}

// CollectionURI is the URL of the model's collection: {host}/{uri}/{type}
func (m *Model) CollectionURI() string {
	return strings.Join([]string{m.host, m.uri, m.typ}, "/")
}

// URI is the URL of the model's resource, or of its collection when it has
// no id yet
func (m *Model) URI() string {
	id, ok := m.ID()
	if !ok {
		return m.CollectionURI()
	}
	return m.CollectionURI() + "/" + url.PathEscape(id)
}

// Headers returns the request headers for the model's next request
func (m *Model) Headers() map[string]string {
	headers := map[string]string{
		"Accept":       jsonapi.ContentType,
		"Content-Type": jsonapi.ContentType,
	}
	if m.tokens != nil {
		if token := m.tokens.Token(); token != "" {
			headers["Authorization"] = "Bearer " + token
		}
	}
	return headers
}
