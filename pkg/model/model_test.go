package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
	"github.com/sugar-tools/sugar/pkg/webtoken"
)

const host = "http://localhost:8080"

type staticToken string

func (s staticToken) Token() string { return string(s) }

func TestCannotBeConstructed(t *testing.T) {
	testCases := []struct {
		name    string
		config  Config
		missing []string
	}{
		{"without a host", Config{}, []string{"host", "type", "uri"}},
		{"without a uri", Config{Host: host}, []string{"type", "uri"}},
		{"without a type", Config{Host: host, URI: "v1"}, []string{"type"}},
		{"with an empty uri", Config{Host: host, Type: "test"}, []string{"uri"}},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			m, err := New(testCase.config)
			assert.Nil(t, m)

			var configErr *ConfigurationError
			require.True(t, errors.As(err, &configErr))
			assert.Equal(t, testCase.missing, configErr.Fields)
		})
	}
}

func TestConstructWithHostUriAndType(t *testing.T) {
	m, err := New(Config{Host: host, URI: "v1", Type: "test"})
	require.NoError(t, err)

	assert.Equal(t, host, m.Host())
	assert.Equal(t, "v1", m.BaseURI())
	assert.Equal(t, "test", m.Type())
	assert.Equal(t, DefaultIDAttribute, m.IDAttribute())
	assert.Equal(t,
		map[string]interface{}{"errors": []jsonapi.ErrorItem{}},
		m.Attributes())
}

func TestConstructWithAttributes(t *testing.T) {
	provided := map[string]interface{}{"field": "value"}
	m, err := New(Config{
		Host: host, URI: "v1", Type: "test", Attributes: provided,
	})
	require.NoError(t, err)

	assert.Equal(t,
		map[string]interface{}{
			"errors": []jsonapi.ErrorItem{},
			"field":  "value",
		},
		m.Attributes())

	// The caller's map is not shared
	require.NoError(t, m.Set("field", "changed"))
	assert.Equal(t, "value", provided["field"])
}

func TestConstructWithAnId(t *testing.T) {
	m, err := New(Config{Host: host, URI: "v1", Type: "test", ID: "test"})
	require.NoError(t, err)

	assert.Equal(t,
		map[string]interface{}{
			"errors": []jsonapi.ErrorItem{},
			"_id":    "test",
		},
		m.Attributes())
	id, ok := m.ID()
	assert.True(t, ok)
	assert.Equal(t, "test", id)
}

func TestConstructIdOverridesAttributes(t *testing.T) {
	m, err := New(Config{
		Host:        host,
		URI:         "v1",
		Type:        "test",
		ID:          "from-config",
		IDAttribute: "id",
		Attributes: map[string]interface{}{
			"id":     "from-attributes",
			"errors": "ignored",
		},
	})
	require.NoError(t, err)

	id, _ := m.ID()
	assert.Equal(t, "from-config", id)
	assert.Empty(t, m.Errors())
}

func TestHeaders(t *testing.T) {
	m, err := New(Config{Host: host, URI: "v1", Type: "test"})
	require.NoError(t, err)

	headers := m.Headers()
	assert.Equal(t, jsonapi.ContentType, headers["Accept"])
	assert.Equal(t, jsonapi.ContentType, headers["Content-Type"])
	assert.NotContains(t, headers, "Authorization")
}

func TestHeadersWithToken(t *testing.T) {
	tokens := webtoken.New("", nil, nil)
	m, err := New(Config{Host: host, URI: "v1", Type: "test", Tokens: tokens})
	require.NoError(t, err)

	assert.NotContains(t, m.Headers(), "Authorization")

	tokens.SetToken("abc")
	assert.Equal(t, "Bearer abc", m.Headers()["Authorization"])
}

func TestIdAccessors(t *testing.T) {
	m, err := New(Config{Host: host, URI: "v1", Type: "test"})
	require.NoError(t, err)

	_, ok := m.ID()
	assert.False(t, ok)

	m.SetID("test")
	value, _ := m.Get(m.IDAttribute())
	assert.Equal(t, "test", value)
	id, ok := m.ID()
	assert.True(t, ok)
	assert.Equal(t, "test", id)

	// Setting the id attribute directly is the same thing
	require.NoError(t, m.Set(m.IDAttribute(), "other"))
	id, _ = m.ID()
	assert.Equal(t, "other", id)

	m.SetID("")
	_, ok = m.ID()
	assert.False(t, ok)
	_, exists := m.Get(m.IDAttribute())
	assert.False(t, exists)
}

func TestNonStringIds(t *testing.T) {
	m, err := New(Config{Host: host, URI: "v1", Type: "test"})
	require.NoError(t, err)

	testCases := []struct {
		value    interface{}
		expected string
	}{
		{float64(12), "12"},
		{float64(1000000), "1000000"},
		{float64(12345678901), "12345678901"},
		{json.Number("1000000"), "1000000"},
		{7, "7"},
		{int64(1) << 40, "1099511627776"},
	}
	for _, testCase := range testCases {
		require.NoError(t, m.Set(DefaultIDAttribute, testCase.value))
		id, ok := m.ID()
		assert.True(t, ok)
		assert.Equal(t, testCase.expected, id)
		assert.Equal(t, host+"/v1/test/"+testCase.expected, m.URI())
	}
}

func TestSetEmptyIdRemovesIt(t *testing.T) {
	m, err := New(Config{Host: host, URI: "v1", Type: "test", ID: "5"})
	require.NoError(t, err)

	require.NoError(t, m.Set(m.IDAttribute(), ""))
	_, ok := m.ID()
	assert.False(t, ok)
	assert.NotContains(t, m.Attributes(), m.IDAttribute())

	m.SetID("5")
	require.NoError(t, m.Set(m.IDAttribute(), nil))
	assert.NotContains(t, m.Attributes(), m.IDAttribute())
}

func TestErrorsAreReserved(t *testing.T) {
	m, err := New(Config{Host: host, URI: "v1", Type: "test"})
	require.NoError(t, err)

	assert.Error(t, m.Set("errors", "nope"))
	m.Unset("errors")
	assert.NotNil(t, m.Errors())
	assert.Contains(t, m.Attributes(), "errors")
}

func TestUri(t *testing.T) {
	m, err := New(Config{Host: host, URI: "v1", Type: "test", ID: "test"})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/v1/test/test", m.URI())

	m.UnsetID()
	assert.Equal(t, "http://localhost:8080/v1/test", m.URI())
	assert.Equal(t, m.URI(), m.CollectionURI())

	m.SetID("a b")
	assert.Equal(t, "http://localhost:8080/v1/test/a%20b", m.URI())
}

type user struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Group    string `json:"group,omitempty"`
}

func TestDecodeAndEncode(t *testing.T) {
	m, err := New(Config{
		Host: host, URI: "v1", Type: "users", IDAttribute: "id",
		Attributes: map[string]interface{}{"username": "admin"},
	})
	require.NoError(t, err)
	m.SetID("1")

	var u user
	require.NoError(t, m.Decode(&u))
	assert.Equal(t, user{Id: "1", Username: "admin"}, u)

	u.Username = "root"
	u.Group = "administrator"
	u.Id = "2"
	require.NoError(t, m.Encode(u))

	username, _ := m.Get("username")
	group, _ := m.Get("group")
	id, _ := m.ID()
	assert.Equal(t, "root", username)
	assert.Equal(t, "administrator", group)
	assert.Equal(t, "2", id)
}

type numberedUser struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
}

func TestEncodeIntegerId(t *testing.T) {
	m, err := New(Config{
		Host: host, URI: "v1", Type: "users", IDAttribute: "id", ID: "5",
	})
	require.NoError(t, err)

	require.NoError(t, m.Encode(numberedUser{Id: 7, Username: "admin"}))
	id, ok := m.ID()
	assert.True(t, ok)
	assert.Equal(t, "7", id)

	// A struct without an id detaches the model
	require.NoError(t, m.Encode(numberedUser{Username: "admin"}))
	_, ok = m.ID()
	assert.False(t, ok)
	username, _ := m.Get("username")
	assert.Equal(t, "admin", username)
}
