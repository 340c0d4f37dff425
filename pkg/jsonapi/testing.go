package jsonapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type CapturedRequest struct {
	Method  string
	Headers map[string]string
	Payload []byte
}
type MockResponse struct {
	Text     string
	Status   int
	Redirect string
}

type MockRequest struct {
	Response MockResponse
	Request  CapturedRequest
}

type MockEndpoint struct {
	Requests []MockRequest
	Count    int
}

type MockData map[string]*MockEndpoint

func (mockData *MockData) Get(url string) *MockRequest {
	endpoint, exists := (*mockData)[url]
	if !exists {
		return nil
	}
	if endpoint.Count >= len(endpoint.Requests) {
		return nil
	}
	endpoint.Count++
	return &endpoint.Requests[endpoint.Count-1]
}

func GetTestConnection(mockData MockData) Connection {
	return Connection{
		RequestMethod: func(
			method, url string, headers map[string]string, payload []byte,
		) ([]byte, error) {
			mockRequest := mockData.Get(url)
			if mockRequest == nil {
				return nil, fmt.Errorf("%s not found", url)
			}
			mockRequest.Request.Method = method
			mockRequest.Request.Headers = headers
			mockRequest.Request.Payload = payload

			if mockRequest.Response.Redirect != "" {
				return nil, &RedirectError{mockRequest.Response.Redirect}
			}
			status := mockRequest.Response.Status
			if status == 0 {
				status = http.StatusOK
			}
			body := []byte(mockRequest.Response.Text)
			if errorResponse := parseErrorResponse(status, body); errorResponse != nil {
				return nil, errorResponse
			}
			return body, nil
		},
	}
}

/*
TestServer
In-memory {json:api} backend served over httptest. It knows one
authentication endpoint ('{prefix}/authentication') and accepts any
collection name under the prefix:

	POST   {prefix}/{type}       create, responds 201 with a generated id
	GET    {prefix}/{type}/{id}  read
	PATCH  {prefix}/{type}/{id}  partial update
	DELETE {prefix}/{type}/{id}  delete, responds 204

When Username is set, writes need 'Authorization: Bearer <token>' with a
token minted by the authentication endpoint.
*/
type TestServer struct {
	*httptest.Server

	Prefix   string
	Username string
	Password string
	// Attributes that must be present when creating a resource, per type
	Required map[string][]string

	mu        sync.Mutex
	resources map[string]map[string]map[string]interface{}
	tokens    map[string]bool
	signKey   []byte
}

func NewTestServer(prefix string) *TestServer {
	server := &TestServer{
		Prefix:    "/" + strings.Trim(prefix, "/"),
		Required:  make(map[string][]string),
		resources: make(map[string]map[string]map[string]interface{}),
		tokens:    make(map[string]bool),
		signKey:   []byte(uuid.NewString()),
	}
	server.Server = httptest.NewServer(http.HandlerFunc(server.serveHTTP))
	return server
}

// Put stores a resource directly, bypassing authentication and validation
func (s *TestServer) Put(Type, Id string, attributes map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.collection(Type)[Id] = copyAttributes(attributes)
}

// Lookup returns a stored resource's attributes
func (s *TestServer) Lookup(Type, Id string) (map[string]interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	attributes, exists := s.collection(Type)[Id]
	return copyAttributes(attributes), exists
}

// Count returns the number of stored resources of a type
func (s *TestServer) Count(Type string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.collection(Type))
}

func (s *TestServer) collection(Type string) map[string]map[string]interface{} {
	collection, exists := s.resources[Type]
	if !exists {
		collection = make(map[string]map[string]interface{})
		s.resources[Type] = collection
	}
	return collection
}

func (s *TestServer) serveHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, s.Prefix)
	if path == r.URL.Path {
		writeErrors(w, http.StatusNotFound, ErrorItem{Code: "not_found"})
		return
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")

	if len(parts) == 1 && parts[0] == "authentication" {
		s.authenticate(w, r)
		return
	}
	if r.Method != http.MethodGet && !s.authorized(r) {
		writeErrors(w, http.StatusUnauthorized, ErrorItem{
			Code: "unauthorized", Title: "Unauthorized",
			Detail: "A valid token is required",
		})
		return
	}
	if (r.Method == http.MethodPost || r.Method == http.MethodPatch) &&
		!strings.HasPrefix(r.Header.Get("Content-Type"), ContentType) {
		writeErrors(w, http.StatusUnsupportedMediaType, ErrorItem{
			Code: "unsupported_media_type",
		})
		return
	}

	switch {
	case len(parts) == 1 && parts[0] != "" && r.Method == http.MethodPost:
		s.create(w, r, parts[0])
	case len(parts) == 2 && r.Method == http.MethodGet:
		s.read(w, parts[0], parts[1])
	case len(parts) == 2 && r.Method == http.MethodPatch:
		s.update(w, r, parts[0], parts[1])
	case len(parts) == 2 && r.Method == http.MethodDelete:
		s.delete(w, parts[0], parts[1])
	default:
		writeErrors(w, http.StatusMethodNotAllowed, ErrorItem{
			Code: "method_not_allowed",
		})
	}
}

func (s *TestServer) authenticate(w http.ResponseWriter, r *http.Request) {
	var credentials struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
		writeErrors(w, http.StatusBadRequest, ErrorItem{
			Code: "parse_error", Detail: err.Error(),
		})
		return
	}
	if r.Method != http.MethodPost ||
		credentials.Username != s.Username ||
		credentials.Password != s.Password {
		writeErrors(w, http.StatusUnauthorized, ErrorItem{
			Code: "invalid_credentials", Detail: "Invalid username or password",
		})
		return
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": credentials.Username,
		"exp": time.Now().Add(time.Hour).Unix(),
		"jti": uuid.NewString(),
	}).SignedString(s.signKey)
	if err != nil {
		writeErrors(w, http.StatusInternalServerError, ErrorItem{
			Detail: err.Error(),
		})
		return
	}

	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()

	var payload TokenPayload
	payload.Data.Token = token
	writeJSON(w, http.StatusOK, payload)
}

func (s *TestServer) authorized(r *http.Request) bool {
	if s.Username == "" {
		return true
	}
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tokens[token]
}

func (s *TestServer) create(w http.ResponseWriter, r *http.Request, Type string) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}

	var missing []ErrorItem
	for _, field := range s.Required[Type] {
		if _, exists := payload.Data.Attributes[field]; !exists {
			missing = append(missing, ErrorItem{
				Status: "400",
				Code:   "required",
				Title:  "Missing field",
				Detail: fmt.Sprintf("%s is required", field),
				Source: &ErrorSource{Pointer: "/data/attributes/" + field},
			})
		}
	}
	if len(missing) > 0 {
		writeErrors(w, http.StatusBadRequest, missing...)
		return
	}

	Id := uuid.NewString()
	s.mu.Lock()
	s.collection(Type)[Id] = copyAttributes(payload.Data.Attributes)
	s.mu.Unlock()

	s.read(w, Type, Id, http.StatusCreated)
}

func (s *TestServer) read(w http.ResponseWriter, Type, Id string, status ...int) {
	attributes, exists := s.Lookup(Type, Id)
	if !exists {
		writeErrors(w, http.StatusNotFound, ErrorItem{
			Status: "404", Code: "not_found",
			Detail: fmt.Sprintf("%s %s does not exist", Type, Id),
		})
		return
	}
	code := http.StatusOK
	if len(status) > 0 {
		code = status[0]
	}
	writeJSON(w, code, PayloadSingular{Data: PayloadResource{
		Type: Type, Id: Id, Attributes: attributes,
	}})
}

func (s *TestServer) update(w http.ResponseWriter, r *http.Request, Type, Id string) {
	payload, ok := decodePayload(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	attributes, exists := s.collection(Type)[Id]
	if exists {
		for key, value := range payload.Data.Attributes {
			attributes[key] = value
		}
	}
	s.mu.Unlock()
	s.read(w, Type, Id)
}

func (s *TestServer) delete(w http.ResponseWriter, Type, Id string) {
	s.mu.Lock()
	_, exists := s.collection(Type)[Id]
	delete(s.collection(Type), Id)
	s.mu.Unlock()
	if !exists {
		writeErrors(w, http.StatusNotFound, ErrorItem{
			Status: "404", Code: "not_found",
		})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decodePayload(w http.ResponseWriter, r *http.Request) (PayloadSingular, bool) {
	var payload PayloadSingular
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeErrors(w, http.StatusBadRequest, ErrorItem{
			Status: "400", Code: "parse_error", Detail: err.Error(),
		})
		return payload, false
	}
	return payload, true
}

func writeErrors(w http.ResponseWriter, status int, items ...ErrorItem) {
	writeJSON(w, status, Error{Errors: items})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", ContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func copyAttributes(attributes map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{}, len(attributes))
	for key, value := range attributes {
		result[key] = value
	}
	return result
}
