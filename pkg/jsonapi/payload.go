package jsonapi

// Used to parse JSON

type PayloadSingular struct {
	Data PayloadResource `json:"data"`
}

type PayloadResource struct {
	Type       string                 `json:"type"`
	Id         string                 `json:"id,omitempty"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
}

// TokenPayload is the body returned by authentication endpoints
type TokenPayload struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}
