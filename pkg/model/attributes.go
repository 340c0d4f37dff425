package model

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
)

/*
Attributes
Returns a shallow copy of the attribute mapping, including the id attribute
(when set) and the 'errors' sequence.
*/
func (m *Model) Attributes() map[string]interface{} {
	result := make(map[string]interface{}, len(m.attributes))
	for key, value := range m.attributes {
		result[key] = value
	}
	result[errorsKey] = m.Errors()
	return result
}

func (m *Model) Get(key string) (interface{}, bool) {
	value, exists := m.attributes[key]
	return value, exists
}

/*
Set an attribute. 'errors' is owned by the model and cannot be set. Setting
the id attribute to nil or "" removes the id, like SetID("").
*/
func (m *Model) Set(key string, value interface{}) error {
	if key == errorsKey {
		return fmt.Errorf("'%s' is reserved and cannot be set", errorsKey)
	}
	if key == m.idAttribute && formatID(value) == "" {
		m.UnsetID()
		return nil
	}
	m.attributes[key] = value
	return nil
}

func (m *Model) Unset(key string) {
	if key == errorsKey {
		return
	}
	delete(m.attributes, key)
}

// Errors returns the errors reported by the server for the last request
func (m *Model) Errors() []jsonapi.ErrorItem {
	items, _ := m.attributes[errorsKey].([]jsonapi.ErrorItem)
	result := make([]jsonapi.ErrorItem, len(items))
	copy(result, items)
	return result
}

func (m *Model) setErrors(items []jsonapi.ErrorItem) {
	if items == nil {
		items = []jsonapi.ErrorItem{}
	}
	m.attributes[errorsKey] = items
}

// payloadAttributes is what gets sent to the server: everything except the
// id and the errors
func (m *Model) payloadAttributes() map[string]interface{} {
	result := make(map[string]interface{}, len(m.attributes))
	for key, value := range m.attributes {
		if key == errorsKey || key == m.idAttribute {
			continue
		}
		result[key] = value
	}
	return result
}

/*
Decode maps the model's attributes onto a struct, using 'json' tags for the
field names.

    type User struct {
        Id       string `json:"id"`
        Username string `json:"username"`
        Group    string `json:"group"`
    }

    var user User
    err := m.Decode(&user)
*/
func (m *Model) Decode(result interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           result,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(m.Attributes())
}

/*
Encode copies the fields of a struct into the model's attributes, possibly
before calling Save. Field names come from 'json' tags.
*/
func (m *Model) Encode(source interface{}) error {
	values := make(map[string]interface{})
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "json",
		Result:  &values,
	})
	if err != nil {
		return err
	}
	if err := decoder.Decode(source); err != nil {
		return err
	}
	for key, value := range values {
		if key == errorsKey {
			continue
		}
		if key == m.idAttribute {
			// A zero id field means the struct has no id
			if value == nil || reflect.ValueOf(value).IsZero() {
				m.UnsetID()
			} else {
				m.SetID(formatID(value))
			}
			continue
		}
		m.attributes[key] = value
	}
	return nil
}
