package sugarlib

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/sugar-tools/sugar/internal/sugarlib/config"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
	"github.com/sugar-tools/sugar/pkg/model"
	"github.com/sugar-tools/sugar/pkg/webtoken"
)

const Version = "0.1.0"

const defaultWorkers = 5

var errorColor = color.New(color.FgRed)

// Options shared by the commands that operate on models
type ModelOptions struct {
	Type        string
	IDAttribute string
	Workers     int
	Logger      hclog.Logger

	// Results are written to Out, progress to Progress
	Out      io.Writer
	Progress io.Writer
}

func (o *ModelOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

func (o *ModelOptions) progress() io.Writer {
	if o.Progress == nil {
		return os.Stderr
	}
	return o.Progress
}

func (o *ModelOptions) workers() int {
	if o.Workers < 1 {
		return defaultWorkers
	}
	return o.Workers
}

func newModel(
	api *jsonapi.Connection,
	host config.Host,
	tokens *webtoken.WebToken,
	options *ModelOptions,
	id string,
) (*model.Model, error) {
	return model.New(model.Config{
		Host:        host.Host,
		URI:         host.URI,
		Type:        options.Type,
		ID:          id,
		IDAttribute: options.IDAttribute,
		API:         api,
		Tokens:      tokens,
		Logger:      options.Logger,
	})
}

func printAttributes(out io.Writer, m *model.Model) error {
	attributes := m.Attributes()
	delete(attributes, "errors")
	body, err := json.MarshalIndent(attributes, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(body))
	return err
}

func printErrors(out io.Writer, items []jsonapi.ErrorItem) {
	for _, item := range items {
		errorColor.Fprintf(out, "  %s\n", item)
	}
}

// errorsSummary joins the server errors in a single line
func errorsSummary(items []jsonapi.ErrorItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, item.String())
	}
	return strings.Join(parts, "; ")
}

/*
parseAssignments
Turn 'key=value' arguments into attributes. Values that are valid JSON are
decoded ('age=3' is a number, 'tags=["a"]' a list); anything else is kept as
a string.
*/
func parseAssignments(assignments []string) (map[string]interface{}, error) {
	result := make(map[string]interface{}, len(assignments))
	for _, assignment := range assignments {
		parts := strings.SplitN(assignment, "=", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, fmt.Errorf(
				"invalid attribute '%s', expected 'key=value'", assignment,
			)
		}
		var value interface{}
		if err := json.Unmarshal([]byte(parts[1]), &value); err != nil {
			value = parts[1]
		}
		result[parts[0]] = value
	}
	return result, nil
}
