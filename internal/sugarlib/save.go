package sugarlib

import (
	"context"
	"fmt"

	"github.com/sugar-tools/sugar/internal/sugarlib/config"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
)

type SaveCommandArguments struct {
	ModelOptions
	Id          string
	Assignments []string
}

/*
SaveCommand
Create a resource, or update it when an id is given, from 'key=value'
assignments. The server's version of the resource is printed on success.
*/
func SaveCommand(
	ctx context.Context,
	host config.Host,
	api jsonapi.Connection,
	arguments *SaveCommandArguments,
) error {
	attributes, err := parseAssignments(arguments.Assignments)
	if err != nil {
		return err
	}
	m, err := newModel(&api, host, tokensFor(host), &arguments.ModelOptions,
		arguments.Id)
	if err != nil {
		return err
	}
	for key, value := range attributes {
		if err := m.Set(key, value); err != nil {
			return err
		}
	}

	if err := m.Save(ctx); err != nil {
		return err
	}
	if items := m.Errors(); len(items) > 0 {
		errorColor.Fprintf(arguments.out(), "Could not save %s\n", m.URI())
		printErrors(arguments.out(), items)
		return fmt.Errorf("the server rejected the %s resource",
			arguments.Type)
	}
	return printAttributes(arguments.out(), m)
}
