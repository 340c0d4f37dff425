package sugarlib

import (
	"context"
	"errors"
	"fmt"

	"github.com/sugar-tools/sugar/internal/sugarlib/config"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
	"github.com/sugar-tools/sugar/pkg/model"
	"github.com/sugar-tools/sugar/pkg/worker_pool"
)

type DeleteCommandArguments struct {
	ModelOptions
	Ids []string
	// Stop picking up new deletions after the first failure
	Strict bool
}

type deleteTask struct {
	ctx    context.Context
	m      *model.Model
	strict bool
}

func (task *deleteTask) Run(send func(string), abort func()) error {
	uri := task.m.URI()
	send(fmt.Sprintf("Deleting %s", uri))
	err := task.m.Delete(task.ctx)
	if err == nil && len(task.m.Errors()) > 0 {
		err = errors.New(errorsSummary(task.m.Errors()))
	}
	if err != nil {
		send(fmt.Sprintf("Could not delete %s", uri))
		if task.strict {
			abort()
		}
		return fmt.Errorf("%s: %w", uri, err)
	}
	send(fmt.Sprintf("Deleted %s", uri))
	return nil
}

// DeleteCommand deletes the given ids of a type concurrently
func DeleteCommand(
	ctx context.Context,
	host config.Host,
	api jsonapi.Connection,
	arguments *DeleteCommandArguments,
) error {
	if len(arguments.Ids) == 0 {
		return fmt.Errorf("please provide at least one id")
	}
	tokens := tokensFor(host)

	pool := worker_pool.New(arguments.workers(), len(arguments.Ids))
	pool.Output = arguments.progress()
	for _, id := range arguments.Ids {
		m, err := newModel(&api, host, tokens, &arguments.ModelOptions, id)
		if err != nil {
			return err
		}
		pool.Add(&deleteTask{ctx: ctx, m: m, strict: arguments.Strict})
	}
	pool.Start()
	<-pool.Wait()
	if err := pool.Err(); err != nil {
		return err
	}
	if pool.IsAborted() {
		return errors.New("deletion aborted")
	}
	return nil
}
