package sugarlib

import (
	"context"
	"fmt"

	"github.com/sugar-tools/sugar/internal/sugarlib/config"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
	"github.com/sugar-tools/sugar/pkg/model"
	"github.com/sugar-tools/sugar/pkg/worker_pool"
)

type GetCommandArguments struct {
	ModelOptions
	Ids []string
}

type loadTask struct {
	ctx context.Context
	m   *model.Model
}

func (task *loadTask) Run(send func(string), abort func()) error {
	send(fmt.Sprintf("Loading %s", task.m.URI()))
	if err := task.m.Load(task.ctx); err != nil {
		send(fmt.Sprintf("Could not load %s", task.m.URI()))
		return fmt.Errorf("%s: %w", task.m.URI(), err)
	}
	send(fmt.Sprintf("Loaded %s", task.m.URI()))
	return nil
}

/*
GetCommand
Load every id of the requested type concurrently and print their attributes
as JSON, in the order the ids were given.
*/
func GetCommand(
	ctx context.Context,
	host config.Host,
	api jsonapi.Connection,
	arguments *GetCommandArguments,
) error {
	if len(arguments.Ids) == 0 {
		return fmt.Errorf("please provide at least one id")
	}
	tokens := tokensFor(host)

	tasks := make([]*loadTask, 0, len(arguments.Ids))
	pool := worker_pool.New(arguments.workers(), len(arguments.Ids))
	pool.Output = arguments.progress()
	for _, id := range arguments.Ids {
		m, err := newModel(&api, host, tokens, &arguments.ModelOptions, id)
		if err != nil {
			return err
		}
		task := &loadTask{ctx: ctx, m: m}
		tasks = append(tasks, task)
		pool.Add(task)
	}
	pool.Start()
	<-pool.Wait()
	if err := pool.Err(); err != nil {
		return err
	}

	failed := 0
	for _, task := range tasks {
		if items := task.m.Errors(); len(items) > 0 {
			failed++
			errorColor.Fprintf(arguments.out(),
				"Could not load %s\n", task.m.URI())
			printErrors(arguments.out(), items)
			continue
		}
		if err := printAttributes(arguments.out(), task.m); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d resources could not be loaded",
			failed, len(tasks))
	}
	return nil
}
