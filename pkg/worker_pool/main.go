/*
Package worker pool
Run a batch of tasks on a fixed number of goroutines while showing one line of
progress per task.

Usage:

	type deleteTask struct {
		m *model.Model
	}

	func (task deleteTask) Run(send func(string), abort func()) error {
		send(fmt.Sprintf("Deleting %s", task.m.URI()))
		if err := task.m.Delete(ctx); err != nil {
			return err
		}
		send(fmt.Sprintf("Deleted %s", task.m.URI()))
		return nil
	}

	pool := worker_pool.New(5, len(models))
	for _, m := range models {
		pool.Add(deleteTask{m})
	}
	pool.Start()
	<-pool.Wait()
	if err := pool.Err(); err != nil {
		...
	}

All tasks must be added before 'Start'. When the output is a terminal, the
lines are redrawn in place with [uilive](https://github.com/gosuri/uilive);
otherwise every call to 'send' prints a new line.

Calling 'abort' makes sure the workers will not pick up any new tasks. Tasks
already in progress continue. The errors returned by the tasks are collected
and available through 'Err' once the pool is done.
*/
package worker_pool

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/gosuri/uilive"
	"github.com/hashicorp/go-multierror"
	"github.com/mattn/go-isatty"
)

type Task interface {
	Run(send func(string), abort func()) error
}

type taskContainer_t struct {
	i    int
	task Task
}

type message_t struct {
	i    int
	body string
}

type Pool struct {
	// Where progress is written, os.Stdout by default
	Output io.Writer

	numWorkers     int
	taskChannel    chan taskContainer_t
	innerWaitGroup sync.WaitGroup
	outerWaitGroup sync.WaitGroup
	counter        int
	messages       []string
	messageChannel chan message_t
	closeOnce      sync.Once

	mu        sync.Mutex
	errs      *multierror.Error
	isAborted bool
}

func New(numWorkers, numTasks int) *Pool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	var pool Pool
	pool.numWorkers = numWorkers
	pool.taskChannel = make(chan taskContainer_t, numTasks)
	pool.messages = make([]string, numTasks)
	pool.messageChannel = make(chan message_t)
	return &pool
}

func (pool *Pool) Add(task Task) {
	pool.innerWaitGroup.Add(1)
	pool.taskChannel <- taskContainer_t{pool.counter, task}
	pool.counter += 1
}

func (pool *Pool) Start() {
	pool.closeOnce.Do(func() { close(pool.taskChannel) })
	pool.outerWaitGroup.Add(1)

	for i := 0; i < pool.numWorkers; i++ {
		go func() {
			for taskContainer := range pool.taskChannel {
				if !pool.IsAborted() {
					index := taskContainer.i
					send := func(body string) {
						pool.messageChannel <- message_t{index, body}
					}
					if err := taskContainer.task.Run(send, pool.abort); err != nil {
						pool.mu.Lock()
						pool.errs = multierror.Append(pool.errs, err)
						pool.mu.Unlock()
					}
				}
				pool.innerWaitGroup.Done()
			}
		}()
	}

	waitChannel := make(chan struct{})
	go func() {
		pool.innerWaitGroup.Wait()
		waitChannel <- struct{}{}
	}()

	go pool.render(waitChannel)
}

func (pool *Pool) render(waitChannel <-chan struct{}) {
	output := pool.Output
	if output == nil {
		output = os.Stdout
	}
	var live *uilive.Writer
	if file, ok := output.(*os.File); ok && isatty.IsTerminal(file.Fd()) {
		live = uilive.New()
		live.Out = file
		live.Start()
	}

	for {
		select {
		case msg := <-pool.messageChannel:
			if live == nil {
				fmt.Fprintln(output, msg.body)
				continue
			}
			if msg.i < len(pool.messages) {
				pool.messages[msg.i] = msg.body
			}
			var tmpMessages []string
			for _, line := range pool.messages {
				if len(line) > 0 {
					tmpMessages = append(tmpMessages, line)
				}
			}
			fmt.Fprintln(live, strings.Join(tmpMessages, "\n"))
			live.Flush()
		case <-waitChannel:
			if live != nil {
				live.Stop()
			}
			pool.outerWaitGroup.Done()
			return
		}
	}
}

func (pool *Pool) abort() {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	pool.isAborted = true
}

func (pool *Pool) IsAborted() bool {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	return pool.isAborted
}

func (pool *Pool) Wait() <-chan struct{} {
	waitChannel := make(chan struct{})
	go func() {
		pool.outerWaitGroup.Wait()
		waitChannel <- struct{}{}
	}()
	return waitChannel
}

// Err returns the errors of all failed tasks, nil if none failed
func (pool *Pool) Err() error {
	pool.mu.Lock()
	defer pool.mu.Unlock()
	return pool.errs.ErrorOrNil()
}
