package sim

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Console reads text commands line by line and runs each one on a Loop.
// It satisfies server.Service: Start returns on end of input, on Quit, or
// after Stop.
//
// Start's reader goroutine stays blocked in Scan after Quit or Stop until
// the input yields another line or closes; a Console on os.Stdin keeps that
// goroutine until the process exits.
type Console struct {
	loop   *Loop
	exec   func(line string) string
	in     io.Reader
	out    io.Writer
	logger *zap.Logger
	prompt string

	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once
}

// NewConsole returns a Console that runs exec on loop for every input line
// and writes the result to out.
//
// Precondition: loop, exec, in and out must not be nil.
func NewConsole(loop *Loop, exec func(string) string, in io.Reader, out io.Writer, logger *zap.Logger) *Console {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Console{
		loop:   loop,
		exec:   exec,
		in:     in,
		out:    out,
		logger: logger,
		prompt: "> ",
		ctx:    ctx,
		cancel: cancel,
	}
}

// SetPrompt changes the prompt written before each read. "" disables it.
func (c *Console) SetPrompt(p string) { c.prompt = p }

// Quit makes Start return after the current line. Safe to call from the
// loop goroutine.
func (c *Console) Quit() { c.once.Do(c.cancel) }

// Stop is Quit. It satisfies server.Service.
func (c *Console) Stop() { c.Quit() }

// Start reads and executes lines until input ends, Quit or Stop.
//
// Postcondition: returns nil on a clean exit, or the read error.
func (c *Console) Start() error {
	lines := make(chan string)
	readErr := make(chan error, 1)
	go func() {
		sc := bufio.NewScanner(c.in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-c.ctx.Done():
				return
			}
		}
		readErr <- sc.Err()
	}()

	for {
		c.writePrompt()
		select {
		case <-c.ctx.Done():
			return nil
		case err := <-readErr:
			if err != nil {
				return fmt.Errorf("reading commands: %w", err)
			}
			c.logger.Info("console input closed")
			return nil
		case line := <-lines:
			var result string
			err := c.loop.Do(context.Background(), func() { result = c.exec(line) })
			if errors.Is(err, ErrStopped) {
				c.logger.Warn("loop stopped, dropping command", zap.String("line", line))
				return nil
			}
			if err != nil {
				return err
			}
			if result != "" {
				fmt.Fprintln(c.out, result)
			}
			if c.ctx.Err() != nil {
				return nil
			}
		}
	}
}

func (c *Console) writePrompt() {
	if c.prompt != "" {
		fmt.Fprint(c.out, c.prompt)
	}
}
