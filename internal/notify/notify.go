package notify

import (
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
)

// Console prints notifications for the shopper and mirrors them to the log.
type Console struct {
	mu     sync.Mutex
	out    io.Writer
	logger *zerolog.Logger
}

// NewConsole returns new Console writing to out.
func NewConsole(out io.Writer, logger *zerolog.Logger) *Console {
	return &Console{
		out:    out,
		logger: logger,
	}
}

// Info shows informational message.
func (c *Console) Info(msg string) {
	c.logger.Info().Msg(msg)
	c.print("", msg)
}

// Error shows failure message. err is logged but not shown.
func (c *Console) Error(msg string, err error) {
	c.logger.Error().Err(err).Msg(msg)
	c.print("error: ", msg)
}

func (c *Console) print(prefix, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, _ = fmt.Fprintln(c.out, prefix+msg)
}
