package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// New builds a JSON logger writing to out at the named level.
func New(out io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	logger := logrus.New()
	logger.SetOutput(out)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.JSONFormatter{})
	return logger, nil
}
