package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Init sends the global logger to dest, appending to it. The terminal
// client uses this so logs never reach the screen.
func Init(dest string, component string, level string) (io.Closer, error) {
	f, err := os.OpenFile(dest, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		return nil, fmt.Errorf("error opening log file: %w", err)
	}

	setup(f, component, level)
	return f, nil
}

// Console sends the global logger to w in a human readable form.
func Console(w io.Writer, component string, level string) {
	setup(zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}, component, level)
}

func setup(w io.Writer, component string, level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	log.Logger = zerolog.New(w).With().Timestamp().Str("component", component).Logger()
	if err != nil {
		log.Warn().Str("level", level).Msg("unknown log level, using info")
	}
}
