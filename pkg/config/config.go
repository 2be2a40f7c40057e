package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/qnkhuat/blockterm/pkg/game"
	"github.com/qnkhuat/blockterm/pkg/mino"
	"github.com/qnkhuat/blockterm/pkg/store"
)

const EnvPrefix = "BLOCKTERM_"

// EnvFile holds defaults that the environment overrides. A missing file is
// ignored.
var EnvFile = ".env"

type Config struct {
	Width        int
	Height       int
	FallPeriod   int
	TickInterval time.Duration
	Seed         int64

	StoreDriver string
	StoreDSN    string
	SaveDir     string
	Slot        string

	LogFile  string
	LogLevel string

	// Matrix pre-fills cells, given as x,y pairs: "0,19,1,19".
	Matrix string

	ListenSSH    string
	ListenHTTP   string
	ClientBinary string
	HostKeyFile  string
}

func Default() *Config {
	return &Config{
		Width:        mino.DefaultWidth,
		Height:       mino.DefaultHeight,
		FallPeriod:   game.FallPeriod,
		TickInterval: game.TickInterval,
		StoreDriver:  store.DriverFile,
		SaveDir:      "saves",
		Slot:         "default",
		LogFile:      "blockterm.log",
		LogLevel:     "info",
		ListenSSH:    ":2222",
		ListenHTTP:   ":8080",
		ClientBinary: "blockterm",
		HostKeyFile:  "",
	}
}

// Load builds a config from defaults, the env file, BLOCKTERM_* variables
// and finally args. Server flags are only registered when server is set.
func Load(name string, args []string, server bool) (*Config, error) {
	fileEnv, err := godotenv.Read(EnvFile)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read %s: %w", EnvFile, err)
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}

	c := Default()
	if err := c.applyEnv(lookup); err != nil {
		return nil, err
	}

	fset := flag.NewFlagSet(name, flag.ContinueOnError)
	c.clientFlags(fset)
	if server {
		c.serverFlags(fset)
	}
	if err := fset.Parse(args); err != nil {
		return nil, err
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) clientFlags(fset *flag.FlagSet) {
	fset.IntVar(&c.Width, "width", c.Width, "board width")
	fset.IntVar(&c.Height, "height", c.Height, "board height")
	fset.IntVar(&c.FallPeriod, "fall-period", c.FallPeriod, "ticks between gravity steps")
	fset.DurationVar(&c.TickInterval, "tick", c.TickInterval, "tick interval")
	fset.Int64Var(&c.Seed, "seed", c.Seed, "shape generator seed, 0 for random")
	fset.StringVar(&c.StoreDriver, "store", c.StoreDriver, "save store: file or sqlite")
	fset.StringVar(&c.StoreDSN, "dsn", c.StoreDSN, "save store location, derived from -save-dir when empty")
	fset.StringVar(&c.SaveDir, "save-dir", c.SaveDir, "directory for saves")
	fset.StringVar(&c.Slot, "slot", c.Slot, "save slot")
	fset.StringVar(&c.LogFile, "log", c.LogFile, "path to log file")
	fset.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log level")
	fset.StringVar(&c.Matrix, "matrix", c.Matrix, "pre-fill matrix with blocks")
}

func (c *Config) serverFlags(fset *flag.FlagSet) {
	fset.StringVar(&c.ListenSSH, "ssh", c.ListenSSH, "ssh listen address")
	fset.StringVar(&c.ListenHTTP, "http", c.ListenHTTP, "http status listen address, empty to disable")
	fset.StringVar(&c.ClientBinary, "client", c.ClientBinary, "client binary started for each session")
	fset.StringVar(&c.HostKeyFile, "host-key", c.HostKeyFile, "ssh host key, generated when empty")
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var err error

	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) {
		if v, ok := lookup(EnvPrefix + key); ok && v != "" && err == nil {
			if *dst, err = strconv.Atoi(v); err != nil {
				err = fmt.Errorf("invalid %s%s: %w", EnvPrefix, key, err)
			}
		}
	}

	num("WIDTH", &c.Width)
	num("HEIGHT", &c.Height)
	num("FALL_PERIOD", &c.FallPeriod)
	if v, ok := lookup(EnvPrefix + "TICK"); ok && v != "" && err == nil {
		if c.TickInterval, err = time.ParseDuration(v); err != nil {
			err = fmt.Errorf("invalid %sTICK: %w", EnvPrefix, err)
		}
	}
	if v, ok := lookup(EnvPrefix + "SEED"); ok && v != "" && err == nil {
		if c.Seed, err = strconv.ParseInt(v, 10, 64); err != nil {
			err = fmt.Errorf("invalid %sSEED: %w", EnvPrefix, err)
		}
	}
	if err != nil {
		return err
	}

	str("STORE", &c.StoreDriver)
	str("DSN", &c.StoreDSN)
	str("SAVE_DIR", &c.SaveDir)
	str("SLOT", &c.Slot)
	str("LOG", &c.LogFile)
	if v, ok := lookup("LOG_LEVEL"); ok && v != "" {
		c.LogLevel = v
	}
	str("LOG_LEVEL", &c.LogLevel)
	str("MATRIX", &c.Matrix)
	str("SSH", &c.ListenSSH)
	str("HTTP", &c.ListenHTTP)
	str("CLIENT", &c.ClientBinary)
	str("HOST_KEY", &c.HostKeyFile)

	return nil
}

func (c *Config) Validate() error {
	switch {
	case c.Width < 4:
		return fmt.Errorf("width %d: must be at least 4", c.Width)
	case c.Height < 2:
		return fmt.Errorf("height %d: must be at least 2", c.Height)
	case c.FallPeriod < 1:
		return fmt.Errorf("fall period %d: must be positive", c.FallPeriod)
	case c.TickInterval <= 0:
		return fmt.Errorf("tick interval %s: must be positive", c.TickInterval)
	}

	if c.StoreDriver != store.DriverFile && c.StoreDriver != store.DriverSQLite {
		return fmt.Errorf("unknown store %q", c.StoreDriver)
	}
	if err := store.ValidSlot(c.Slot); err != nil {
		return err
	}
	if _, err := ParseMatrix(c.Matrix); err != nil {
		return err
	}

	return nil
}

// DSN is the store location, derived from SaveDir unless set explicitly.
func (c *Config) DSN() string {
	if c.StoreDSN != "" {
		return c.StoreDSN
	}
	if c.StoreDriver == store.DriverSQLite {
		return filepath.Join(c.SaveDir, "blockterm.db")
	}

	return c.SaveDir
}

// GameOptions returns the engine options described by c.
func (c *Config) GameOptions() []game.Option {
	options := []game.Option{
		game.WithSize(c.Width, c.Height),
		game.WithFallPeriod(c.FallPeriod),
	}
	if c.Seed != 0 {
		options = append(options, game.WithSource(mino.NewRandomSource(c.Seed)))
	}

	return options
}

// ParseMatrix reads comma separated x,y pairs.
func ParseMatrix(s string) ([]mino.Point, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	tokens := strings.Split(s, ",")
	if len(tokens)%2 != 0 {
		return nil, fmt.Errorf("failed to parse matrix: odd number of coordinates")
	}

	points := make([]mino.Point, 0, len(tokens)/2)
	var x int
	for i := range tokens {
		token, err := strconv.Atoi(strings.TrimSpace(tokens[i]))
		if err != nil {
			return nil, fmt.Errorf("failed to parse matrix on token #%d: %w", i, err)
		}

		if i%2 == 1 {
			points = append(points, mino.Point{X: x, Y: token})
		} else {
			x = token
		}
	}

	return points, nil
}
