// The minelink command connects to a Minecraft Java Edition server as a
// protocol engine client: it can log in and hold the connection through
// the configuration and play phases, or run a server list ping.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/minelink/minelink/pkg/client"
	"github.com/minelink/minelink/pkg/config"
)

func main() {
	app := &cli.App{
		Name:  "minelink",
		Usage: "Minecraft Java Edition protocol engine client (protocol 765)",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path",
				Value:   "minelink.yml",
			},
			&cli.StringFlag{
				Name:    "addr",
				Aliases: []string{"a"},
				Usage:   "The address of the server to connect to",
			},
			&cli.StringFlag{
				Name:    "name",
				Aliases: []string{"n"},
				Usage:   "The player name to log in with",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"d"},
				Usage:   "Enable debug mode and verbose packet logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "join",
				Usage: "Log in to the server and hold the connection",
				Action: func(cc *cli.Context) error {
					return run(cc, func(ctx context.Context, c *client.Client, log logr.Logger) error {
						log.Info("joining server", "uuid", c.PlayerID())
						return c.Login(ctx)
					})
				},
			},
			{
				Name:  "status",
				Usage: "Run a server list ping and print the status JSON",
				Action: func(cc *cli.Context) error {
					return run(cc, func(ctx context.Context, c *client.Client, log logr.Logger) error {
						result, err := c.Status(ctx)
						if err != nil {
							return err
						}
						log.Info("server responded", "latency", result.Latency.Round(time.Millisecond))
						fmt.Println(result.JSON)
						return nil
					})
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cc *cli.Context, fn func(context.Context, *client.Client, logr.Logger) error) error {
	cfg, err := loadConfig(cc)
	if err != nil {
		return fmt.Errorf("error loading config: %w", err)
	}

	log, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("error initializing logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	c, err := client.Connect(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = c.Close() }()
	return fn(ctx, c, log)
}

// loadConfig merges the config file, MINELINK_* environment
// variables and command line flags.
func loadConfig(cc *cli.Context) (config.Config, error) {
	v := viper.New()
	v.SetDefault("address", config.DefaultConfig.Address)
	v.SetDefault("name", config.DefaultConfig.Name)
	v.SetDefault("debug", config.DefaultConfig.Debug)
	v.SetDefault("compressionLevel", config.DefaultConfig.CompressionLevel)

	v.SetEnvPrefix("MINELINK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(cc.String("config"))
	if err := v.ReadInConfig(); err != nil {
		// The config file is optional unless explicitly given.
		if cc.IsSet("config") {
			return config.Config{}, err
		}
	}

	if cc.IsSet("addr") {
		v.Set("address", cc.String("addr"))
	}
	if cc.IsSet("name") {
		v.Set("name", cc.String("name"))
	}
	if cc.IsSet("debug") {
		v.Set("debug", cc.Bool("debug"))
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, cfg.Validate()
}

func newLogger(debug bool) (logr.Logger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	cfg.Encoding = "console"
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zl, err := cfg.Build()
	if err != nil {
		return logr.Logger{}, err
	}
	return zapr.NewLogger(zl), nil
}
