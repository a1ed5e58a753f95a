package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

func TestSetupLogger(t *testing.T) {
	newApp := func() *cli.App {
		return &cli.App{
			Name: "test",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "log-level",
					Value: "info",
				},
			},
			Before: setupLogger,
			Action: func(c *cli.Context) error {
				return nil
			},
		}
	}

	t.Run("valid log levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("case insensitive log levels", func(t *testing.T) {
		for _, level := range []string{"DEBUG", "Info", "WaRn", "ERROR"} {
			t.Run(level, func(t *testing.T) {
				err := newApp().Run([]string{"test", "--log-level", level})
				require.NoError(t, err)
			})
		}
	})

	t.Run("invalid log level returns error", func(t *testing.T) {
		err := newApp().Run([]string{"test", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
		assert.Contains(t, err.Error(), "loud")
	})
}

func TestExtractCommandFlags(t *testing.T) {
	app := &cli.App{
		Name: "spanbase",
		Commands: []*cli.Command{
			{
				Name:   "extract",
				Action: extractCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Required: true,
					},
					&cli.StringFlag{
						Name:     "set",
						Aliases:  []string{"s"},
						Required: true,
					},
					&cli.IntFlag{
						Name:  "max-n",
						Value: 3,
					},
				},
			},
		},
	}

	t.Run("db is required", func(t *testing.T) {
		err := app.Run([]string{"spanbase", "extract", "--set", "spans"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "db")
	})

	t.Run("set is required", func(t *testing.T) {
		err := app.Run([]string{"spanbase", "extract", "--db", t.TempDir()})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "set")
	})

	t.Run("max-n defaults to 3", func(t *testing.T) {
		cmd := app.Commands[0]
		var maxNFlag *cli.IntFlag
		for _, flag := range cmd.Flags {
			if f, ok := flag.(*cli.IntFlag); ok && f.Name == "max-n" {
				maxNFlag = f
				break
			}
		}
		require.NotNil(t, maxNFlag)
		assert.Equal(t, 3, maxNFlag.Value)
	})
}
