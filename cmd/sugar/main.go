package sugar

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/sugar-tools/sugar/internal/sugarlib"
	"github.com/sugar-tools/sugar/internal/sugarlib/config"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
	"github.com/urfave/cli/v2"
)

var errorColor = color.New(color.FgRed).SprintfFunc()

// connection builds the API connection and resolves the host from the global
// flags and the root configuration
func connection(c *cli.Context) (config.Host, jsonapi.Connection, error) {
	var api jsonapi.Connection

	cfg, err := config.Load(c.String("root-config"))
	if err != nil {
		return config.Host{}, api, fmt.Errorf(
			"error loading configuration: %w", err,
		)
	}
	host, err := sugarlib.GetHost(
		cfg, c.String("host"), c.String("uri"), c.String("token"),
	)
	if err != nil {
		return config.Host{}, api, err
	}

	client, err := sugarlib.GetClient(c.String("cacert"))
	if err != nil {
		return config.Host{}, api, fmt.Errorf(
			"error getting HTTP client configuration: %w", err,
		)
	}
	api = jsonapi.Connection{
		Client: client,
		Headers: map[string]string{
			"User-Agent": "sugar/" + sugarlib.Version,
		},
		Logger: logger(c),
	}
	return host, api, nil
}

func logger(c *cli.Context) hclog.Logger {
	level := hclog.Warn
	if c.Bool("verbose") {
		level = hclog.Debug
	}
	return hclog.New(&hclog.LoggerOptions{
		Name:   "sugar",
		Level:  level,
		Output: os.Stderr,
		Color:  hclog.AutoColor,
	})
}

func modelOptions(c *cli.Context) sugarlib.ModelOptions {
	return sugarlib.ModelOptions{
		Type:        c.Args().First(),
		IDAttribute: c.String("id-attribute"),
		Workers:     c.Int("workers"),
		Logger:      logger(c),
	}
}

func Main() {
	if !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
	cli.VersionPrinter = func(c *cli.Context) {
		fmt.Println("Sugar Client, version=" + c.App.Version)
	}
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "root-config",
			Usage: "Root configuration from `FILE`",
		},
		&cli.StringFlag{
			Name:    "host",
			Aliases: []string{"H"},
			Usage:   "The API host, eg. http://localhost:8080",
			EnvVars: []string{"SUGAR_HOST"},
		},
		&cli.StringFlag{
			Name:    "uri",
			Aliases: []string{"u"},
			Usage:   "The API path prefix (default: v1)",
			EnvVars: []string{"SUGAR_URI"},
		},
		&cli.StringFlag{
			Name:    "token",
			Aliases: []string{"t"},
			Usage:   "The api token to use",
			EnvVars: []string{"SUGAR_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "cacert",
			Usage:   "Path to CA certificate bundle file",
			EnvVars: []string{"SUGAR_CACERT"},
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log requests to stderr",
		},
	}
	modelFlags := []cli.Flag{
		&cli.StringFlag{
			Name:  "id-attribute",
			Usage: "Attribute that holds the id in the output",
			Value: "id",
		},
		&cli.IntFlag{
			Name:  "workers",
			Usage: "How many requests to run at the same time",
			Value: 5,
		},
	}

	app := &cli.App{
		Version:                sugarlib.Version,
		UseShortOptionHandling: true,
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "sugar login [--username USERNAME] [--password PASSWORD]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "username",
						Usage: "Username to authenticate with",
					},
					&cli.StringFlag{
						Name:    "password",
						Usage:   "Password to authenticate with",
						EnvVars: []string{"SUGAR_PASSWORD"},
					},
					&cli.StringFlag{
						Name:  "auth-path",
						Usage: "Path of the authentication endpoint, under --uri",
						Value: "authentication",
					},
				},
				Action: func(c *cli.Context) error {
					cfg, err := config.Load(c.String("root-config"))
					if err != nil {
						return cli.Exit(errorColor(
							"Error loading configuration: %s", err,
						), 1)
					}
					client, err := sugarlib.GetClient(c.String("cacert"))
					if err != nil {
						return cli.Exit(errorColor(
							"Error getting HTTP client configuration: %s",
							err,
						), 1)
					}
					api := jsonapi.Connection{Client: client, Logger: logger(c)}

					err = sugarlib.LoginCommand(
						context.Background(), cfg, api,
						sugarlib.LoginCommandArguments{
							Host:     c.String("host"),
							URI:      c.String("uri"),
							AuthPath: c.String("auth-path"),
							Username: c.String("username"),
							Password: c.String("password"),
						},
					)
					if err != nil {
						if err == promptui.ErrInterrupt {
							return cli.Exit("", 1)
						}
						return cli.Exit(errorColor("%s", err), 1)
					}
					return nil
				},
			},
			{
				Name:  "get",
				Usage: "sugar get TYPE ID...",
				Flags: modelFlags,
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 2 {
						return cli.Exit(errorColor(
							"Please provide a type and at least one id",
						), 1)
					}
					host, api, err := connection(c)
					if err != nil {
						return cli.Exit(errorColor("%s", err), 1)
					}
					err = sugarlib.GetCommand(
						context.Background(), host, api,
						&sugarlib.GetCommandArguments{
							ModelOptions: modelOptions(c),
							Ids:          c.Args().Tail(),
						},
					)
					if err != nil {
						return cli.Exit(errorColor("%s", err), 1)
					}
					return nil
				},
			},
			{
				Name:  "save",
				Usage: "sugar save [--id ID] TYPE key=value...",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "id",
						Usage: "Update the resource with this id instead of creating one",
					},
				}, modelFlags...),
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 1 {
						return cli.Exit(errorColor("Please provide a type"), 1)
					}
					host, api, err := connection(c)
					if err != nil {
						return cli.Exit(errorColor("%s", err), 1)
					}
					err = sugarlib.SaveCommand(
						context.Background(), host, api,
						&sugarlib.SaveCommandArguments{
							ModelOptions: modelOptions(c),
							Id:           c.String("id"),
							Assignments:  c.Args().Tail(),
						},
					)
					if err != nil {
						return cli.Exit(errorColor("%s", err), 1)
					}
					return nil
				},
			},
			{
				Name:    "delete",
				Aliases: []string{"rm"},
				Usage:   "sugar delete TYPE ID...",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "strict",
						Usage: "Stop at the first failed deletion",
					},
				}, modelFlags...),
				Action: func(c *cli.Context) error {
					if c.Args().Len() < 2 {
						return cli.Exit(errorColor(
							"Please provide a type and at least one id",
						), 1)
					}
					host, api, err := connection(c)
					if err != nil {
						return cli.Exit(errorColor("%s", err), 1)
					}
					err = sugarlib.DeleteCommand(
						context.Background(), host, api,
						&sugarlib.DeleteCommandArguments{
							ModelOptions: modelOptions(c),
							Ids:          c.Args().Tail(),
							Strict:       c.Bool("strict"),
						},
					)
					if err != nil {
						return cli.Exit(errorColor("%s", err), 1)
					}
					return nil
				},
			},
		},
		Flags: flags,
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
