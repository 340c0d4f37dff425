package sugarlib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/mattn/go-isatty"
	"github.com/sugar-tools/sugar/internal/sugarlib/config"
	"github.com/sugar-tools/sugar/pkg/jsonapi"
	"github.com/sugar-tools/sugar/pkg/webtoken"
)

const defaultAuthPath = "authentication"

type LoginCommandArguments struct {
	Host     string
	URI      string
	AuthPath string
	Username string
	Password string
	Out      io.Writer
}

// prompt asks the user for a value; 'mask' hides what is typed when not 0
var prompt = func(label string, mask rune) (string, error) {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return "", fmt.Errorf("%s is required", strings.ToLower(label))
	}
	p := promptui.Prompt{
		Label: label,
		Mask:  mask,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("cannot be empty")
			}
			return nil
		},
	}
	return p.Run()
}

/*
LoginCommand
Exchange a username and password for a token and save it (not the password)
in the root configuration, under the host's section. Missing credentials are
asked for interactively.
*/
func LoginCommand(
	ctx context.Context,
	cfg *config.RootConfig,
	api jsonapi.Connection,
	arguments LoginCommandArguments,
) error {
	host, err := GetHost(cfg, arguments.Host, arguments.URI, "")
	if err != nil {
		return err
	}

	username := arguments.Username
	if username == "" {
		username = host.Username
	}
	if username == "" {
		if username, err = prompt("Username", 0); err != nil {
			return err
		}
	}
	password := arguments.Password
	if password == "" {
		password = host.Password
	}
	if password == "" {
		if password, err = prompt("Password", '*'); err != nil {
			return err
		}
	}

	authPath := arguments.AuthPath
	if authPath == "" {
		authPath = defaultAuthPath
	}
	tokens := webtoken.New(
		strings.Join([]string{
			strings.TrimRight(host.Host, "/"),
			host.URI,
			strings.TrimLeft(authPath, "/"),
		}, "/"),
		map[string]interface{}{"username": username, "password": password},
		&api,
	)
	if err := tokens.Authenticate(ctx); err != nil {
		var e *jsonapi.Error
		if errors.As(err, &e) {
			return fmt.Errorf("authentication failed: %s", errorsSummary(e.Errors))
		}
		return err
	}

	host.Username = username
	host.Password = ""
	host.Token = tokens.Token()
	cfg.SetHost(host)
	if err := cfg.Save(); err != nil {
		return err
	}

	out := arguments.Out
	if out == nil {
		out = os.Stdout
	}
	message := fmt.Sprintf("Logged in to %s as %s", host.Host, username)
	if expiresAt, ok := tokens.ExpiresAt(); ok {
		message += fmt.Sprintf(", token expires at %s",
			expiresAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(out, message)
	return nil
}
