// Package admin implements the account administration commands of ownaictl.
package admin

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	logicv1 "github.com/programmeradu/ownai/internal/logic/v1"
)

// ErrUnknownCommand is returned by Run for an unrecognized command name.
var ErrUnknownCommand = errors.New("unknown command")

// Usage lists the available commands.
const Usage = `Usage: ownaictl <command>

Commands:
  add-user      register a new user
  set-password  set the password of an existing user
`

// Commands runs administration commands against the credential store.
type Commands struct {
	creds  *logicv1.CredentialStore
	prompt *Prompter
	out    io.Writer
}

// NewCommands creates Commands that prompt through p and report to out.
func NewCommands(creds *logicv1.CredentialStore, p *Prompter, out io.Writer) *Commands {
	return &Commands{creds: creds, prompt: p, out: out}
}

// Run dispatches the command named by args[0].
func (c *Commands) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: none given", ErrUnknownCommand)
	}
	switch args[0] {
	case "add-user":
		return c.AddUser(ctx)
	case "set-password":
		return c.SetPassword(ctx)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, args[0])
	}
}

// AddUser prompts for a username and password and registers the user.
func (c *Commands) AddUser(ctx context.Context) error {
	username, err := c.prompt.Line("Username")
	if err != nil {
		return err
	}
	password, err := c.prompt.NewPassword()
	if err != nil {
		return err
	}

	id, err := c.creds.AddUser(ctx, username, password)
	if err != nil {
		if errors.Is(err, logicv1.ErrUserExists) {
			fmt.Fprintf(c.out, "User %s is already registered.\n", username)
		}
		return err
	}

	log.Info().Int("user_id", id).Str("username", username).Msg("User registered")
	fmt.Fprintln(c.out, "Registration successful.")
	return nil
}

// SetPassword prompts for a username and a new password and stores it.
func (c *Commands) SetPassword(ctx context.Context) error {
	username, err := c.prompt.Line("Username")
	if err != nil {
		return err
	}
	password, err := c.prompt.NewPassword()
	if err != nil {
		return err
	}

	if err := c.creds.SetPassword(ctx, username, password); err != nil {
		if errors.Is(err, logicv1.ErrUserNotFound) {
			fmt.Fprintf(c.out, "User %s does not exist.\n", username)
		}
		return err
	}

	log.Info().Str("username", username).Msg("Password set")
	fmt.Fprintln(c.out, "Successfully set the password.")
	return nil
}
