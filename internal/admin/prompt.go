package admin

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// Test seams for the terminal.
var (
	readPassword = term.ReadPassword
	isTerminal   = term.IsTerminal
)

// ErrNoInput is returned when input ends before a value was entered.
var ErrNoInput = errors.New("no input")

// Prompter asks for values on an interactive console. Passwords are read
// without echo when fd is a terminal and as plain lines otherwise, so
// commands can be scripted through a pipe.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
	fd  int
}

// NewPrompter creates a Prompter reading lines from in, writing prompts to
// out and reading passwords from the terminal behind fd.
func NewPrompter(in io.Reader, out io.Writer, fd int) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out, fd: fd}
}

// Line prompts for a single trimmed, non-empty line.
func (p *Prompter) Line(prompt string) (string, error) {
	for {
		if _, err := fmt.Fprint(p.out, prompt+": "); err != nil {
			return "", err
		}
		line, err := p.readLine()
		if err != nil {
			return "", err
		}
		if line = strings.TrimSpace(line); line != "" {
			return line, nil
		}
	}
}

// Password prompts for a secret without echo.
func (p *Prompter) Password(prompt string) (string, error) {
	if _, err := fmt.Fprint(p.out, prompt+": "); err != nil {
		return "", err
	}
	if !isTerminal(p.fd) {
		return p.readLine()
	}
	pw, err := readPassword(p.fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(pw), nil
}

// NewPassword prompts for a password and its confirmation until both match.
func (p *Prompter) NewPassword() (string, error) {
	for {
		pw, err := p.Password("Password")
		if err != nil {
			return "", err
		}
		confirm, err := p.Password("Repeat for confirmation")
		if err != nil {
			return "", err
		}
		if pw == confirm {
			return pw, nil
		}
		fmt.Fprintln(p.out, "Error: The two entered values do not match.")
	}
}

func (p *Prompter) readLine() (string, error) {
	line, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrNoInput
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
