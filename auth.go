package invitekit

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// terminalAuth prompts on the terminal for the login code and the 2FA
// password during interactive authorization. The phone number comes
// from the configuration when set.
type terminalAuth struct {
	phone string
	in    *bufio.Reader
	out   io.Writer
}

func newTerminalAuth(phone string) terminalAuth {
	return terminalAuth{phone: phone, in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

func (a terminalAuth) Phone(_ context.Context) (string, error) {
	if a.phone != "" {
		return a.phone, nil
	}
	return a.prompt("Enter phone number: ")
}

func (a terminalAuth) Code(_ context.Context, _ *tg.AuthSentCode) (string, error) {
	return a.prompt("Enter the code you received: ")
}

func (a terminalAuth) Password(_ context.Context) (string, error) {
	return a.prompt("Enter your 2FA password: ")
}

func (a terminalAuth) AcceptTermsOfService(_ context.Context, _ tg.HelpTermsOfService) error {
	return nil
}

func (a terminalAuth) SignUp(_ context.Context) (auth.UserInfo, error) {
	return auth.UserInfo{}, errors.New("invitekit: sign up is not supported")
}

func (a terminalAuth) prompt(msg string) (string, error) {
	if _, err := fmt.Fprint(a.out, msg); err != nil {
		return "", err
	}
	line, err := a.in.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
