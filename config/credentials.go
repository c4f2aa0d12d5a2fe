package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
)

// ErrNoToken is returned when no credential source produced a token
var ErrNoToken = errors.New("no API token found: set api_token, QUALTRICS_API_TOKEN or run interactively")

// TokenEnvVar is the variable read from the environment and from dotenv files
const TokenEnvVar = EnvPrefix + "_API_TOKEN"

// TokenSource is one strategy for obtaining the API token. An empty token
// with a nil error means the source had nothing to offer.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// TokenSourceFunc adapts a function to TokenSource
type TokenSourceFunc func(ctx context.Context) (string, error)

// Token implements TokenSource
func (f TokenSourceFunc) Token(ctx context.Context) (string, error) {
	return f(ctx)
}

// Resolve asks each source in order and returns the first token found.
func Resolve(ctx context.Context, sources ...TokenSource) (string, error) {
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		token, err := src.Token(ctx)
		if err != nil {
			return "", err
		}
		if token = strings.TrimSpace(token); token != "" {
			return token, nil
		}
	}
	return "", ErrNoToken
}

// FromConfig offers the token from the loaded configuration, which already
// includes the QUALTRICS_API_TOKEN environment override.
func FromConfig(cfg *Config) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, error) {
		if cfg == nil {
			return "", nil
		}
		return cfg.APIToken, nil
	})
}

// FromDotenv offers QUALTRICS_API_TOKEN from a dotenv file. A missing file
// is skipped.
func FromDotenv(path string) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, error) {
		envs, err := godotenv.Read(path)
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("cannot read env file %q: %w", path, err)
		}
		return envs[TokenEnvVar], nil
	})
}

// FromPrompt asks for the token with a hidden password prompt. It is
// skipped when stdio.In is not a terminal.
func FromPrompt(stdio terminal.Stdio) TokenSource {
	return TokenSourceFunc(func(context.Context) (string, error) {
		if !isTerminal(stdio.In) {
			return "", nil
		}

		var token string
		prompt := &survey.Password{Message: "Qualtrics API token:"}
		if err := survey.AskOne(prompt, &token, survey.WithStdio(stdio.In, stdio.Out, stdio.Err), survey.WithValidator(survey.Required)); err != nil {
			if errors.Is(err, terminal.InterruptErr) {
				return "", fmt.Errorf("token prompt cancelled: %w", err)
			}
			return "", fmt.Errorf("token prompt failed: %w", err)
		}
		return token, nil
	})
}

// StdioPrompt is FromPrompt on the process's standard streams.
func StdioPrompt() TokenSource {
	return FromPrompt(terminal.Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
}

func isTerminal(in terminal.FileReader) bool {
	if in == nil {
		return false
	}
	fd := in.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
