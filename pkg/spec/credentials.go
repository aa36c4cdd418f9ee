package spec

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// Credentials is the resolved login material for one device. Never persisted.
type Credentials struct {
	Username string
	Password string
	Port     int
}

// CredentialOptions carries operator-supplied overrides from CLI flags.
// Interactive enables prompting on the terminal as the last resort.
type CredentialOptions struct {
	Username    string
	Password    string
	Port        int
	Interactive bool
}

// Environment variables consulted when neither the config nor flags supply
// a credential.
const (
	EnvUsername = "PREFIXFLOW_USERNAME"
	EnvPassword = "PREFIXFLOW_PASSWORD"
)

// ResolveCredentials determines login material for a router.
// Precedence: router config > explicit flags > environment > interactive
// prompt. Returns an error if a credential cannot be resolved and prompting
// is disabled.
func ResolveCredentials(r Router, opts CredentialOptions) (Credentials, error) {
	creds := Credentials{
		Username: firstNonEmpty(r.Username, opts.Username, os.Getenv(EnvUsername)),
		Password: firstNonEmpty(r.Password, opts.Password, os.Getenv(EnvPassword)),
		Port:     r.Port,
	}
	if creds.Port == 0 {
		creds.Port = opts.Port
	}
	if creds.Port == 0 {
		creds.Port = 22
	}

	host := r.Hostname
	if host == "" {
		host = r.IP
	}

	if creds.Username == "" {
		if !opts.Interactive {
			return Credentials{}, fmt.Errorf("no username for %s (set it in the config, pass --username, or export %s)", host, EnvUsername)
		}
		user, err := promptLine(fmt.Sprintf("Username for %s: ", host))
		if err != nil {
			return Credentials{}, err
		}
		creds.Username = user
	}

	if creds.Password == "" {
		if !opts.Interactive {
			return Credentials{}, fmt.Errorf("no password for %s@%s (set it in the config, pass --password, or export %s)", creds.Username, host, EnvPassword)
		}
		pass, err := promptPassword(fmt.Sprintf("Password for %s@%s: ", creds.Username, host))
		if err != nil {
			return Credentials{}, err
		}
		creds.Password = pass
	}

	return creds, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func promptLine(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("reading input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pass, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pass), nil
}
