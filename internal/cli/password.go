package cli

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptPassword reads a password from the terminal without echo, the way
// psql -W does. Returns an error when stdin is not a terminal; piped and
// CI invocations must use $PGPASSWORD, ~/.pgpass, or a connection string.
func promptPassword(username string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("cannot prompt for password: stdin is not a terminal\n" +
			"Use $PGPASSWORD, ~/.pgpass, or a connection string instead")
	}

	if username != "" {
		fmt.Fprintf(os.Stderr, "Password for user %s: ", username)
	} else {
		fmt.Fprint(os.Stderr, "Password: ")
	}

	password, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(password), nil
}
