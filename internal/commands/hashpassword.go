package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/klabast/wb-services/time-travel/internal/app"
)

var ErrInterrupted = errors.New("interrupted")

// HashPasswordOptions configures the hash-password subcommand
type HashPasswordOptions struct {
	AuthFile       string
	Overwrite      bool
	InsecureUnmask bool
	In             io.Reader
	Out            io.Writer
}

// HashPassword asks for username and password and writes the auth file
func HashPassword(opts HashPasswordOptions) error {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	path, err := app.ResolveAuthFile(opts.AuthFile)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(opts.In)

	fmt.Fprint(opts.Out, "Enter username: ")
	username, err := readLine(reader)
	if err != nil {
		return fmt.Errorf("error reading username: %w", err)
	}
	if username == "" {
		return errors.New("username cannot be empty")
	}

	var password, passwordConfirm string
	fd, masked := terminalFD(opts.In)
	if opts.InsecureUnmask || !masked {
		if opts.InsecureUnmask {
			fmt.Fprintln(opts.Out, "⚠️  WARNING: Password will be visible on screen!")
		}
		fmt.Fprint(opts.Out, "Enter password:   ")
		if password, err = readLine(reader); err != nil {
			return fmt.Errorf("error reading password: %w", err)
		}
		fmt.Fprint(opts.Out, "Confirm password: ")
		if passwordConfirm, err = readLine(reader); err != nil {
			return fmt.Errorf("error reading password confirmation: %w", err)
		}
	} else {
		if password, err = readPasswordWithMask(fd, reader, opts.Out, "Enter password:   "); err != nil {
			return err
		}
		if passwordConfirm, err = readPasswordWithMask(fd, reader, opts.Out, "Confirm password: "); err != nil {
			return err
		}
	}

	if password == "" {
		return errors.New("password cannot be empty")
	}
	if password != passwordConfirm {
		return errors.New("passwords do not match")
	}

	err = app.CreateAuthFile(path, username, password, opts.Overwrite)
	if errors.Is(err, app.ErrAuthFileExists) {
		fmt.Fprintf(opts.Out, "Auth file %s already exists. Overwrite? [y/N]: ", path)
		answer, rerr := readLine(reader)
		answer = strings.ToLower(strings.TrimSpace(answer))
		if rerr != nil || (answer != "y" && answer != "yes") {
			return fmt.Errorf("aborted: %w", err)
		}
		err = app.CreateAuthFile(path, username, password, true)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(opts.Out, "✓ Auth file created: %s\n", path)
	fmt.Fprintf(opts.Out, "  User: %s\n", username)
	return nil
}

// readLine reads one line without its line ending. A final line without
// newline is returned as is.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// terminalFD reports the descriptor of in when it is an interactive terminal
func terminalFD(in io.Reader) (int, bool) {
	f, ok := in.(*os.File)
	if !ok {
		return 0, false
	}
	fd := int(f.Fd())
	return fd, term.IsTerminal(fd)
}

// readPasswordWithMask reads password input and displays asterisks
func readPasswordWithMask(fd int, reader *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		// Fallback to hidden input
		password, err := term.ReadPassword(fd)
		fmt.Fprintln(out)
		return string(password), err
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	var password []byte
	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		switch char {
		case '\n', '\r': // Enter key
			fmt.Fprint(out, "\r\n")
			return string(password), nil
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				// Clear the asterisk: backspace, space, backspace
				fmt.Fprint(out, "\b \b")
			}
		case 3: // Ctrl+C
			fmt.Fprint(out, "\r\n")
			return "", ErrInterrupted
		default:
			// Only accept printable characters
			if char >= 32 && char <= 126 {
				password = append(password, byte(char))
				fmt.Fprint(out, "*")
			}
		}
	}

	fmt.Fprint(out, "\r\n")
	return string(password), nil
}
