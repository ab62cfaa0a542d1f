// Command positions-admin manages positions from a terminal and inspects the
// web front end's session store.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/target/positions-ui/config"
	"github.com/target/positions-ui/internal/bootstrap"
)

type commandFn func(ctx *commandContext, args []string) error

type command struct {
	name        string
	description string
	run         commandFn
}

type commandContext struct {
	Ctx    context.Context
	Logger *slog.Logger
	Config config.AppConfig
	In     io.Reader
	Out    io.Writer

	reader *bufio.Reader
}

var (
	errUnknownCommand = errors.New("unknown command")
	errAborted        = errors.New("aborted by user")
)

func main() {
	logger := bootstrap.InitLogger(false)

	if len(os.Args) < 2 {
		if err := printUsage(os.Stdout); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when no command is provided
	}

	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		logger.ErrorContext(context.Background(), "load config", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must signal configuration load failure to shell scripts
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	cmdCtx := &commandContext{
		Ctx:    ctx,
		Logger: logger,
		Config: cfg,
		In:     os.Stdin,
		Out:    os.Stdout,
	}
	runErr := runCommand(cmdCtx, os.Args[1:])
	stop()

	switch {
	case runErr == nil:
	case errors.Is(runErr, errUnknownCommand):
		if err := writef(os.Stderr, "%v\n\n", runErr); err != nil {
			logger.Error("print unknown command message failed", "error", err)
		}
		if err := printUsage(os.Stderr); err != nil {
			logger.Error("print usage failed", "error", err)
		}
		os.Exit(2) //nolint:forbidigo // CLI must exit with failure status when command is unknown
	default:
		if err := writef(os.Stderr, "error: %v\n", runErr); err != nil {
			logger.Error("print command error failed", "error", err)
		}
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

// runCommand dispatches args[0] to its command.
func runCommand(cmdCtx *commandContext, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("%w: none given", errUnknownCommand)
	}
	cmd, ok := commands()[args[0]]
	if !ok {
		return fmt.Errorf("%w %q", errUnknownCommand, args[0])
	}
	return cmd.run(cmdCtx, args[1:])
}

func commands() map[string]command {
	return map[string]command{
		"login": {
			name:        "login",
			description: "Log in to the positions API and store the token (-u user [-p password])",
			run:         runLogin,
		},
		"logout": {
			name:        "logout",
			description: "Remove the stored token",
			run:         runLogout,
		},
		"whoami": {
			name:        "whoami",
			description: "Show who the stored token belongs to",
			run:         runWhoami,
		},
		"list": {
			name:        "list",
			description: "List positions",
			run:         runList,
		},
		"create": {
			name:        "create",
			description: "Create a position (-code CODE -name NAME)",
			run:         runCreate,
		},
		"update": {
			name:        "update",
			description: "Update a position (-id ID -code CODE -name NAME)",
			run:         runUpdate,
		},
		"delete": {
			name:        "delete",
			description: "Delete a position after confirmation (-id ID [-yes])",
			run:         runDelete,
		},
		"sessions-list": {
			name:        "sessions-list",
			description: "Inspect web sessions stored in Redis",
			run:         runSessionsList,
		},
		"sessions-purge": {
			name:        "sessions-purge",
			description: "Delete every web session from Redis ([-yes])",
			run:         runSessionsPurge,
		},
	}
}

func printUsage(w io.Writer) error {
	if err := writef(w, "Usage: positions-admin <command> [flags]\n\nAvailable commands:\n"); err != nil {
		return err
	}
	cmds := commands()
	names := make([]string, 0, len(cmds))
	for name := range cmds {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if err := writef(w, "  %-16s %s\n", name, cmds[name].description); err != nil {
			return err
		}
	}
	return nil
}

// readLine reads one line of user input without the trailing newline.
func (c *commandContext) readLine() (string, error) {
	if c.reader == nil {
		c.reader = bufio.NewReader(c.In)
	}
	line, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// confirm asks a y/N question; anything but y or yes declines.
func (c *commandContext) confirm(prompt string) bool {
	if err := writef(c.Out, "%s [y/N]: ", prompt); err != nil {
		return false
	}
	resp, err := c.readLine()
	if err != nil {
		return false
	}
	resp = strings.ToLower(strings.TrimSpace(resp))
	return resp == "y" || resp == "yes"
}

func writef(w io.Writer, format string, args ...any) error {
	if _, err := fmt.Fprintf(w, format, args...); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}
