package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/target/positions-ui/internal/adapters/filestore"
	"github.com/target/positions-ui/internal/apiclient"
	"github.com/target/positions-ui/internal/domain/position"
	"github.com/target/positions-ui/internal/ports"
	"github.com/target/positions-ui/internal/service"
)

var errNotLoggedIn = errors.New("not logged in; run positions-admin login first")

type loginOptions struct {
	Username string
	Password string
}

type positionOptions struct {
	ID   int
	Code string
	Name string
	Yes  bool
}

func runLogin(cmdCtx *commandContext, args []string) error {
	opts, err := parseLoginFlags(args)
	if err != nil {
		return err
	}
	if opts.Username == "" {
		return errors.New("username is required (-u)")
	}
	if opts.Password == "" {
		if err := writef(cmdCtx.Out, "Password: "); err != nil {
			return err
		}
		if opts.Password, err = cmdCtx.readLine(); err != nil {
			return err
		}
		if opts.Password == "" {
			return errors.New("password is required")
		}
	}

	client, err := cmdCtx.apiClient()
	if err != nil {
		return err
	}
	creds, err := cmdCtx.credentials()
	if err != nil {
		return err
	}

	token, err := apiclient.NewAccountClient(client).Login(cmdCtx.Ctx, opts.Username, opts.Password)
	if err != nil {
		cmdCtx.Logger.Debug("login rejected", "error", err)
		return errors.New(apiclient.UserMessage(err, service.LoginFailedMessage))
	}
	if err := creds.Save(cmdCtx.Ctx, token); err != nil {
		return err
	}

	return writef(cmdCtx.Out, "Logged in as %s\n", service.DisplayIdentity(token).DisplayName())
}

func runLogout(cmdCtx *commandContext, _ []string) error {
	creds, err := cmdCtx.credentials()
	if err != nil {
		return err
	}
	if err := creds.Clear(cmdCtx.Ctx); err != nil {
		return err
	}
	return writef(cmdCtx.Out, "Logged out\n")
}

func runWhoami(cmdCtx *commandContext, _ []string) error {
	creds, err := cmdCtx.credentials()
	if err != nil {
		return err
	}
	token, err := creds.Get(cmdCtx.Ctx)
	if err != nil {
		if errors.Is(err, ports.ErrNoCredential) {
			return errNotLoggedIn
		}
		return err
	}

	id := service.DisplayIdentity(token)
	if err := writef(cmdCtx.Out, "Username: %s\n", id.DisplayName()); err != nil {
		return err
	}
	if id.Subject != "" {
		if err := writef(cmdCtx.Out, "Subject:  %s\n", id.Subject); err != nil {
			return err
		}
	}
	if !id.ExpiresAt.IsZero() {
		return writef(cmdCtx.Out, "Expires:  %s\n", id.ExpiresAt.Local().Format(time.RFC3339))
	}
	return nil
}

func runList(cmdCtx *commandContext, _ []string) error {
	ctrl, err := cmdCtx.controller()
	if err != nil {
		return err
	}
	if err := ctrl.List(cmdCtx.Ctx); err != nil {
		return controllerError(ctrl, err)
	}
	return printPositions(cmdCtx.Out, ctrl.Snapshot().Positions)
}

func runCreate(cmdCtx *commandContext, args []string) error {
	opts, err := parsePositionFlags("create", args, false)
	if err != nil {
		return err
	}
	ctrl, err := cmdCtx.controller()
	if err != nil {
		return err
	}
	if err := ctrl.Create(cmdCtx.Ctx, position.Input{PositionCode: opts.Code, PositionName: opts.Name}); err != nil {
		return controllerError(ctrl, err)
	}
	if err := writef(cmdCtx.Out, "Created position %s\n", strings.TrimSpace(opts.Code)); err != nil {
		return err
	}
	return printPositions(cmdCtx.Out, ctrl.Snapshot().Positions)
}

func runUpdate(cmdCtx *commandContext, args []string) error {
	opts, err := parsePositionFlags("update", args, true)
	if err != nil {
		return err
	}
	ctrl, err := cmdCtx.controller()
	if err != nil {
		return err
	}
	if err := ctrl.Update(cmdCtx.Ctx, opts.ID, position.Input{PositionCode: opts.Code, PositionName: opts.Name}); err != nil {
		return controllerError(ctrl, err)
	}
	if err := writef(cmdCtx.Out, "Updated position %d\n", opts.ID); err != nil {
		return err
	}
	return printPositions(cmdCtx.Out, ctrl.Snapshot().Positions)
}

func runDelete(cmdCtx *commandContext, args []string) error {
	opts, err := parsePositionFlags("delete", args, true)
	if err != nil {
		return err
	}
	ctrl, err := cmdCtx.controller()
	if err != nil {
		return err
	}
	// Load the list first so the prompt can name the position.
	if err := ctrl.List(cmdCtx.Ctx); err != nil {
		return controllerError(ctrl, err)
	}

	confirm := ports.ConfirmFunc(func(_ context.Context, p position.Position) bool {
		if opts.Yes {
			return true
		}
		label := strconv.Itoa(p.ID)
		if p.PositionCode != "" {
			label = fmt.Sprintf("%s (%s)", p.PositionCode, p.PositionName)
		}
		return cmdCtx.confirm("Delete position " + label + "?")
	})

	if err := ctrl.Delete(cmdCtx.Ctx, opts.ID, confirm); err != nil {
		if errors.Is(err, service.ErrDeleteNotConfirmed) {
			return errAborted
		}
		return controllerError(ctrl, err)
	}
	return writef(cmdCtx.Out, "Deleted position %d\n", opts.ID)
}

// controllerError turns a failed controller operation into the message the
// controller recorded for it.
func controllerError(ctrl *service.PositionController, err error) error {
	if errors.Is(err, ports.ErrNoCredential) {
		return errNotLoggedIn
	}
	view := ctrl.Snapshot()
	if len(view.FieldErrors) > 0 {
		fields := make([]string, 0, len(view.FieldErrors))
		for field := range view.FieldErrors {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		msgs := make([]string, 0, len(fields))
		for _, field := range fields {
			msgs = append(msgs, view.FieldErrors[field])
		}
		return fmt.Errorf("invalid input: %s", strings.Join(msgs, " "))
	}
	if view.Error != "" {
		return errors.New(view.Error)
	}
	return err
}

func printPositions(w io.Writer, list []position.Position) error {
	if len(list) == 0 {
		return writef(w, "No positions yet.\n")
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	if err := writef(tw, "ID\tCODE\tNAME\n"); err != nil {
		return err
	}
	for _, p := range list {
		if err := writef(tw, "%d\t%s\t%s\n", p.ID, p.PositionCode, p.PositionName); err != nil {
			return err
		}
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}
	return nil
}

func (c *commandContext) credentials() (*filestore.CredentialStore, error) {
	creds, err := filestore.NewCredentialStore(c.Config.CLI.CredentialFile)
	if err != nil {
		return nil, fmt.Errorf("credential store: %w", err)
	}
	return creds, nil
}

func (c *commandContext) apiClient() (*apiclient.Client, error) {
	client, err := apiclient.New(apiclient.Config{
		BaseURL:     c.Config.API.BaseURL,
		Timeout:     c.Config.API.Timeout,
		TokenPath:   c.Config.API.TokenPath,
		MessagePath: c.Config.API.MessagePath,
		Logger:      c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("api client: %w", err)
	}
	return client, nil
}

// controller returns a PositionController bound to the stored credential.
func (c *commandContext) controller() (*service.PositionController, error) {
	client, err := c.apiClient()
	if err != nil {
		return nil, err
	}
	creds, err := c.credentials()
	if err != nil {
		return nil, err
	}
	return service.NewPositionController(service.PositionControllerOptions{
		API:    apiclient.NewPositionsClient(client, creds),
		Logger: c.Logger,
	}), nil
}

func parseLoginFlags(args []string) (loginOptions, error) {
	var opts loginOptions
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&opts.Username, "u", "", "username")
	fs.StringVar(&opts.Username, "username", "", "username")
	fs.StringVar(&opts.Password, "p", "", "password (prompted when omitted)")
	fs.StringVar(&opts.Password, "password", "", "password (prompted when omitted)")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("parse flags: %w", err)
	}
	opts.Username = strings.TrimSpace(opts.Username)
	return opts, nil
}

// parsePositionFlags parses -id, -code, -name and -yes. The ID may also be
// given as the first positional argument.
func parsePositionFlags(name string, args []string, needID bool) (positionOptions, error) {
	var opts positionOptions
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.IntVar(&opts.ID, "id", 0, "position id")
	fs.StringVar(&opts.Code, "code", "", "position code")
	fs.StringVar(&opts.Name, "name", "", "position name")
	fs.BoolVar(&opts.Yes, "yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return opts, fmt.Errorf("parse flags: %w", err)
	}

	if opts.ID == 0 && fs.NArg() > 0 {
		id, err := strconv.Atoi(fs.Arg(0))
		if err != nil {
			return opts, fmt.Errorf("invalid position id %q", fs.Arg(0))
		}
		opts.ID = id
	}
	if needID && opts.ID <= 0 {
		return opts, errors.New("a positive position id is required (-id)")
	}
	return opts, nil
}
