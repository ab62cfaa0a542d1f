package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	redisadapter "github.com/target/positions-ui/internal/adapters/redis"
	"github.com/target/positions-ui/internal/bootstrap"
)

const sessionIDDisplayLen = 8

// withSessionStore connects to Redis for the duration of fn.
func withSessionStore(cmdCtx *commandContext, fn func(*redisadapter.SessionStore) error) error {
	client, err := bootstrap.ConnectRedis(cmdCtx.Ctx, bootstrap.RedisConnectConfig{
		Redis:  cmdCtx.Config.Redis,
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return fmt.Errorf("connect redis: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			cmdCtx.Logger.Warn("redis close failed", "error", closeErr)
		}
	}()
	return fn(redisadapter.NewSessionStoreWithPrefix(client, cmdCtx.Config.Session.KeyPrefix))
}

func runSessionsList(cmdCtx *commandContext, _ []string) error {
	return withSessionStore(cmdCtx, func(store *redisadapter.SessionStore) error {
		sessions, err := store.List(cmdCtx.Ctx)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			return writef(cmdCtx.Out, "No sessions.\n")
		}

		tw := tabwriter.NewWriter(cmdCtx.Out, 0, 4, 2, ' ', 0)
		if err := writef(tw, "ID\tCREDENTIAL\tCREATED\tEXPIRES\tTTL\n"); err != nil {
			return err
		}
		for _, s := range sessions {
			if err := writef(tw, "%s\t%s\t%s\t%s\t%s\n",
				shortID(s.ID),
				yesNo(s.HasCredential),
				formatTime(s.CreatedAt),
				formatTime(s.ExpiresAt),
				s.TTL.Round(time.Second),
			); err != nil {
				return err
			}
		}
		if err := tw.Flush(); err != nil {
			return fmt.Errorf("flush output: %w", err)
		}
		return writef(cmdCtx.Out, "%d session(s)\n", len(sessions))
	})
}

func runSessionsPurge(cmdCtx *commandContext, args []string) error {
	fs := flag.NewFlagSet("sessions-purge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	if !*yes && !cmdCtx.confirm("This will sign out every browser session. Continue?") {
		return errAborted
	}

	return withSessionStore(cmdCtx, func(store *redisadapter.SessionStore) error {
		removed, err := store.Purge(cmdCtx.Ctx)
		if err != nil {
			return err
		}
		cmdCtx.Logger.Info("sessions purged", "removed", removed)
		return writef(cmdCtx.Out, "Removed %d session(s)\n", removed)
	})
}

func shortID(id string) string {
	if len(id) <= sessionIDDisplayLen {
		return id
	}
	return id[:sessionIDDisplayLen]
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
