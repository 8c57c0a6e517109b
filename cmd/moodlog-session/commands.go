package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrymomot/moodlog/pkg/authapi"
	"github.com/dmitrymomot/moodlog/pkg/session"
)

type command struct {
	flags func(fs *flag.FlagSet) any
	run   func(ctx context.Context, a *app, bound any, out io.Writer) error
}

type credentialFlags struct {
	email    *string
	password *string
	name     *string
	remember *bool
}

func bindCredentials(withName bool) func(fs *flag.FlagSet) any {
	return func(fs *flag.FlagSet) any {
		c := &credentialFlags{
			email:    fs.String("email", "", "account email"),
			password: fs.String("password", "", "account password (default $MOODLOG_PASSWORD)"),
			remember: fs.Bool("remember", false, "keep the session in durable storage"),
		}
		if withName {
			c.name = fs.String("name", "", "display name")
		}
		return c
	}
}

func noFlags(*flag.FlagSet) any { return nil }

func (c *credentialFlags) passwordValue() string {
	if *c.password != "" {
		return *c.password
	}
	return os.Getenv("MOODLOG_PASSWORD")
}

var commands = map[string]command{
	"login":    {flags: bindCredentials(false), run: runLogin},
	"register": {flags: bindCredentials(true), run: runRegister},
	"status":   {flags: noFlags, run: runStatus},
	"token":    {flags: noFlags, run: runToken},
	"logout":   {flags: noFlags, run: runLogout},
	"watch":    {flags: noFlags, run: runWatch},
}

func runLogin(ctx context.Context, a *app, bound any, out io.Writer) error {
	c := bound.(*credentialFlags)
	summary, err := a.store.Login(ctx, authapi.Credentials{
		Email:    *c.email,
		Password: c.passwordValue(),
	}, *c.remember)
	if err != nil {
		return err
	}
	if !*c.remember {
		a.log.WarnContext(ctx, "session is not remembered and ends with this process")
	}
	return printSummary(out, summary)
}

func runRegister(ctx context.Context, a *app, bound any, out io.Writer) error {
	c := bound.(*credentialFlags)
	summary, err := a.store.Register(ctx, authapi.Registration{
		Email:    *c.email,
		Password: c.passwordValue(),
		Name:     *c.name,
	}, *c.remember)
	if err != nil {
		return err
	}
	return printSummary(out, summary)
}

func runStatus(ctx context.Context, a *app, _ any, out io.Writer) error {
	if err := a.health(ctx); err != nil {
		return err
	}
	summary, err := a.store.Restore(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "durable: %s\n", a.durable)
	return printSummary(out, summary)
}

func runToken(ctx context.Context, a *app, _ any, out io.Writer) error {
	if _, err := a.store.Restore(ctx); err != nil {
		return err
	}
	token, err := a.manager.GetToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return session.ErrNoSession
	}
	_, err = fmt.Fprintln(out, token)
	return err
}

func runLogout(ctx context.Context, a *app, _ any, out io.Writer) error {
	if err := a.store.Logout(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, "logged out")
	return err
}

func runWatch(ctx context.Context, a *app, _ any, out io.Writer) error {
	unsubscribe := a.manager.OnStateChanged(func(s session.Summary) {
		_ = printSummary(out, s)
	})
	defer unsubscribe()

	summary, err := a.store.Restore(ctx)
	if err != nil {
		return err
	}
	if err := printSummary(out, summary); err != nil {
		return err
	}

	if err := a.manager.StartSync(ctx); err != nil && !errors.Is(err, session.ErrSyncUnsupported) {
		return err
	}

	<-ctx.Done()
	return nil
}

type summaryView struct {
	Authenticated bool            `json:"authenticated"`
	User          json.RawMessage `json:"user,omitempty"`
	ExpiresAt     string          `json:"expires_at,omitempty"`
	RememberMe    bool            `json:"remember_me"`
	NeedsRefresh  bool            `json:"needs_refresh"`
}

func printSummary(out io.Writer, s session.Summary) error {
	view := summaryView{
		Authenticated: s.IsAuthenticated,
		User:          s.User,
		RememberMe:    s.RememberMe,
		NeedsRefresh:  s.NeedsRefresh,
	}
	if !s.TokenExpiry.IsZero() {
		view.ExpiresAt = s.TokenExpiry.Format(time.RFC3339)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(view)
}
