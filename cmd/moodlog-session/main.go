package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

const usage = `usage: moodlog-session <command> [flags]

commands:
  login     -email -password [-remember] [-admin]
  register  -email -password [-name] [-remember] [-admin]
  status    [-admin]
  token     [-admin]
  logout    [-admin]
  watch     [-admin]
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	name, args := args[0], args[1:]
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("%w: unknown command %q", errUsage, name)
	}

	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	admin := fs.Bool("admin", false, "use the admin session and endpoints")
	bind := cmd.flags(fs)
	if err := fs.Parse(args); err != nil {
		return errors.Join(errUsage, err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(ctx, cfg, *admin)
	if err != nil {
		return err
	}
	defer a.Close()

	return cmd.run(ctx, a, bind, stdout)
}
