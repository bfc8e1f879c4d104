// Package cmd implements the CLI command structure for taskdeck.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/logging"
	"github.com/taskdeck/taskdeck/internal/task"
	"github.com/taskdeck/taskdeck/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskdeck CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdeck", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		return versionCommand()
	}

	logger := logging.NewFromConfig(os.Stderr, cfg.LogLevel, cfg.LogFormat, cfg.LogTimestamps)

	// Determine the subcommand; no arguments means "ls".
	subcommand := "ls"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	a := &app{cfg: cfg, logger: logger}

	switch subcommand {
	case "add":
		return a.add(remainingArgs)
	case "ls", "list":
		return a.ls(remainingArgs)
	case "done":
		return a.done(remainingArgs)
	case "edit":
		return a.edit(remainingArgs)
	case "rm":
		return a.rm(remainingArgs)
	case "tag":
		return a.tag(remainingArgs)
	case "untag":
		return a.untag(remainingArgs)
	case "search":
		return a.search(remainingArgs)
	case "stats":
		return a.stats(remainingArgs)
	case "clear":
		return a.clear(remainingArgs, os.Stdin)
	case "doctor":
		return a.doctor(remainingArgs)
	case "tui":
		return a.tui(ctx, remainingArgs)
	case "version", "--version", "-v":
		return versionCommand()
	case "help", "--help", "-h":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

// app carries the loaded config and logger through command handlers.
type app struct {
	cfg    *config.Config
	logger *log.Logger
}

// openStore loads the tasks file into a store.
func (a *app) openStore() (*task.Store, error) {
	store := a.newStore()
	warnings, err := store.Load()
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		a.logger.Warn(w)
	}
	return store, nil
}

func (a *app) newStore() *task.Store {
	opts := []task.Option{}
	if a.cfg.SchemaFile != "" {
		opts = append(opts, task.WithSchema(a.cfg.SchemaFile))
	}
	return task.NewStore(a.cfg.TasksFile, opts...)
}

// parseIndex converts a positional argument to a task index.
func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("index must be a number, got %q", arg)
	}
	return index, nil
}

// versionCommand prints version information.
func versionCommand() error {
	fmt.Printf("taskdeck version %s\n", Version)
	return nil
}

// tui launches the terminal UI.
func (a *app) tui(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskdeck tui", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	return ui.RunTUI(ctx, a.newStore)
}

// printUsage prints the usage message.
func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintln(w, "Taskdeck - A personal task tracker")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  taskdeck [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  add <title>          Add a task (-p, -due, -tags)")
	fmt.Fprintln(w, "  ls                   List tasks, sorted (default command; -p, -tag, -open)")
	fmt.Fprintln(w, "  done <index>         Mark a task completed")
	fmt.Fprintln(w, "  edit <index>         Change a task (-title, -p, -due, -tags)")
	fmt.Fprintln(w, "  rm <index>           Delete a task")
	fmt.Fprintln(w, "  tag <index> <tag>    Add a tag to a task")
	fmt.Fprintln(w, "  untag <index> <tag>  Remove a tag from a task")
	fmt.Fprintln(w, "  search <query>       Find tasks by title or tag")
	fmt.Fprintln(w, "  stats                Show aggregate counts")
	fmt.Fprintln(w, "  clear                Remove tasks (-done for completed only)")
	fmt.Fprintln(w, "  doctor               Check config and tasks file validity")
	fmt.Fprintln(w, "  tui                  Launch terminal UI")
	fmt.Fprintln(w, "  version              Show version information")
	fmt.Fprintln(w, "  help                 Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Indices are positions in the full task list and shift after rm or clear.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global Options:")
	fs.SetOutput(w)
	fs.PrintDefaults()
}
