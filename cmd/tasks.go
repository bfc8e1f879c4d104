package cmd

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/taskdeck/taskdeck/internal/task"
)

// add creates a new task.
func (a *app) add(args []string) error {
	fs := flag.NewFlagSet("taskdeck add", flag.ContinueOnError)
	priority := fs.String("p", a.cfg.DefaultPriority, "Priority (low|medium|high)")
	due := fs.String("due", "", "Due date (ISO or natural language, e.g. \"next friday\")")
	tags := fs.String("tags", "", "Comma-separated tags")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) == 0 {
		return fmt.Errorf("add requires a title")
	}
	title := strings.Join(fs.Args(), " ")

	store, err := a.openStore()
	if err != nil {
		return err
	}
	index, err := store.Add(title, task.Priority(*priority), *due, splitTags(*tags))
	if err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}

	created, _ := store.Get(index)
	fmt.Printf("Added %d. %s\n", index, created.Render(time.Now()))
	return nil
}

// ls lists tasks sorted for display.
func (a *app) ls(args []string) error {
	fs := flag.NewFlagSet("taskdeck ls", flag.ContinueOnError)
	priority := fs.String("p", "", "Only this priority (low|medium|high)")
	tag := fs.String("tag", "", "Only tasks carrying this tag")
	openOnly := fs.Bool("open", false, "Hide completed tasks")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if *priority != "" && !task.Priority(*priority).Valid() {
		return fmt.Errorf("priority %q is not one of: low, medium, high", *priority)
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	entries := store.List(task.Filter{
		Priority:      task.Priority(*priority),
		Tag:           *tag,
		HideCompleted: *openOnly,
	})
	if len(entries) == 0 {
		fmt.Println("No tasks.")
		return nil
	}
	printEntries(os.Stdout, entries)
	return nil
}

// done marks a task completed. Completing a completed task succeeds.
func (a *app) done(args []string) error {
	index, store, err := a.indexCommand("done", args)
	if err != nil {
		return err
	}
	if err := store.Complete(index); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	t, _ := store.Get(index)
	fmt.Printf("Done: %s\n", t.Title)
	return nil
}

// edit applies a partial update to a task.
func (a *app) edit(args []string) error {
	fs := flag.NewFlagSet("taskdeck edit", flag.ContinueOnError)
	title := fs.String("title", "", "New title")
	priority := fs.String("p", "", "New priority (low|medium|high)")
	due := fs.String("due", "", "New due date (empty string clears it)")
	tags := fs.String("tags", "", "Replacement comma-separated tags")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 1 {
		return fmt.Errorf("edit requires exactly one index")
	}
	index, err := parseIndex(fs.Arg(0))
	if err != nil {
		return err
	}

	var u task.Update
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "title":
			u.Title = title
		case "p":
			p := task.Priority(*priority)
			u.Priority = &p
		case "due":
			u.DueText = due
		case "tags":
			split := splitTags(*tags)
			u.Tags = &split
		}
	})

	store, err := a.openStore()
	if err != nil {
		return err
	}
	if err := store.ApplyUpdate(index, u); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	t, _ := store.Get(index)
	fmt.Printf("Updated %d. %s\n", index, t.Render(time.Now()))
	return nil
}

// rm deletes a task. Later indices shift down by one.
func (a *app) rm(args []string) error {
	index, store, err := a.indexCommand("rm", args)
	if err != nil {
		return err
	}
	removed, err := store.Delete(index)
	if err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Printf("Deleted: %s\n", removed.Title)
	return nil
}

// tag adds a tag to a task.
func (a *app) tag(args []string) error {
	index, tag, store, err := a.tagCommand("tag", args)
	if err != nil {
		return err
	}
	if err := store.AddTag(index, tag); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Printf("Tagged %d with #%s\n", index, task.NormalizeTag(tag))
	return nil
}

// untag removes a tag from a task.
func (a *app) untag(args []string) error {
	index, tag, store, err := a.tagCommand("untag", args)
	if err != nil {
		return err
	}
	if err := store.RemoveTag(index, tag); err != nil {
		return err
	}
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Printf("Untagged %d from #%s\n", index, task.NormalizeTag(tag))
	return nil
}

// search finds tasks by title or tag substring.
func (a *app) search(args []string) error {
	fs := flag.NewFlagSet("taskdeck search", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) != 1 {
		return fmt.Errorf("search requires exactly one query")
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	entries := store.Search(fs.Arg(0))
	if len(entries) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	printEntries(os.Stdout, entries)
	return nil
}

// stats prints aggregate counts.
func (a *app) stats(args []string) error {
	fs := flag.NewFlagSet("taskdeck stats", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}
	printStats(os.Stdout, store.Stats())
	return nil
}

// clear removes completed tasks, or with confirmation, everything.
func (a *app) clear(args []string, in io.Reader) error {
	fs := flag.NewFlagSet("taskdeck clear", flag.ContinueOnError)
	doneOnly := fs.Bool("done", false, "Remove only completed tasks")
	force := fs.Bool("f", false, "Skip the confirmation prompt")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if len(fs.Args()) > 0 {
		return fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	store, err := a.openStore()
	if err != nil {
		return err
	}

	if !*doneOnly && !*force {
		fmt.Printf("Remove all %d tasks? [y/N] ", store.Len())
		if !confirm(in) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	removed := store.Clear(*doneOnly)
	if err := store.Save(); err != nil {
		return err
	}
	fmt.Printf("Removed %d task(s).\n", removed)
	return nil
}

// doctor checks config and tasks file validity.
func (a *app) doctor(args []string) error {
	fs := flag.NewFlagSet("taskdeck doctor", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Println("Taskdeck Doctor")
	fmt.Println("===============")
	fmt.Println()

	allOK := true

	fmt.Printf("Tasks file: %s\n", a.cfg.TasksFile)
	store := a.newStore()
	warnings, err := store.Load()
	switch {
	case err != nil:
		fmt.Printf("  error: %v\n", err)
		allOK = false
	case len(warnings) > 0:
		for _, w := range warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		fmt.Printf("  loaded %d task(s)\n", store.Len())
	default:
		fmt.Printf("  ok, %d task(s)\n", store.Len())
	}
	fmt.Println()

	if a.cfg.SchemaFile != "" {
		fmt.Printf("Schema file: %s\n", a.cfg.SchemaFile)
		if _, err := os.Stat(a.cfg.SchemaFile); err != nil {
			fmt.Printf("  error: %v\n", err)
			allOK = false
		} else {
			fmt.Println("  ok")
		}
		fmt.Println()
	}

	fmt.Printf("Default priority: %s\n", a.cfg.DefaultPriority)
	fmt.Printf("Log level: %s (%s)\n", a.cfg.LogLevel, a.cfg.LogFormat)
	fmt.Println()
	fmt.Println("Note: task indices are positional and shift after rm or clear;")
	fmt.Println("re-list before reusing an index in a scripted session.")
	fmt.Println()

	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}

// indexCommand parses a single-index command and opens the store.
func (a *app) indexCommand(name string, args []string) (int, *task.Store, error) {
	fs := flag.NewFlagSet("taskdeck "+name, flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 0, nil, err
	}
	if len(fs.Args()) != 1 {
		return 0, nil, fmt.Errorf("%s requires exactly one index", name)
	}
	index, err := parseIndex(fs.Arg(0))
	if err != nil {
		return 0, nil, err
	}
	store, err := a.openStore()
	if err != nil {
		return 0, nil, err
	}
	return index, store, nil
}

// tagCommand parses an index+tag command and opens the store.
func (a *app) tagCommand(name string, args []string) (int, string, *task.Store, error) {
	fs := flag.NewFlagSet("taskdeck "+name, flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 0, "", nil, err
	}
	if len(fs.Args()) != 2 {
		return 0, "", nil, fmt.Errorf("%s requires an index and a tag", name)
	}
	index, err := parseIndex(fs.Arg(0))
	if err != nil {
		return 0, "", nil, err
	}
	store, err := a.openStore()
	if err != nil {
		return 0, "", nil, err
	}
	return index, fs.Arg(1), store, nil
}

func printEntries(w io.Writer, entries []task.Entry) {
	now := time.Now()
	for _, e := range entries {
		fmt.Fprintf(w, "%3d. %s\n", e.Index, e.Task.Render(now))
	}
}

func printStats(w io.Writer, stats task.Stats) {
	fmt.Fprintf(w, "Total:      %d\n", stats.Total)
	fmt.Fprintf(w, "Completed:  %d\n", stats.Completed)
	fmt.Fprintf(w, "Incomplete: %d\n", stats.Incomplete)
	fmt.Fprintf(w, "Overdue:    %d\n", stats.Overdue)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Open by priority:")
	for _, p := range []task.Priority{task.PriorityHigh, task.PriorityMedium, task.PriorityLow} {
		fmt.Fprintf(w, "  %-6s %d\n", p, stats.ByPriority[p])
	}
	if len(stats.Tags) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tags:")
		names := make([]string, 0, len(stats.Tags))
		for name := range stats.Tags {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  #%-10s %d\n", name, stats.Tags[name])
		}
	}
}

// confirm reads a line from in and accepts y/yes.
func confirm(in io.Reader) bool {
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))
	return answer == "y" || answer == "yes"
}

// splitTags splits a comma-separated tag list, dropping empties.
func splitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return tags
}
