// Package repl provides an interactive operator console over the review
// queue. It exposes the same operations the chat-facing admin commands do:
// listing the queue, running dry-run cleanups, and applying decisions.
package repl

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/meetbot/reviewq/internal/cleanup"
	"github.com/meetbot/reviewq/internal/review"
	"github.com/meetbot/reviewq/internal/storage"
	"github.com/meetbot/reviewq/internal/types"
)

// REPL is the interactive shell.
type REPL struct {
	store    storage.Store
	queue    *review.Queue
	actions  *review.Actions
	cleaner  *cleanup.Cleaner
	rl       *readline.Instance
	ctx      context.Context
	commands map[string]CommandHandler
}

// CommandHandler handles a specific command.
type CommandHandler func(args []string) error

// Config holds REPL configuration.
type Config struct {
	Store   storage.Store
	Queue   *review.Queue
	Actions *review.Actions
	Cleaner *cleanup.Cleaner
}

// New creates a new REPL instance.
func New(cfg *Config) (*REPL, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("storage is required")
	}

	r := &REPL{
		store:    cfg.Store,
		queue:    cfg.Queue,
		actions:  cfg.Actions,
		cleaner:  cfg.Cleaner,
		commands: make(map[string]CommandHandler),
	}
	r.registerCommands()
	return r, nil
}

// Run starts the REPL loop.
func (r *REPL) Run(ctx context.Context) error {
	r.ctx = ctx

	cyan := color.New(color.FgCyan).SprintFunc()
	rl, err := readline.NewEx(&readline.Config{
		Prompt:            cyan("reviewq> "),
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return fmt.Errorf("failed to create readline: %w", err)
	}
	defer rl.Close()
	r.rl = rl

	r.printWelcome()

	for {
		line, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			} else if err == io.EOF {
				fmt.Println("\nGoodbye!")
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if err := r.processInput(line); err != nil {
			if err == io.EOF {
				return nil
			}
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf("%s %v\n", red("Error:"), err)
		}
	}
}

func (r *REPL) processInput(line string) error {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return nil
	}

	if handler, ok := r.commands[parts[0]]; ok {
		return handler(parts[1:])
	}

	yellow := color.New(color.FgYellow).SprintFunc()
	fmt.Printf("%s Unknown command %q. Use 'help' for available commands.\n", yellow("Note:"), parts[0])
	return nil
}

func (r *REPL) registerCommands() {
	r.commands["help"] = r.cmdHelp
	r.commands["?"] = r.cmdHelp
	r.commands["exit"] = r.cmdExit
	r.commands["quit"] = r.cmdExit
	r.commands["list"] = r.cmdList
	r.commands["stats"] = r.cmdStats
	r.commands["dups"] = r.cmdDups
	r.commands["archive"] = r.cmdArchive
	r.commands["confirm"] = r.cmdConfirm
	r.commands["flip"] = r.cmdFlip
	r.commands["drop"] = r.cmdDrop
}

func (r *REPL) printWelcome() {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	fmt.Printf("\n%s\n", cyan("reviewq operator console"))
	fmt.Println("Type 'help' for available commands, 'exit' to quit")
	fmt.Println()
}

func (r *REPL) cmdHelp(args []string) error {
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Println()
	for _, cmd := range []struct{ name, desc string }{
		{"list [n]", "Show up to n open review items (default 10)"},
		{"stats", "Show open-queue status breakdown"},
		{"dups [threshold]", "Scan open items for near-duplicates (read-only)"},
		{"archive <days> [apply]", "Archive closed records older than <days>; dry-run unless 'apply'"},
		{"confirm <id> <commit-id>", "Resolve an item and link its commitment record"},
		{"flip <id>", "Toggle an item's direction"},
		{"drop <id>", "Close an item as dropped"},
		{"help, ?", "Show this help message"},
		{"exit, quit", "Exit the console"},
	} {
		fmt.Printf("  %-26s %s\n", green(cmd.name), cmd.desc)
	}
	fmt.Println()
	return nil
}

func (r *REPL) cmdExit(args []string) error {
	fmt.Println("Goodbye!")
	return io.EOF
}

func (r *REPL) cmdList(args []string) error {
	limit := 10
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid limit %q: %w", args[0], err)
		}
		limit = n
	}

	items, err := r.queue.ListOpen(r.ctx, limit)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Review queue is empty\n", green("✓"))
		return nil
	}

	cyan := color.New(color.FgCyan).SprintFunc()
	for _, item := range items {
		fmt.Printf("%s [%s/%s] %s\n", cyan(item.Short()), item.Status, item.Direction, item.Text)
		if len(item.Assignees) > 0 {
			fmt.Printf("  Assignees: %s\n", strings.Join(item.Assignees, ", "))
		}
	}
	return nil
}

func (r *REPL) cmdStats(args []string) error {
	snap, err := r.queue.Stats(r.ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Open items: %d\n", snap.TotalOpen)
	for _, status := range types.OpenStatuses() {
		if n := snap.ByStatus[status]; n > 0 {
			fmt.Printf("  %-12s %d\n", status, n)
		}
	}
	return nil
}

func (r *REPL) cmdDups(args []string) error {
	threshold := 0.0
	if len(args) > 0 {
		t, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid threshold %q: %w", args[0], err)
		}
		threshold = t
	}

	stats := r.cleaner.FindDuplicates(r.ctx, threshold)
	fmt.Printf("Scanned %d items, %d comparisons, %d duplicate pair(s)\n",
		stats.Scanned, stats.Comparisons, stats.DuplicatesFound)
	for _, pair := range stats.Pairs {
		fmt.Printf("  %s ~ %s (%.3f)\n", shortID(pair.IDA), shortID(pair.IDB), pair.Score)
	}
	return nil
}

func shortID(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func (r *REPL) cmdArchive(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: archive <days> [apply]")
	}
	days, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid days %q: %w", args[0], err)
	}
	if ok, reason := cleanup.ValidateParams(cleanup.ModeArchive, days, 0.85); !ok {
		return fmt.Errorf("%s", reason)
	}

	dryRun := !(len(args) > 1 && args[1] == "apply")
	if dryRun {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s\n", yellow("DRY RUN - no records will be modified"))
	}

	stats := r.cleaner.ArchiveOlderThan(r.ctx, days, dryRun)
	fmt.Printf("Scanned %d, archived %d, errors %d\n", stats.Scanned, stats.Archived, stats.Errors)
	if dryRun && stats.Archived > 0 {
		fmt.Println("Run 'archive", days, "apply' to perform the archival")
	}
	return nil
}

func (r *REPL) cmdConfirm(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: confirm <id> <commit-id>")
	}
	if err := r.actions.Confirm(r.ctx, args[0], args[1]); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Confirmed\n", green("✓"))
	return nil
}

func (r *REPL) cmdFlip(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: flip <id>")
	}
	return r.actions.Flip(r.ctx, args[0])
}

func (r *REPL) cmdDrop(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: drop <id>")
	}
	if err := r.actions.Drop(r.ctx, args[0]); err != nil {
		return err
	}
	green := color.New(color.FgGreen).SprintFunc()
	fmt.Printf("%s Dropped\n", green("✓"))
	return nil
}
