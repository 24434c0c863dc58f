package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
)

// Command is one defectctl subcommand.
type Command struct {
	Name        string
	Description string
	Usage       string
	Run         func(ctx context.Context, app *App, fs *flag.FlagSet, args []string) error
}

// NewFlagSet creates a standardized flag set for a command.
func (c *Command) NewFlagSet() *flag.FlagSet {
	fs := flag.NewFlagSet(c.Name, flag.ExitOnError)
	fs.Usage = func() { c.PrintUsage(fs) }
	return fs
}

// PrintUsage prints standardized usage information.
func (c *Command) PrintUsage(fs *flag.FlagSet) {
	fmt.Fprintf(os.Stderr, "%s\n\nUSAGE:\n    %s\n\n", c.Description, c.Usage)
	fs.PrintDefaults()
}

// Registry maps subcommand names to commands.
type Registry struct {
	commands map[string]*Command
}

func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

func (r *Registry) Register(c *Command) {
	r.commands[c.Name] = c
}

// Execute dispatches os-style args to the matching command.
func (r *Registry) Execute(ctx context.Context, app *App, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		r.printHelp()
		return nil
	}

	cmd, ok := r.commands[args[0]]
	if !ok {
		r.printHelp()
		return fmt.Errorf("unknown command %q", args[0])
	}

	fs := cmd.NewFlagSet()
	return cmd.Run(ctx, app, fs, args[1:])
}

func (r *Registry) printHelp() {
	fmt.Fprintf(os.Stderr, "defectctl — defect tracker client\n\nCOMMANDS:\n")
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "    %-10s %s\n", name, r.commands[name].Description)
	}
}
