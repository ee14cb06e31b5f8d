package commands

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds registered commands.
type Registry struct {
	mu   sync.RWMutex
	cmds map[string]Command // name and aliases map to command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		cmds: make(map[string]Command),
	}
}

// Register adds a command to the registry.
// Returns an error if the name or any alias is already registered.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if name == "" {
		return fmt.Errorf("command has no name")
	}
	if _, exists := r.cmds[name]; exists {
		return fmt.Errorf("command already registered: %s", name)
	}

	for _, alias := range c.Aliases() {
		if _, exists := r.cmds[alias]; exists {
			return fmt.Errorf("command alias already registered: %s", alias)
		}
	}

	r.cmds[name] = c
	for _, alias := range c.Aliases() {
		r.cmds[alias] = c
	}

	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.cmds[name]
	return cmd, ok
}

// All returns all unique commands sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Collect unique commands by primary name
	seen := make(map[string]Command)
	for _, cmd := range r.cmds {
		seen[cmd.Name()] = cmd
	}

	// Sort by name
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]Command, len(names))
	for i, name := range names {
		result[i] = seen[name]
	}
	return result
}

// Topic is a help section and the command names it lists, in order.
type Topic struct {
	Title    string
	Commands []string
}

// Topics are the help sections in display order. Registered commands not
// named by any topic are listed under "Other", sorted by name.
var Topics = []Topic{
	{Title: "Tasks", Commands: []string{"list", "add", "done", "rm", "calendar", "archive"}},
	{Title: "Account", Commands: []string{"login", "sync", "whoami", "logout"}},
}

// Section is a help section with its registered commands.
type Section struct {
	Title    string
	Commands []Command
}

// Sections groups the registered commands by Topics. Empty sections are
// omitted.
func (r *Registry) Sections() []Section {
	placed := make(map[string]bool)
	var sections []Section
	for _, topic := range Topics {
		sec := Section{Title: topic.Title}
		for _, name := range topic.Commands {
			if cmd, ok := r.Find(name); ok && cmd.Name() == name && !placed[name] {
				sec.Commands = append(sec.Commands, cmd)
				placed[name] = true
			}
		}
		if len(sec.Commands) > 0 {
			sections = append(sections, sec)
		}
	}

	other := Section{Title: "Other"}
	for _, cmd := range r.All() {
		if !placed[cmd.Name()] {
			other.Commands = append(other.Commands, cmd)
		}
	}
	if len(other.Commands) > 0 {
		sections = append(sections, other)
	}
	return sections
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
