package trailer

import (
	"context"
	"fmt"
	"io"
	"strings"
)

// RunOptions configures a single driver invocation.
type RunOptions struct {
	// TrimEmpty suppresses items whose final value is empty at print time.
	TrimEmpty bool
	// Args are the command-line trailer specifications, e.g. "Signed-off-by=B".
	Args []string
}

// Run reads a message from r, locates its trailer block, merges in the
// trailers from registry and opts.Args per the policy triples they carry,
// and writes the resulting message to w. This is the C7 driver: the only
// entry point that ties C1-C6 together.
func Run(ctx context.Context, exec Executor, registry *Registry, r io.Reader, w io.Writer, opts RunOptions) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	lines := splitLines(string(data))
	start := Locate(lines)

	for _, l := range lines[:start] {
		if _, err := io.WriteString(w, l); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}

	in := &List{}
	for _, l := range lines[start:] {
		token, value := Parse(strings.TrimRight(l, "\r\n"))
		item := NewItem(token, value, nil)
		annotate(ctx, exec, registry, item)
		in.PushBack(item)
	}

	arg := &List{}
	for _, a := range opts.Args {
		token, value := Parse(a)
		item := NewItem(token, value, nil)
		annotate(ctx, exec, registry, item)
		arg.PushBack(item)
	}
	if registry != nil {
		for _, e := range registry.IterCommandsWithoutArg() {
			token := e.Key
			if token == "" {
				token = e.Name
			}
			item := NewItem(token, "", confFromEntry(e))
			item.Value = ApplyCommand(ctx, exec, e.Command, "", false)
			arg.PushBack(item)
		}
	}

	Merge(in, arg)

	for _, it := range in.Items() {
		if opts.TrimEmpty && it.Value == "" {
			continue
		}
		if _, err := io.WriteString(w, Render(it)+"\n"); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
	}
	return nil
}

// splitLines splits s into delimiter-inclusive lines: each line retains its
// terminating '\n' except possibly the last, if s does not end in one.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i+1])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

// annotate matches item against registry by token prefix. On a match, item
// adopts the entry's canonical key and policy triple, and, if the entry
// carries a command, runs it (per spec.md §4.7 step 5: whenever the command
// does not reference $ARG, or the item carries no value to keep). Items
// with no match get the default policy triple (After, AddIfDifferentNeighbor,
// Add) so the merge engine always has a Conf to dispatch on.
func annotate(ctx context.Context, exec Executor, registry *Registry, item *Item) {
	item.Conf = defaultConf()
	if registry == nil {
		return
	}
	e := registry.FindByKeyOrNamePrefix(item.Token)
	if e == nil {
		return
	}
	if e.Key != "" {
		item.Token = e.Key
	}
	item.Conf = confFromEntry(e)
	if e.Command != "" && (!item.Conf.HasArg || item.Value == "") {
		item.Value = ApplyCommand(ctx, exec, e.Command, item.Value, item.Conf.HasArg)
	}
}

func defaultConf() *Conf {
	return &Conf{Where: After, IfExists: AddIfDifferentNeighbor, IfMissing: MissingAdd}
}

func confFromEntry(e *Entry) *Conf {
	return &Conf{
		Name:      e.Name,
		Command:   e.Command,
		HasArg:    e.commandUsesArg(),
		Where:     e.Where,
		IfExists:  e.IfExists,
		IfMissing: e.IfMissing,
	}
}

// Render formats a single item as it appears in output: "token: value" when
// token's last byte is alphanumeric, "token value" (one intervening space)
// otherwise — the second form covers tokens that already carry their own
// trailing punctuation (e.g. a canonical key ending in ':').
func Render(it *Item) string {
	if it.Token == "" {
		return it.Value
	}
	last := it.Token[len(it.Token)-1]
	if isAlnum(last) {
		return it.Token + ": " + it.Value
	}
	return it.Token + " " + it.Value
}
