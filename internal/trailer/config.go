package trailer

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"
	"github.com/pelletier/go-toml/v2"
)

// Entry is a single configured trailer definition: a short name, an
// optional canonical key, an optional value-producing command, and the
// policy triple governing placement and merge behavior.
type Entry struct {
	Name      string
	Key       string
	Command   string
	Where     Where
	IfExists  IfExists
	IfMissing IfMissing
}

// commandUsesArg reports whether Command contains the literal $ARG
// placeholder.
func (e Entry) commandUsesArg() bool {
	return strings.Contains(e.Command, argPlaceholder)
}

// Registry holds the trailer definitions gathered from configuration. The
// zero value is an empty, usable registry. A Registry is built once and
// passed by reference to the driver (Run); it is read-only once
// loading has completed (see spec.md's "process-wide configuration state"
// design note — this rewrite makes it an explicit value instead).
type Registry struct {
	order   []string
	entries map[string]*Entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{entries: map[string]*Entry{}}
}

// tomlEntry is the on-disk shape of a single [[trailer]] table.
type tomlEntry struct {
	Name      string `toml:"name"`
	Key       string `toml:"key"`
	Command   string `toml:"command"`
	Where     string `toml:"where"`
	IfExists  string `toml:"ifexists"`
	IfMissing string `toml:"ifmissing"`
}

type tomlFile struct {
	Trailer []tomlEntry `toml:"trailer"`
}

// Load parses a TOML document of the form:
//
//	[[trailer]]
//	name = "sign"
//	key = "Signed-off-by"
//	command = "echo hi"
//	where = "after"
//	ifexists = "addIfDifferentNeighbor"
//	ifmissing = "add"
//
// into the registry. Later documents may be loaded on top of earlier ones
// (e.g. a user-level config followed by a repo-local override); within a
// single document, and across multiple Load calls, tables that repeat a
// name are merged into one entry field by field, and a duplicate key or
// command for the same name emits a warning and the later value wins.
// Unknown where/ifexists/
// ifmissing values emit a warning and leave the previous setting (or the
// default) in place. Suffixes are validated structurally by the TOML
// schema; there is no "unknown suffix" to silently ignore beyond what the
// `toml` struct tags already select.
func (r *Registry) Load(ctx context.Context, data []byte) error {
	log := clog.FromContext(ctx)

	var doc tomlFile
	if err := toml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse trailer config: %w", err)
	}
	if r.entries == nil {
		r.entries = map[string]*Entry{}
	}

	for _, te := range doc.Trailer {
		if te.Name == "" {
			log.Warn("skipping trailer config entry with empty name")
			continue
		}

		existing, ok := r.entries[te.Name]
		if !ok {
			existing = &Entry{Name: te.Name, Where: After, IfExists: AddIfDifferentNeighbor, IfMissing: MissingAdd}
			r.entries[te.Name] = existing
			r.order = append(r.order, te.Name)
		}

		if te.Key != "" {
			if existing.Key != "" && existing.Key != te.Key {
				log.Warn("duplicate trailer key, later value wins", "name", te.Name, "old", existing.Key, "new", te.Key)
			}
			existing.Key = te.Key
		}
		if te.Command != "" {
			if existing.Command != "" && existing.Command != te.Command {
				log.Warn("duplicate trailer command, later value wins", "name", te.Name, "old", existing.Command, "new", te.Command)
			}
			existing.Command = te.Command
		}
		if te.Where != "" {
			if w, ok := parseWhere(te.Where); ok {
				existing.Where = w
			} else {
				log.Warn("unknown trailer.where value, ignoring", "name", te.Name, "value", te.Where)
			}
		}
		if te.IfExists != "" {
			if v, ok := parseIfExists(te.IfExists); ok {
				existing.IfExists = v
			} else {
				log.Warn("unknown trailer.ifexists value, ignoring", "name", te.Name, "value", te.IfExists)
			}
		}
		if te.IfMissing != "" {
			if v, ok := parseIfMissing(te.IfMissing); ok {
				existing.IfMissing = v
			} else {
				log.Warn("unknown trailer.ifmissing value, ignoring", "name", te.Name, "value", te.IfMissing)
			}
		}
	}
	return nil
}

func parseWhere(s string) (Where, bool) {
	switch strings.ToLower(s) {
	case "after":
		return After, true
	case "before":
		return Before, true
	default:
		return After, false
	}
}

func parseIfExists(s string) (IfExists, bool) {
	switch strings.ToLower(s) {
	case "addifdifferent":
		return AddIfDifferent, true
	case "addifdifferentneighbor":
		return AddIfDifferentNeighbor, true
	case "add":
		return Add, true
	case "overwrite":
		return Overwrite, true
	case "donothing":
		return DoNothing, true
	default:
		return AddIfDifferentNeighbor, false
	}
}

func parseIfMissing(s string) (IfMissing, bool) {
	switch strings.ToLower(s) {
	case "add":
		return MissingAdd, true
	case "donothing":
		return MissingDoNothing, true
	default:
		return MissingAdd, false
	}
}

// FindByName returns the entry with the given short name, or nil.
func (r *Registry) FindByName(name string) *Entry {
	return r.entries[name]
}

// FindByKeyOrNamePrefix returns the first (in insertion order) configured
// entry whose Key or Name matches tok's leading AlnumLen(tok) bytes,
// case-insensitively, or nil if none match. This is the asymmetric lookup
// of spec.md:59 — unlike the general SameToken match, the prefix length is
// fixed to the query token's own AlnumLen, not the shorter of the two, so a
// short configured name (e.g. "ack") cannot spuriously match a longer,
// unrelated input token (e.g. "Acknowledgement-Of-Receipt").
func (r *Registry) FindByKeyOrNamePrefix(tok string) *Entry {
	n := AlnumLen(tok)
	for _, name := range r.order {
		e := r.entries[name]
		if e.Key != "" && sameTokenPrefix(e.Key, tok, n) {
			return e
		}
		if sameTokenPrefix(e.Name, tok, n) {
			return e
		}
	}
	return nil
}

// IterCommandsWithoutArg returns, in insertion order, every configured
// entry whose Command is non-empty and does not reference $ARG. These
// become synthetic argument-items (spec.md §2, §4.7 step 7).
func (r *Registry) IterCommandsWithoutArg() []*Entry {
	var out []*Entry
	for _, name := range r.order {
		e := r.entries[name]
		if e.Command != "" && !e.commandUsesArg() {
			out = append(out, e)
		}
	}
	return out
}
