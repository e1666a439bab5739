package main

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/matsen/artool/internal/config"
	"github.com/matsen/artool/internal/entity"
	"github.com/matsen/artool/internal/identity"
	"github.com/matsen/artool/internal/lexicon"
	"github.com/matsen/artool/internal/storage"
)

// workspace holds the four entity stores of a repository.
type workspace struct {
	root   string
	lex    *lexicon.Lexicon
	log    zerolog.Logger
	stores map[identity.Kind]*entity.Store
}

// lexiconPath returns the repository lexicon, falling back to the global one.
func lexiconPath(cfg *config.Config) string {
	if cfg != nil && cfg.LexiconPath != "" {
		return config.ExpandPath(cfg.LexiconPath)
	}
	if gcfg, err := config.LoadGlobalConfig(); err == nil {
		return gcfg.LexiconPath
	}
	return ""
}

// loadWorkspace reads every JSONL store under root.
func loadWorkspace(root string, cfg *config.Config, log zerolog.Logger) (*workspace, error) {
	lex, err := lexicon.LoadOrDefault(lexiconPath(cfg))
	if err != nil {
		return nil, err
	}

	ws := &workspace{
		root:   root,
		lex:    lex,
		log:    log,
		stores: make(map[identity.Kind]*entity.Store, len(identity.Kinds)),
	}
	for _, kind := range identity.Kinds {
		s, err := storage.ReadStore(config.StorePath(root, kind), kind, ws.options()...)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", kind.Plural(), err)
		}
		ws.stores[kind] = s
		log.Debug().Str("kind", kind.Plural()).Int("rows", s.Len()).Msg("loaded store")
	}
	return ws, nil
}

func (w *workspace) options() []entity.Option {
	return []entity.Option{entity.WithLexicon(w.lex), entity.WithLogger(w.log)}
}

// newStore returns an empty store sharing the workspace lexicon and logger.
func (w *workspace) newStore(kind identity.Kind) *entity.Store {
	return entity.NewStore(kind, w.options()...)
}

func (w *workspace) store(kind identity.Kind) *entity.Store { return w.stores[kind] }

func (w *workspace) works() *entity.Store        { return w.stores[identity.Work] }
func (w *workspace) authors() *entity.Store      { return w.stores[identity.Author] }
func (w *workspace) funders() *entity.Store      { return w.stores[identity.Funder] }
func (w *workspace) affiliations() *entity.Store { return w.stores[identity.Affiliation] }

// save writes the given stores back to their JSONL files. With no kinds,
// every store is written.
func (w *workspace) save(kinds ...identity.Kind) error {
	if len(kinds) == 0 {
		kinds = identity.Kinds
	}
	for _, kind := range kinds {
		if err := storage.WriteStore(config.StorePath(w.root, kind), w.stores[kind]); err != nil {
			return fmt.Errorf("writing %s: %w", kind.Plural(), err)
		}
	}
	return nil
}

// all returns the stores in kind order.
func (w *workspace) all() []*entity.Store {
	out := make([]*entity.Store, 0, len(identity.Kinds))
	for _, kind := range identity.Kinds {
		out = append(out, w.stores[kind])
	}
	return out
}

// knownIDs collects every identifier reachable from the repository: rows of
// each store, the entities nested in them, and the works they cite.
// Disambiguation suffixes are stripped as well.
func (w *workspace) knownIDs() map[string]bool {
	ids := make(map[string]bool)
	var visit func(s *entity.Store)
	visit = func(s *entity.Store) {
		for _, r := range s.Rows() {
			id := r.ID()
			if identity.IsSentinel(id) {
				continue
			}
			ids[id] = true
			ids[identity.StripSuffix(id)] = true
			for _, f := range s.Schema().Fields {
				if f.Type == entity.FieldTypeNested {
					visit(r.Nested(f.Name))
				}
			}
			if r.Kind() == identity.Work {
				visit(r.Citations())
			}
		}
	}
	for _, s := range w.all() {
		visit(s)
	}
	return ids
}

// parseKindFlag parses a --kind flag value, exits on error.
func parseKindFlag(value string) identity.Kind {
	kind, err := identity.ParseKind(value)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	return kind
}
