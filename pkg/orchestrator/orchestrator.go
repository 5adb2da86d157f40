// Package orchestrator owns the tag tree rebuild lifecycle: it keeps the
// document cache, decides when a rebuild is needed, runs the pipeline and
// publishes the finished tree.
package orchestrator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"runtime/debug"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/mattsolo1/tagfolder/pkg/metrics"
	"github.com/mattsolo1/tagfolder/pkg/models"
	"github.com/mattsolo1/tagfolder/pkg/normalize"
	"github.com/mattsolo1/tagfolder/pkg/scheduler"
	"github.com/mattsolo1/tagfolder/pkg/tree"
)

// ErrRebuildFailed is returned when the pipeline panics. The previously
// published tree stays in place.
var ErrRebuildFailed = errors.New("tree rebuild failed")

// Source provides documents.
type Source interface {
	// Documents returns every known document.
	Documents(ctx context.Context) ([]*models.Document, error)
	// Document returns one document. A missing document yields an error
	// wrapping fs.ErrNotExist.
	Document(ctx context.Context, path string) (*models.Document, error)
}

// Publisher receives every newly built tree.
type Publisher interface {
	SetRoot(root *tree.Node)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(log *logrus.Entry) Option {
	return func(o *Orchestrator) { o.log = log }
}

// WithMetrics records rebuild metrics into m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithYielder sets the yielder handed to the splitter.
func WithYielder(y scheduler.Yielder) Option {
	return func(o *Orchestrator) { o.yielder = y }
}

// WithSearch sets the initial search string.
func WithSearch(search string) Option {
	return func(o *Orchestrator) { o.search = search }
}

// WithExpanded marks node keys as open in addition to the root.
func WithExpanded(keys ...string) Option {
	return func(o *Orchestrator) {
		for _, k := range keys {
			o.expanded[k] = true
		}
	}
}

// Orchestrator rebuilds and publishes the tag tree. All methods are safe for
// concurrent use; rebuilds never overlap.
type Orchestrator struct {
	src     Source
	pub     Publisher
	log     *logrus.Entry
	metrics *metrics.Metrics
	yielder scheduler.Yielder

	// runMu serializes rebuilds; a rebuild runs to completion.
	runMu sync.Mutex

	mu       sync.Mutex
	state    State
	settings models.Settings
	search   string
	expanded map[string]bool
	docs     map[string]*models.Document
	loaded   bool
	root     *tree.Node

	// inputs of the published tree
	lastHash        string
	lastSearch      string
	lastFingerprint string

	// debounce and queue-of-one
	baseCtx     context.Context
	timer       *time.Timer
	pending     map[string]bool
	pendingFull bool
	running     bool
	rerun       bool
}

// New returns an orchestrator reading from src and publishing to pub.
func New(src Source, pub Publisher, settings models.Settings, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		src:      src,
		pub:      pub,
		settings: settings,
		expanded: map[string]bool{tree.RootTag: true},
		docs:     make(map[string]*models.Document),
		pending:  make(map[string]bool),
		baseCtx:  context.Background(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.log = logrus.NewEntry(l)
	}
	o.log = o.log.WithField("component", "orchestrator")
	if o.yielder == nil {
		o.yielder = scheduler.Nop{}
	}
	return o
}

// Root returns the published tree, or nil before the first publish.
func (o *Orchestrator) Root() *tree.Node {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.root
}

// State returns the current pipeline stage.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Settings returns the active settings.
func (o *Orchestrator) Settings() models.Settings {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.settings
}

// Expanded returns the expanded node keys, shallowest first.
func (o *Orchestrator) Expanded() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.expandedKeys()
}

func (o *Orchestrator) expandedKeys() []string {
	keys := make([]string, 0, len(o.expanded))
	for k := range o.expanded {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		di, dj := strings.Count(keys[i], tree.Delimiter), strings.Count(keys[j], tree.Delimiter)
		if di != dj {
			return di < dj
		}
		return keys[i] < keys[j]
	})
	return keys
}

func (o *Orchestrator) setState(s State) {
	o.mu.Lock()
	o.state = s
	o.mu.Unlock()
	o.log.WithField("state", s.String()).Debug("State change")
}

// Refresh updates the document cache and rebuilds when anything observable
// changed. With no paths every document is reloaded; otherwise only the
// given paths are, and missing ones are dropped from the cache.
func (o *Orchestrator) Refresh(ctx context.Context, paths ...string) error {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	if err := o.load(ctx, paths); err != nil {
		return err
	}
	return o.rebuild(false)
}

// SetSearchString changes the search filter and rebuilds.
func (o *Orchestrator) SetSearchString(ctx context.Context, search string) error {
	o.mu.Lock()
	o.search = search
	o.mu.Unlock()
	return o.rebuildCached(ctx, false)
}

// SetSettings replaces the settings and rebuilds.
func (o *Orchestrator) SetSettings(ctx context.Context, settings models.Settings) error {
	o.mu.Lock()
	o.settings = settings
	o.mu.Unlock()
	return o.rebuildCached(ctx, false)
}

// ExpandFolder records whether the node with key is open and publishes a
// fresh tree with the open nodes expanded.
func (o *Orchestrator) ExpandFolder(ctx context.Context, key string, expanded bool) error {
	o.mu.Lock()
	changed := o.expanded[key] != expanded
	if expanded {
		o.expanded[key] = true
	} else {
		delete(o.expanded, key)
	}
	o.mu.Unlock()

	if !changed {
		return nil
	}
	return o.rebuildCached(ctx, true)
}

// rebuildCached rebuilds from the document cache, loading it first when
// nothing has been loaded yet.
func (o *Orchestrator) rebuildCached(ctx context.Context, force bool) error {
	o.runMu.Lock()
	defer o.runMu.Unlock()

	o.mu.Lock()
	loaded := o.loaded
	o.mu.Unlock()
	if !loaded {
		if err := o.load(ctx, nil); err != nil {
			return err
		}
	}
	return o.rebuild(force)
}

// load refreshes the document cache. Must hold runMu.
func (o *Orchestrator) load(ctx context.Context, paths []string) error {
	o.mu.Lock()
	full := len(paths) == 0 || !o.loaded
	o.mu.Unlock()

	if full {
		docs, err := o.src.Documents(ctx)
		if err != nil {
			return fmt.Errorf("failed to load documents: %w", err)
		}
		cache := make(map[string]*models.Document, len(docs))
		for _, d := range docs {
			cache[d.Path] = d
		}
		o.mu.Lock()
		o.docs = cache
		o.loaded = true
		o.mu.Unlock()
		return nil
	}

	for _, p := range paths {
		doc, err := o.src.Document(ctx, p)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			o.mu.Lock()
			delete(o.docs, p)
			o.mu.Unlock()
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			o.log.WithError(err).WithField("path", p).Warn("Failed to reload document")
		default:
			o.mu.Lock()
			o.docs[p] = doc
			o.mu.Unlock()
		}
	}
	return nil
}

// rebuild runs the pipeline unless the documents, the search and the
// settings all match the published tree. Must hold runMu.
func (o *Orchestrator) rebuild(force bool) error {
	start := time.Now()

	o.mu.Lock()
	docs := make([]*models.Document, 0, len(o.docs))
	for _, d := range o.docs {
		docs = append(docs, d)
	}
	settings := o.settings
	search := o.search
	expanded := make(map[string]bool, len(o.expanded))
	for k := range o.expanded {
		expanded[k] = true
	}
	published := o.root != nil
	o.mu.Unlock()

	sort.Slice(docs, func(i, j int) bool { return docs[i].Path < docs[j].Path })
	hash := ContentHash(docs)
	fingerprint := settings.Fingerprint()

	if published && !force &&
		hash == o.lastHash &&
		search == o.lastSearch &&
		fingerprint == o.lastFingerprint {
		o.metrics.RecordRebuild(metrics.ResultSkipped, 0)
		o.log.Debug("Nothing changed, skipping rebuild")
		return nil
	}

	var root *tree.Node
	if err := o.safeBuild(func() {
		root = o.build(docs, settings, search, expanded)
	}); err != nil {
		o.setState(Idle)
		o.metrics.RecordRebuild(metrics.ResultFailed, time.Since(start))
		o.log.WithError(err).Error("Rebuild failed, keeping previous tree")
		return fmt.Errorf("%w: %v", ErrRebuildFailed, err)
	}

	o.lastHash = hash
	o.lastSearch = search
	o.lastFingerprint = fingerprint

	o.mu.Lock()
	o.root = root
	o.state = Published
	o.mu.Unlock()

	if o.pub != nil {
		o.pub.SetRoot(root)
	}

	leaves, nodes := stats(root)
	o.metrics.RecordRebuild(metrics.ResultPublished, time.Since(start))
	o.metrics.UpdateTreeStats(len(docs), leaves, nodes)
	o.log.WithFields(logrus.Fields{
		"documents": len(docs),
		"leaves":    leaves,
		"nodes":     nodes,
		"duration":  time.Since(start).String(),
	}).Info("Tree published")

	o.setState(Idle)
	return nil
}

// build runs the pipeline on private data. It never touches the published
// tree.
func (o *Orchestrator) build(docs []*models.Document, settings models.Settings, search string, expanded map[string]bool) *tree.Node {
	stage := func(s State, fn func()) {
		o.setState(s)
		t := time.Now()
		fn()
		o.metrics.RecordStage(s.String(), time.Since(t))
	}

	var leaves []*tree.Leaf
	stage(Normalizing, func() {
		leaves = normalize.Normalize(docs, settings, search)
	})

	b := tree.NewBuilder(settings.ReduceNestedParent, o.yielder)
	root := tree.NewRoot(leaves)

	stage(Expanding, func() {
		b.Expand(root)
		tree.Prune(root)
	})

	stage(Splitting, func() {
		b.Split(root)
		applyExpanded(b, root, expanded)
	})

	stage(Caching, func() {
		tree.UpdateDescendants(root, settings.HideItems)
	})

	stage(Sorting, func() {
		tree.NewSorter(settings, o.log).Sort(root)
	})

	return root
}

// applyExpanded re-expands every open node, descending only through open
// nodes.
func applyExpanded(b *tree.Builder, root *tree.Node, expanded map[string]bool) {
	tree.Walk(root, func(n *tree.Node) bool {
		if !expanded[n.Key()] {
			return false
		}
		b.Expand(n)
		b.Split(n)
		return true
	})
}

// safeBuild executes fn and turns a panic into an error.
func (o *Orchestrator) safeBuild(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	fn()
	return nil
}

// ContentHash hashes the path and tags of docs, which must be sorted by
// path.
func ContentHash(docs []*models.Document) string {
	h := sha256.New()
	for _, d := range docs {
		io.WriteString(h, d.Path)
		for _, t := range d.Tags {
			io.WriteString(h, "\x00")
			io.WriteString(h, t)
		}
		io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil))
}

func stats(root *tree.Node) (leaves, nodes int) {
	seen := make(map[*tree.Leaf]struct{})
	tree.Walk(root, func(n *tree.Node) bool {
		if n != root {
			nodes++
		}
		for _, l := range n.Leaves() {
			seen[l] = struct{}{}
		}
		return true
	})
	return len(seen), nodes
}
