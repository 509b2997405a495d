// SPDX-License-Identifier: MPL-2.0

// Package scan analyses many blueprint document files concurrently.
//
// A Scanner discovers files under its roots, decodes each one, collects its
// references, resolves its dependencies and reads its startup settings. The
// results of unchanged files are served from an LRU cache keyed by content
// hash, so repeated scans (watch mode) only decode what changed.
package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/fgardt/factorio-scanner-sub002/internal/discovery"
	"github.com/fgardt/factorio-scanner-sub002/pkg/anybasic"
	"github.com/fgardt/factorio-scanner-sub002/pkg/blueprint"
	"github.com/fgardt/factorio-scanner-sub002/pkg/deps"
	"github.com/fgardt/factorio-scanner-sub002/pkg/refs"
)

const defaultCacheSize = 256

type (
	// Options configures a Scanner.
	Options struct {
		// Roots are the files and directories to scan.
		Roots []string
		// Patterns and Ignore select files below directory roots.
		Patterns []string
		Ignore   []string
		// Workers bounds concurrent decoding; 0 means GOMAXPROCS.
		Workers int
		// CacheSize is the number of analyses kept; 0 means the default.
		CacheSize int
		// Resolver resolves dependencies; nil uses the built-in catalog.
		Resolver *deps.Resolver
		// Preset, when set, replaces resolution with the named catalog entry.
		Preset string
		// Logger receives progress records; nil discards them.
		Logger *log.Logger
	}

	// Analysis is everything derived from one document.
	Analysis struct {
		Kind        blueprint.Kind
		Label       string
		Version     string
		Blueprints  int
		References  refs.Set
		Explanation deps.Explanation
		Startup     *anybasic.Table
	}

	// FileResult is the outcome for one file. Exactly one of Analysis and Err
	// is set.
	FileResult struct {
		Path     string
		Hash     string
		Cached   bool
		Analysis *Analysis
		Err      error
	}

	// Report is the outcome of one scan run.
	Report struct {
		ID          uuid.UUID
		Started     time.Time
		Duration    time.Duration
		Files       []FileResult
		Diagnostics []discovery.Diagnostic
		// Dependencies merges every file's list in file order; the first file
		// to require a package decides its constraint.
		Dependencies *deps.List
	}

	// Scanner runs scans. It is safe for concurrent use; runs share the cache.
	Scanner struct {
		opts     Options
		matcher  *discovery.Matcher
		resolver *deps.Resolver
		cache    *lru.Cache[string, *Analysis]
		log      *log.Logger
	}
)

// New validates opts and builds a Scanner.
func New(opts Options) (*Scanner, error) {
	matcher, err := discovery.NewMatcher(opts.Patterns, opts.Ignore)
	if err != nil {
		return nil, err
	}

	resolver := opts.Resolver
	if resolver == nil {
		resolver = deps.NewResolver(nil)
	}
	if opts.Preset != "" {
		if _, err := resolver.FromEntry(opts.Preset); err != nil {
			return nil, err
		}
	}

	size := opts.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, *Analysis](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	return &Scanner{
		opts:     opts,
		matcher:  matcher,
		resolver: resolver,
		cache:    cache,
		log:      logger,
	}, nil
}

// Run discovers and analyses every file. Failures of individual files are
// recorded in their FileResult; Run itself fails only when discovery fails
// or ctx is cancelled.
func (s *Scanner) Run(ctx context.Context) (*Report, error) {
	started := time.Now()
	report := &Report{ID: uuid.New(), Started: started}
	logger := s.log.With("run", report.ID.String()[:8])

	found, err := discovery.Find(ctx, s.opts.Roots, s.matcher)
	if err != nil {
		return nil, err
	}
	report.Diagnostics = found.Diagnostics
	for _, d := range found.Diagnostics {
		logger.Warn(d.Message, "code", d.Code)
	}
	logger.Debug("discovered files", "count", len(found.Files))

	report.Files = make([]FileResult, len(found.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())
	for i, f := range found.Files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report.Files[i] = s.ScanFile(f.Path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Dependencies = deps.NewList()
	failed := 0
	for _, fr := range report.Files {
		if fr.Err != nil {
			failed++
			logger.Warn("skipping file", "path", fr.Path, "err", fr.Err)
			continue
		}
		for name, c := range fr.Analysis.Explanation.Dependencies.All() {
			report.Dependencies.Add(name, c)
		}
	}

	report.Duration = time.Since(started)
	logger.Info("scan finished",
		"files", len(report.Files),
		"failed", failed,
		"packages", report.Dependencies.Len(),
		"duration", report.Duration.Round(time.Millisecond))
	return report, nil
}

// ScanFile analyses one file, using the cache when its content was seen
// before.
func (s *Scanner) ScanFile(path string) FileResult {
	data, err := ReadFile(path)
	if err != nil {
		return FileResult{Path: path, Err: err}
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])
	if a, ok := s.cache.Get(hash); ok {
		s.log.Debug("cache hit", "path", path)
		return FileResult{Path: path, Hash: hash, Cached: true, Analysis: a}
	}

	doc, err := blueprint.Parse(data)
	if err != nil {
		return FileResult{Path: path, Hash: hash, Err: err}
	}
	a, err := s.Analyze(doc)
	if err != nil {
		return FileResult{Path: path, Hash: hash, Err: err}
	}
	s.cache.Add(hash, a)
	s.log.Debug("analysed", "path", path, "kind", a.Kind, "source", a.Explanation.Source)
	return FileResult{Path: path, Hash: hash, Analysis: a}
}

// Analyze derives the references, dependencies and startup settings of doc.
func (s *Scanner) Analyze(doc *blueprint.Document) (*Analysis, error) {
	a := &Analysis{
		Kind:       doc.Kind(),
		Label:      doc.Label(),
		References: doc.References(),
	}
	if c := doc.Common(); c != nil {
		a.Version = c.VersionString()
	}
	for range doc.Blueprints() {
		a.Blueprints++
	}

	if s.opts.Preset != "" {
		exp, err := s.resolver.ExplainEntry(s.opts.Preset)
		if err != nil {
			return nil, err
		}
		a.Explanation = exp
	} else {
		a.Explanation = s.resolver.Explain(doc)
	}

	if t, ok := deps.StartupSettings(doc); ok {
		a.Startup = t
	}
	return a, nil
}

// CacheLen returns the number of cached analyses.
func (s *Scanner) CacheLen() int { return s.cache.Len() }

func (s *Scanner) workers() int {
	if s.opts.Workers > 0 {
		return s.opts.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Failed returns the results that carry an error.
func (r *Report) Failed() []FileResult {
	var out []FileResult
	for _, fr := range r.Files {
		if fr.Err != nil {
			out = append(out, fr)
		}
	}
	return out
}
