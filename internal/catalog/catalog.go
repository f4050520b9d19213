// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package catalog provides the runtime translation lookup for TS catalogs.
// Catalogs are loaded wholesale at startup and only replaced by an explicit
// reload; lookups never mutate them.
package catalog

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/text/language"

	"github.com/olegiv/otms-go/internal/plural"
	"github.com/olegiv/otms-go/internal/ts"
)

// entry is the resolved lookup record for one (context, source) pair.
type entry struct {
	text     string
	numerus  bool
	forms    []string
	finished bool
}

// Catalog holds the loaded translations for all target locales.
type Catalog struct {
	mu          sync.RWMutex
	dir         string
	entries     map[string]map[string]map[string]*entry // lang -> context -> source
	matcher     language.Matcher
	supported   []language.Tag
	defaultLang string
	logger      *slog.Logger
}

// New creates an empty catalog with the given default (source) language.
func New(defaultLang string, logger *slog.Logger) *Catalog {
	if defaultLang == "" {
		defaultLang = "en"
	}
	return &Catalog{
		entries:     make(map[string]map[string]map[string]*entry),
		defaultLang: defaultLang,
		logger:      logger,
	}
}

// Load reads every *.ts file under dir and replaces the catalog contents.
func (c *Catalog) Load(dir string) error {
	c.mu.Lock()
	c.dir = dir
	c.mu.Unlock()
	return c.loadFS(os.DirFS(dir))
}

// LoadFS reads every *.ts file in fsys and replaces the catalog contents.
func (c *Catalog) LoadFS(fsys fs.FS) error {
	return c.loadFS(fsys)
}

func (c *Catalog) loadFS(fsys fs.FS) error {
	paths, err := fs.Glob(fsys, "*.ts")
	if err != nil {
		return fmt.Errorf("globbing catalog files: %w", err)
	}
	sort.Strings(paths)

	entries := make(map[string]map[string]map[string]*entry)
	var langs []string

	for _, path := range paths {
		fh, err := fsys.Open(path)
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		file, err := ts.Parse(fh)
		_ = fh.Close()
		if err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}

		lang := file.Language
		if lang == "" {
			lang = ts.LangFromFilename(path)
		}
		if lang == "" {
			if c.logger != nil {
				c.logger.Warn("skipping catalog without language", "file", path)
			}
			continue
		}

		if entries[lang] == nil {
			entries[lang] = make(map[string]map[string]*entry)
			langs = append(langs, lang)
		}
		mergeFile(entries[lang], file)

		if c.logger != nil {
			c.logger.Debug("loaded catalog", "file", path, "language", lang,
				"messages", file.MessageCount())
		}
	}

	tags := make([]language.Tag, 0, len(langs)+1)
	tags = append(tags, language.Make(c.defaultLang))
	for _, lang := range langs {
		if lang != c.defaultLang {
			tags = append(tags, language.Make(lang))
		}
	}

	c.mu.Lock()
	c.entries = entries
	c.supported = tags
	c.matcher = language.NewMatcher(tags)
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("catalog loaded", "languages", langs)
	}
	return nil
}

// mergeFile folds a parsed TS file into the per-language lookup map.
// When a (context, source) pair appears more than once, a finished entry
// wins over an unfinished or obsolete one.
func mergeFile(byContext map[string]map[string]*entry, file *ts.File) {
	for _, ctx := range file.Contexts {
		msgs := byContext[ctx.Name]
		if msgs == nil {
			msgs = make(map[string]*entry)
			byContext[ctx.Name] = msgs
		}
		for i := range ctx.Messages {
			msg := &ctx.Messages[i]
			if msg.Source == "" {
				continue
			}
			if prev, ok := msgs[msg.Source]; ok && prev.finished {
				continue
			}
			msgs[msg.Source] = &entry{
				text:     msg.Translation.Text,
				numerus:  msg.IsNumerus(),
				forms:    msg.Translation.NumerusForms,
				finished: msg.Translated(),
			}
		}
	}
}

// Reload re-reads the directory the catalog was last loaded from.
func (c *Catalog) Reload() error {
	c.mu.RLock()
	dir := c.dir
	c.mu.RUnlock()
	if dir == "" {
		return fmt.Errorf("catalog has no source directory")
	}
	return c.Load(dir)
}

// Tr returns the translation of source within context for lang. Missing,
// unfinished, or empty translations fall back to the source text.
func (c *Catalog) Tr(lang, context, source string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e := c.lookup(lang, context, source)
	if e == nil || !e.finished || e.numerus {
		return source
	}
	return e.text
}

// TrN returns the numerus form of source selected by count n, with any %n
// placeholder substituted. Non-numerus messages behave like Tr.
func (c *Catalog) TrN(lang, context, source string, n int) string {
	c.mu.RLock()
	e := c.lookup(lang, context, source)
	c.mu.RUnlock()

	text := source
	if e != nil && e.finished {
		if e.numerus {
			idx := plural.Index(lang, n)
			if idx < len(e.forms) && e.forms[idx] != "" {
				text = e.forms[idx]
			}
		} else {
			text = e.text
		}
	}
	return strings.ReplaceAll(text, "%n", strconv.Itoa(n))
}

// lookup must be called with at least a read lock held.
func (c *Catalog) lookup(lang, context, source string) *entry {
	byContext, ok := c.entries[lang]
	if !ok {
		byContext, ok = c.entries[c.defaultLang]
		if !ok {
			return nil
		}
	}
	msgs, ok := byContext[context]
	if !ok {
		return nil
	}
	e, ok := msgs[source]
	if !ok {
		if c.logger != nil && lang != c.defaultLang {
			c.logger.Debug("missing translation", "language", lang,
				"context", context, "source", source)
		}
		return nil
	}
	return e
}

// Languages returns the loaded language codes, default language first.
func (c *Catalog) Languages() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	langs := make([]string, 0, len(c.entries))
	if _, ok := c.entries[c.defaultLang]; ok {
		langs = append(langs, c.defaultLang)
	}
	rest := make([]string, 0, len(c.entries))
	for lang := range c.entries {
		if lang != c.defaultLang {
			rest = append(rest, lang)
		}
	}
	sort.Strings(rest)
	return append(langs, rest...)
}

// Count returns the number of loaded messages for a language.
func (c *Catalog) Count(lang string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, msgs := range c.entries[lang] {
		n += len(msgs)
	}
	return n
}

// DefaultLanguage returns the configured fallback language.
func (c *Catalog) DefaultLanguage() string {
	return c.defaultLang
}

// MatchLanguage finds the best loaded language for an Accept-Language
// header or plain language code.
func (c *Catalog) MatchLanguage(acceptLang string) string {
	c.mu.RLock()
	matcher := c.matcher
	supported := c.supported
	c.mu.RUnlock()

	if matcher == nil || acceptLang == "" {
		return c.defaultLang
	}

	tags, _, err := language.ParseAcceptLanguage(acceptLang)
	if err != nil || len(tags) == 0 {
		tag, err := language.Parse(acceptLang)
		if err != nil {
			return c.defaultLang
		}
		tags = []language.Tag{tag}
	}

	_, idx, _ := matcher.Match(tags...)
	if idx >= 0 && idx < len(supported) {
		return supported[idx].String()
	}
	return c.defaultLang
}
