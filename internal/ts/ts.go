// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package ts implements reading and writing of Qt Linguist TS translation
// catalogs, the XML format Photini ships its UI translations in.
package ts

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Message translation states as stored in the type attribute of the
// translation element. An absent attribute means the message is finished.
const (
	StatusFinished   = "finished"
	StatusUnfinished = "unfinished"
	StatusVanished   = "vanished"
	StatusObsolete   = "obsolete"
)

// File is a single TS catalog: all contexts and messages for one target locale.
type File struct {
	XMLName        xml.Name  `xml:"TS"`
	Version        string    `xml:"version,attr,omitempty"`
	Language       string    `xml:"language,attr,omitempty"`
	SourceLanguage string    `xml:"sourcelanguage,attr,omitempty"`
	Contexts       []Context `xml:"context"`
}

// Context groups the messages belonging to one originating UI component.
type Context struct {
	Name     string    `xml:"name"`
	Messages []Message `xml:"message"`
}

// Message is a single translatable entry. Source strings are not unique
// within a context: the same string extracted from two places appears twice
// with different locations.
type Message struct {
	Numerus     string      `xml:"numerus,attr,omitempty"`
	Locations   []Location  `xml:"location"`
	Source      string      `xml:"source"`
	Comment     string      `xml:"comment,omitempty"`
	Translation Translation `xml:"translation"`
}

// Location records where the string extraction tool found the source string.
// Provenance for translators only, never used at lookup time.
type Location struct {
	Filename string `xml:"filename,attr"`
	Line     int    `xml:"line,attr,omitempty"`
}

// Translation holds the localized text, or ordered numerus forms for
// plural-aware messages.
type Translation struct {
	Type         string   `xml:"type,attr,omitempty"`
	Text         string   `xml:",chardata"`
	NumerusForms []string `xml:"numerusform"`
}

// IsNumerus reports whether the message carries grammatical-number variants.
func (m *Message) IsNumerus() bool {
	return m.Numerus == "yes"
}

// Status returns the translation state of the message.
func (m *Message) Status() string {
	if m.Translation.Type == "" {
		return StatusFinished
	}
	return m.Translation.Type
}

// Translated reports whether the message has usable translated text. A
// finished message with an empty translation still falls back to the source.
func (m *Message) Translated() bool {
	if m.Status() != StatusFinished {
		return false
	}
	if m.IsNumerus() {
		for _, form := range m.Translation.NumerusForms {
			if form != "" {
				return true
			}
		}
		return false
	}
	return m.Translation.Text != ""
}

// Stats summarizes the translation states of a catalog.
type Stats struct {
	Messages   int `json:"messages"`
	Finished   int `json:"finished"`
	Unfinished int `json:"unfinished"`
	Vanished   int `json:"vanished"`
	Obsolete   int `json:"obsolete"`
}

// MessageCount returns the total number of messages across all contexts.
func (f *File) MessageCount() int {
	n := 0
	for _, c := range f.Contexts {
		n += len(c.Messages)
	}
	return n
}

// Stats tallies message states across all contexts.
func (f *File) Stats() Stats {
	var s Stats
	for _, c := range f.Contexts {
		for i := range c.Messages {
			s.Messages++
			switch c.Messages[i].Status() {
			case StatusFinished:
				s.Finished++
			case StatusUnfinished:
				s.Unfinished++
			case StatusVanished:
				s.Vanished++
			case StatusObsolete:
				s.Obsolete++
			}
		}
	}
	return s
}

// Context returns the named context, or nil if the catalog has none.
func (f *File) Context(name string) *Context {
	for i := range f.Contexts {
		if f.Contexts[i].Name == name {
			return &f.Contexts[i]
		}
	}
	return nil
}

// Parse reads a TS catalog from r. Translation text is kept verbatim:
// strings like "sort by: " carry significant trailing whitespace.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := xml.NewDecoder(r)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decoding TS catalog: %w", err)
	}

	for ci := range f.Contexts {
		ctx := &f.Contexts[ci]
		if ctx.Name == "" {
			return nil, fmt.Errorf("context %d has no name", ci)
		}
		for mi := range ctx.Messages {
			msg := &ctx.Messages[mi]
			if msg.IsNumerus() {
				// The chardata of a numerus translation is only whitespace
				// between the numerusform children.
				msg.Translation.Text = ""
			}
		}
	}

	return &f, nil
}

// ParseFile reads a TS catalog from disk.
func ParseFile(path string) (*File, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer fh.Close()

	f, err := Parse(fh)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return f, nil
}

// Write serializes a catalog in the layout Qt Linguist produces: XML
// declaration, TS doctype, then the indented document.
func Write(w io.Writer, f *File) error {
	if f.Version == "" {
		f.Version = "2.0"
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("writing XML header: %w", err)
	}
	if _, err := io.WriteString(w, "<!DOCTYPE TS>\n"); err != nil {
		return fmt.Errorf("writing doctype: %w", err)
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "    ")
	if err := enc.Encode(f); err != nil {
		return fmt.Errorf("encoding TS catalog: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("flushing encoder: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

// LangFromFilename extracts the language code from catalog names like
// photini.cs.ts. Catalogs that omit the language attribute carry their
// locale in the filename.
func LangFromFilename(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), ".ts")
	if i := strings.LastIndex(base, "."); i >= 0 && i < len(base)-1 {
		return base[i+1:]
	}
	return ""
}

// WriteFile writes a catalog to disk, creating or truncating path.
func WriteFile(path string, f *File) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := Write(fh, f); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}
