// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines domain models and types used throughout the application.
package model

import (
	"encoding/json"
	"time"
)

// Message translation states, mirroring the TS translation type attribute.
const (
	MessageStatusFinished   = "finished"
	MessageStatusUnfinished = "unfinished"
	MessageStatusVanished   = "vanished"
	MessageStatusObsolete   = "obsolete"
)

// Context is a grouping label identifying the UI component a set of
// messages was extracted from.
type Context struct {
	ID         int64     `json:"id"`
	LanguageID int64     `json:"language_id"`
	Name       string    `json:"name"`
	Slug       string    `json:"slug"`
	CreatedAt  time.Time `json:"created_at"`
}

// Message is one translation entry of a catalog. Source strings are not
// unique within a context, so identity is the row id, never the pair
// (context, source).
type Message struct {
	ID           int64     `json:"id"`
	ContextID    int64     `json:"context_id"`
	Source       string    `json:"source"`
	Translation  string    `json:"translation"`
	Status       string    `json:"status"`
	IsNumerus    bool      `json:"is_numerus"`
	NumerusForms string    `json:"-"` // JSON array stored as string
	Comment      string    `json:"comment,omitempty"`
	Locations    string    `json:"-"` // JSON array of {filename,line}
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// MessageLocation is the file/line provenance of an extracted string.
type MessageLocation struct {
	Filename string `json:"filename"`
	Line     int    `json:"line"`
}

// GetNumerusForms parses the stored JSON numerus forms into a slice.
func (m *Message) GetNumerusForms() []string {
	var forms []string
	if m.NumerusForms == "" || m.NumerusForms == "[]" {
		return forms
	}
	_ = json.Unmarshal([]byte(m.NumerusForms), &forms)
	return forms
}

// GetLocations parses the stored JSON locations into a slice.
func (m *Message) GetLocations() []MessageLocation {
	var locs []MessageLocation
	if m.Locations == "" || m.Locations == "[]" {
		return locs
	}
	_ = json.Unmarshal([]byte(m.Locations), &locs)
	return locs
}

// Translated reports whether the message resolves to translated text
// rather than falling back to its source string.
func (m *Message) Translated() bool {
	if m.Status != MessageStatusFinished {
		return false
	}
	if m.IsNumerus {
		for _, f := range m.GetNumerusForms() {
			if f != "" {
				return true
			}
		}
		return false
	}
	return m.Translation != ""
}
