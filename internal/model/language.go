// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Language text directions
const (
	DirectionLTR = "ltr"
	DirectionRTL = "rtl"
)

// Language represents one target locale a translation catalog exists for.
type Language struct {
	ID          int64     `json:"id"`
	Code        string    `json:"code"`         // BCP 47 / ISO 639-1: en, cs, ru
	Name        string    `json:"name"`         // English, Czech, Russian
	NativeName  string    `json:"native_name"`  // English, Čeština, Русский
	IsSource    bool      `json:"is_source"`    // the language source strings are written in
	IsActive    bool      `json:"is_active"`    // served by the lookup API
	Direction   string    `json:"direction"`    // ltr, rtl
	PluralForms int       `json:"plural_forms"` // numerus forms a complete message needs
	CatalogFile string    `json:"catalog_file"` // file the catalog was imported from
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsRTL returns true if the language is right-to-left.
func (l *Language) IsRTL() bool {
	return l.Direction == DirectionRTL
}

// CommonLanguages provides display metadata for the locales Photini
// catalogs commonly ship in.
var CommonLanguages = []struct {
	Code       string
	Name       string
	NativeName string
	Direction  string
}{
	{"en", "English", "English", "ltr"},
	{"cs", "Czech", "Čeština", "ltr"},
	{"de", "German", "Deutsch", "ltr"},
	{"es", "Spanish", "Español", "ltr"},
	{"fr", "French", "Français", "ltr"},
	{"it", "Italian", "Italiano", "ltr"},
	{"nl", "Dutch", "Nederlands", "ltr"},
	{"pl", "Polish", "Polski", "ltr"},
	{"pt", "Portuguese", "Português", "ltr"},
	{"ru", "Russian", "Русский", "ltr"},
	{"uk", "Ukrainian", "Українська", "ltr"},
	{"ar", "Arabic", "العربية", "rtl"},
	{"he", "Hebrew", "עברית", "rtl"},
}

// LanguageMeta returns display metadata for a language code, falling back
// to the code itself for locales not in the common list.
func LanguageMeta(code string) (name, nativeName, direction string) {
	for _, l := range CommonLanguages {
		if l.Code == code {
			return l.Name, l.NativeName, l.Direction
		}
	}
	return code, code, DirectionLTR
}
