// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/olegiv/otms-go/internal/testutil"
)

const csCatalog = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.0" language="cs" sourcelanguage="en">
<context>
    <name>FlickrUploader</name>
    <message>
        <source>Connect</source>
        <translation>Připojit</translation>
    </message>
    <message>
        <source>Replace metadata</source>
        <translation type="unfinished"></translation>
    </message>
    <message numerus="yes">
        <source>Upload %n photo(s)</source>
        <translation>
            <numerusform>Nahrát %n fotografii</numerusform>
            <numerusform>Nahrát %n fotografie</numerusform>
            <numerusform>Nahrát %n fotografií</numerusform>
        </translation>
    </message>
</context>
</TS>
`

const frCatalog = `<?xml version="1.0" encoding="utf-8"?>
<!DOCTYPE TS>
<TS version="2.0" language="fr">
<context>
    <name>FlickrUploader</name>
    <message>
        <source>Connect</source>
        <translation>Connecter</translation>
    </message>
</context>
</TS>
`

// writeCatalogs creates a temp catalog dir with the standard fixtures.
func writeCatalogs(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"photini.cs.ts": csCatalog,
		"photini.fr.ts": frCatalog,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("writing fixture %s: %v", name, err)
		}
	}
	return dir
}

func loadedCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := New("en", testutil.TestLoggerSilent())
	if err := c.Load(writeCatalogs(t)); err != nil {
		t.Fatalf("Load: %v", err)
	}
	return c
}

func TestLoad(t *testing.T) {
	c := loadedCatalog(t)

	langs := c.Languages()
	if len(langs) != 2 {
		t.Fatalf("Languages() = %v, want 2 entries", langs)
	}
	if c.Count("cs") != 3 {
		t.Errorf("Count(cs) = %d, want 3", c.Count("cs"))
	}
	if c.Count("fr") != 1 {
		t.Errorf("Count(fr) = %d, want 1", c.Count("fr"))
	}
}

func TestTr(t *testing.T) {
	c := loadedCatalog(t)

	tests := []struct {
		name    string
		lang    string
		context string
		source  string
		want    string
	}{
		{"finished translation", "cs", "FlickrUploader", "Connect", "Připojit"},
		{"unfinished falls back", "cs", "FlickrUploader", "Replace metadata", "Replace metadata"},
		{"unknown source falls back", "cs", "FlickrUploader", "Stop upload", "Stop upload"},
		{"unknown context falls back", "cs", "MapTabOSM", "Search", "Search"},
		{"unknown language falls back", "eo", "FlickrUploader", "Connect", "Connect"},
		{"numerus via Tr falls back", "cs", "FlickrUploader", "Upload %n photo(s)", "Upload %n photo(s)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Tr(tt.lang, tt.context, tt.source); got != tt.want {
				t.Errorf("Tr(%q, %q, %q) = %q, want %q", tt.lang, tt.context, tt.source, got, tt.want)
			}
		})
	}
}

func TestTrN(t *testing.T) {
	c := loadedCatalog(t)

	tests := []struct {
		name string
		n    int
		want string
	}{
		{"singular", 1, "Nahrát 1 fotografii"},
		{"paucal", 3, "Nahrát 3 fotografie"},
		{"plural", 5, "Nahrát 5 fotografií"},
		{"zero", 0, "Nahrát 0 fotografií"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.TrN("cs", "FlickrUploader", "Upload %n photo(s)", tt.n)
			if got != tt.want {
				t.Errorf("TrN(n=%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestTrN_FallbackSubstitutes(t *testing.T) {
	c := loadedCatalog(t)

	// Missing translation still gets %n substituted in the source text.
	got := c.TrN("eo", "FlickrUploader", "Upload %n photo(s)", 7)
	if got != "Upload 7 photo(s)" {
		t.Errorf("TrN fallback = %q, want %q", got, "Upload 7 photo(s)")
	}
}

func TestTrN_NonNumerusMessage(t *testing.T) {
	c := loadedCatalog(t)

	if got := c.TrN("cs", "FlickrUploader", "Connect", 2); got != "Připojit" {
		t.Errorf("TrN on plain message = %q, want %q", got, "Připojit")
	}
}

func TestMergeFile_FinishedWins(t *testing.T) {
	dir := t.TempDir()
	const dup = `<?xml version="1.0"?><!DOCTYPE TS>
<TS version="2.0" language="de">
<context>
    <name>Technical</name>
    <message>
        <source>Lens model</source>
        <translation type="unfinished"></translation>
    </message>
    <message>
        <source>Lens model</source>
        <translation>Objektivmodell</translation>
    </message>
    <message>
        <source>Lens model</source>
        <translation type="obsolete">alt</translation>
    </message>
</context>
</TS>
`
	if err := os.WriteFile(filepath.Join(dir, "photini.de.ts"), []byte(dup), 0644); err != nil {
		t.Fatal(err)
	}

	c := New("en", testutil.TestLoggerSilent())
	if err := c.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	// The finished duplicate must win regardless of document order.
	if got := c.Tr("de", "Technical", "Lens model"); got != "Objektivmodell" {
		t.Errorf("Tr = %q, want finished duplicate to win", got)
	}
}

func TestMatchLanguage(t *testing.T) {
	c := loadedCatalog(t)

	tests := []struct {
		accept string
		want   string
	}{
		{"cs", "cs"},
		{"cs-CZ", "cs"},
		{"fr-FR,fr;q=0.9,en;q=0.8", "fr"},
		{"da", "en"},
		{"", "en"},
		{"not a header !!!", "en"},
	}
	for _, tt := range tests {
		if got := c.MatchLanguage(tt.accept); got != tt.want {
			t.Errorf("MatchLanguage(%q) = %q, want %q", tt.accept, got, tt.want)
		}
	}
}

func TestReload(t *testing.T) {
	dir := writeCatalogs(t)
	c := New("en", testutil.TestLoggerSilent())
	if err := c.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	updated := `<?xml version="1.0"?><!DOCTYPE TS>
<TS version="2.0" language="fr">
<context>
    <name>FlickrUploader</name>
    <message>
        <source>Connect</source>
        <translation>Se connecter</translation>
    </message>
</context>
</TS>
`
	if err := os.WriteFile(filepath.Join(dir, "photini.fr.ts"), []byte(updated), 0644); err != nil {
		t.Fatal(err)
	}

	if err := c.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := c.Tr("fr", "FlickrUploader", "Connect"); got != "Se connecter" {
		t.Errorf("Tr after reload = %q, want %q", got, "Se connecter")
	}
}

func TestReload_WithoutLoad(t *testing.T) {
	c := New("en", testutil.TestLoggerSilent())
	if err := c.Reload(); err == nil {
		t.Fatal("Reload without Load should fail")
	}
}

func TestLoad_EmptyDir(t *testing.T) {
	c := New("en", testutil.TestLoggerSilent())
	if err := c.Load(t.TempDir()); err != nil {
		t.Fatalf("Load of empty dir: %v", err)
	}
	if got := c.Tr("cs", "Any", "thing"); got != "thing" {
		t.Errorf("Tr on empty catalog = %q, want source", got)
	}
	if got := c.MatchLanguage("cs"); got != "en" {
		t.Errorf("MatchLanguage on empty catalog = %q, want default", got)
	}
}
