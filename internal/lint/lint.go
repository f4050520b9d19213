// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package lint runs structural consistency checks over TS catalogs:
// the properties a catalog must satisfy regardless of what any of its
// strings actually say.
package lint

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/olegiv/otms-go/internal/plural"
	"github.com/olegiv/otms-go/internal/ts"
)

// Issue severities.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
	SeverityInfo    = "info"
)

// Rule identifiers.
const (
	RuleEmptySource        = "empty-source"
	RuleNumerusFormCount   = "numerus-form-count"
	RulePlaceholderMissing = "placeholder-missing"
	RuleDuplicateMessage   = "duplicate-message"
	RuleStaleMessage       = "stale-message"
)

// Issue is a single finding against a catalog message.
type Issue struct {
	Severity string `json:"severity"`
	Rule     string `json:"rule"`
	Context  string `json:"context"`
	Source   string `json:"source,omitempty"`
	Line     int    `json:"line,omitempty"`
	Message  string `json:"message"`
}

// Summary tallies issues by severity.
type Summary struct {
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
}

// Summarize counts issues by severity.
func Summarize(issues []Issue) Summary {
	var s Summary
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityError:
			s.Errors++
		case SeverityWarning:
			s.Warnings++
		default:
			s.Infos++
		}
	}
	return s
}

// placeholderRe matches the substitution tokens Photini strings carry:
// str.format style ({0}, {year}) and Qt numerus counts (%n).
var placeholderRe = regexp.MustCompile(`\{[A-Za-z0-9_]+\}|\{\d*\}|%n`)

// Placeholders returns the sorted unique substitution tokens in s.
func Placeholders(s string) []string {
	found := placeholderRe.FindAllString(s, -1)
	if len(found) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(found))
	var out []string
	for _, tok := range found {
		if _, ok := seen[tok]; !ok {
			seen[tok] = struct{}{}
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}

// Check runs all rules against a catalog and returns the findings in
// document order.
func Check(f *ts.File) []Issue {
	var issues []Issue
	lang := f.Language
	wantForms := plural.Forms(lang)

	for _, ctx := range f.Contexts {
		seen := make(map[string]int) // source + first location -> count
		for i := range ctx.Messages {
			msg := &ctx.Messages[i]
			line := firstLine(msg)

			if strings.TrimSpace(msg.Source) == "" {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Rule:     RuleEmptySource,
					Context:  ctx.Name,
					Line:     line,
					Message:  "message has an empty source string",
				})
				continue
			}

			issues = append(issues, checkNumerus(ctx.Name, msg, lang, wantForms)...)
			issues = append(issues, checkPlaceholders(ctx.Name, msg)...)

			switch msg.Status() {
			case ts.StatusVanished, ts.StatusObsolete:
				issues = append(issues, Issue{
					Severity: SeverityInfo,
					Rule:     RuleStaleMessage,
					Context:  ctx.Name,
					Source:   msg.Source,
					Line:     line,
					Message:  fmt.Sprintf("message is %s and no longer extracted from source", msg.Status()),
				})
			}

			key := fmt.Sprintf("%s\x00%s\x00%d", msg.Source, firstFile(msg), line)
			seen[key]++
			if seen[key] == 2 {
				issues = append(issues, Issue{
					Severity: SeverityWarning,
					Rule:     RuleDuplicateMessage,
					Context:  ctx.Name,
					Source:   msg.Source,
					Line:     line,
					Message:  "duplicate message with identical source and location",
				})
			}
		}
	}
	return issues
}

// checkNumerus verifies numerus messages declare the form count the
// catalog language requires. Unfinished messages only need a skeleton, so
// a short form list is reported at warning level, a finished one at error.
func checkNumerus(context string, msg *ts.Message, lang string, wantForms int) []Issue {
	if !msg.IsNumerus() {
		return nil
	}

	got := len(msg.Translation.NumerusForms)
	minForms := 2
	if wantForms < minForms {
		minForms = wantForms
	}

	var issues []Issue
	if got < minForms {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Rule:     RuleNumerusFormCount,
			Context:  context,
			Source:   msg.Source,
			Line:     firstLine(msg),
			Message:  fmt.Sprintf("numerus message declares %d forms, at least %d required", got, minForms),
		})
		return issues
	}

	if msg.Status() == ts.StatusFinished && got != wantForms {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Rule:     RuleNumerusFormCount,
			Context:  context,
			Source:   msg.Source,
			Line:     firstLine(msg),
			Message:  fmt.Sprintf("finished numerus message declares %d forms, language %q requires %d", got, lang, wantForms),
		})
	}
	return issues
}

// checkPlaceholders verifies every substitution token of the source
// string survives into a finished translation. Only finished messages are
// checked: partial translations legitimately lack tokens.
func checkPlaceholders(context string, msg *ts.Message) []Issue {
	if msg.Status() != ts.StatusFinished || !msg.Translated() {
		return nil
	}

	want := Placeholders(msg.Source)
	if len(want) == 0 {
		return nil
	}

	targets := []string{msg.Translation.Text}
	if msg.IsNumerus() {
		targets = msg.Translation.NumerusForms
	}

	var issues []Issue
	for _, tok := range want {
		// %n may legally be dropped from singular numerus forms ("one
		// photo"), so it only has to appear in at least one form.
		if tok == "%n" && msg.IsNumerus() {
			if anyContains(targets, tok) {
				continue
			}
		}
		for fi, target := range targets {
			if target == "" || strings.Contains(target, tok) {
				continue
			}
			detail := "translation"
			if msg.IsNumerus() {
				detail = fmt.Sprintf("numerus form %d", fi)
			}
			issues = append(issues, Issue{
				Severity: SeverityError,
				Rule:     RulePlaceholderMissing,
				Context:  context,
				Source:   msg.Source,
				Line:     firstLine(msg),
				Message:  fmt.Sprintf("placeholder %s missing from %s", tok, detail),
			})
		}
	}
	return issues
}

func anyContains(targets []string, tok string) bool {
	for _, t := range targets {
		if strings.Contains(t, tok) {
			return true
		}
	}
	return false
}

func firstLine(msg *ts.Message) int {
	if len(msg.Locations) > 0 {
		return msg.Locations[0].Line
	}
	return 0
}

func firstFile(msg *ts.Message) string {
	if len(msg.Locations) > 0 {
		return msg.Locations[0].Filename
	}
	return ""
}
