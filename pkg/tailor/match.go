package tailor

import (
	"regexp"
	"strings"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Normalize lowercases the text, trims it, and collapses interior whitespace
// runs to single spaces. It is idempotent: normalizing twice yields the same
// result as normalizing once.
func Normalize(text string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(strings.TrimSpace(text)), " ")
}

// MatchSection picks the schema section a table's text belongs to, or nil
// when no section qualifies. Sections are evaluated in order and the first
// hit wins; there is no one-to-one constraint, so with near-duplicate
// section texts one section can claim several tables.
func MatchSection(tableText string, sections []Section) *Section {
	idx := matchSectionIndex(tableText, sections)
	if idx < 0 {
		return nil
	}
	return &sections[idx]
}

// matchSectionIndex implements the matching heuristic against normalized
// text. Per section, exactly one rule fires:
//
//  1. title and company both non-empty and both substrings;
//  2. otherwise, when the section has no company, title as a substring;
//  3. otherwise, at least half of the section's bullets as substrings.
//
// A section with both title and company set never matches on title alone.
func matchSectionIndex(tableText string, sections []Section) int {
	text := Normalize(tableText)

	for i, section := range sections {
		title := Normalize(section.Title)
		company := Normalize(section.Company)

		if title != "" && company != "" &&
			strings.Contains(text, title) && strings.Contains(text, company) {
			return i
		} else if title != "" && company == "" && strings.Contains(text, title) {
			return i
		} else if len(section.BulletPoints) > 0 {
			hits := 0
			for _, bullet := range section.BulletPoints {
				if strings.Contains(text, Normalize(bullet.Text)) {
					hits++
				}
			}
			if float64(hits) >= float64(len(section.BulletPoints))*0.5 {
				return i
			}
		}
	}
	return -1
}
