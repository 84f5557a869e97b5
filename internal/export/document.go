package export

import (
	"fmt"
	"sort"
	"strings"

	"resumeforge/internal/types"
)

// section is one headed block of the exported document.
type section struct {
	Title   string
	Lines   []string
	Bullets bool
}

// outline arranges a resume into the sections both writers render.
// Empty sections are left out.
func outline(r types.CandidateResume) []section {
	var sections []section
	add := func(title string, bullets bool, lines ...string) {
		var kept []string
		for _, line := range lines {
			if line = strings.TrimSpace(line); line != "" {
				kept = append(kept, line)
			}
		}
		if len(kept) > 0 {
			sections = append(sections, section{Title: title, Lines: kept, Bullets: bullets})
		}
	}

	add("Profile", false, r.Profile)
	add("Contact", false, contactLines(r)...)
	add("Skills", false, strings.Join(r.Skills, ", "))
	add("Education", true, entryLines(r.Education, "degree/certification", "details")...)
	add("Experience", true, entryLines(r.Experience, "company", "role and details")...)
	add("Projects", true, entryLines(r.Projects, "", "")...)
	add("Languages", false, strings.Join(r.Languages, ", "))
	add("Hobbies", false, strings.Join(r.Hobbies, ", "))
	return sections
}

func contactLines(r types.CandidateResume) []string {
	var lines []string
	if r.PhoneNumber != nil {
		lines = append(lines, fmt.Sprintf("Phone: %d", *r.PhoneNumber))
	}
	if r.Location != "" {
		lines = append(lines, "Location: "+r.Location)
	}
	for _, k := range sortedKeys(r.Socials) {
		lines = append(lines, fmt.Sprintf("%s: %s", k, r.Socials[k]))
	}
	return lines
}

// entryLines renders each entry as "title: detail". The title and detail
// keys are preferred; any other keys follow in sorted order.
func entryLines(entries []map[string]string, titleKey, detailKey string) []string {
	lines := make([]string, 0, len(entries))
	for _, entry := range entries {
		var parts []string
		title, detail := entry[titleKey], entry[detailKey]
		switch {
		case title != "" && detail != "":
			parts = append(parts, title+": "+detail)
		case title != "":
			parts = append(parts, title)
		case detail != "":
			parts = append(parts, detail)
		}
		for _, k := range sortedKeys(entry) {
			if k == titleKey || k == detailKey || entry[k] == "" {
				continue
			}
			parts = append(parts, k+": "+entry[k])
		}
		lines = append(lines, strings.Join(parts, "; "))
	}
	return lines
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
