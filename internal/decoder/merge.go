package decoder

import "resumeforge/internal/types"

// MergeJob folds next into acc. Scalars keep the first non-empty value and
// lists are unioned with exact, case-sensitive dedup in first-seen order.
func MergeJob(acc, next types.JobRequirement) types.JobRequirement {
	out := types.JobRequirement{
		JobPoster:      firstNonEmpty(acc.JobPoster, next.JobPoster),
		JobTitle:       firstNonEmpty(acc.JobTitle, next.JobTitle),
		Profile:        firstNonEmpty(acc.Profile, next.Profile),
		RequiredSkills: union(acc.RequiredSkills, next.RequiredSkills),
		Tasks:          union(acc.Tasks, next.Tasks),
	}
	return out
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, s := range list {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}
