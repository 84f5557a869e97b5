package decoder

import (
	"testing"

	"resumeforge/internal/types"

	"github.com/stretchr/testify/assert"
)

func TestMergeJob(t *testing.T) {
	tests := []struct {
		name string
		acc  types.JobRequirement
		next types.JobRequirement
		want types.JobRequirement
	}{
		{
			name: "case sensitive union keeps first seen order",
			acc:  types.JobRequirement{RequiredSkills: []string{"Python", "SQL"}},
			next: types.JobRequirement{RequiredSkills: []string{"sql", "Go"}},
			want: types.JobRequirement{RequiredSkills: []string{"Python", "SQL", "sql", "Go"}, Tasks: []string{}},
		},
		{
			name: "exact duplicates collapse",
			acc:  types.JobRequirement{Tasks: []string{"Ship", "Ship"}},
			next: types.JobRequirement{Tasks: []string{"Ship", "Review"}},
			want: types.JobRequirement{RequiredSkills: []string{}, Tasks: []string{"Ship", "Review"}},
		},
		{
			name: "first writer wins for scalars",
			acc:  types.JobRequirement{JobTitle: "SRE"},
			next: types.JobRequirement{JobTitle: "Platform Engineer", JobPoster: "Acme", Profile: "Senior"},
			want: types.JobRequirement{JobTitle: "SRE", JobPoster: "Acme", Profile: "Senior", RequiredSkills: []string{}, Tasks: []string{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MergeJob(tt.acc, tt.next))
		})
	}
}

func TestMergeJobDoesNotAliasInputs(t *testing.T) {
	acc := types.JobRequirement{RequiredSkills: make([]string, 1, 8)}
	acc.RequiredSkills[0] = "Go"

	merged := MergeJob(acc, types.JobRequirement{RequiredSkills: []string{"Rust"}})
	merged.RequiredSkills[0] = "changed"

	assert.Equal(t, "Go", acc.RequiredSkills[0])
}
