package tailor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "Software Engineer", "software engineer"},
		{"trims", "  padded  ", "padded"},
		{"collapses runs", "a \t b\n\n c", "a b c"},
		{"empty", "", ""},
		{"only whitespace", " \t\n ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Normalize(got), "normalization must be idempotent")
		})
	}
}

func TestMatchSection(t *testing.T) {
	sections := []Section{
		{
			Title:   "Software Engineer",
			Company: "Tech Corp",
			BulletPoints: []BulletPoint{
				{Text: "Built distributed pipelines"},
				{Text: "Led a team of four"},
			},
		},
		{
			Title: "Open Source Tooling",
			BulletPoints: []BulletPoint{
				{Text: "Maintained a CLI used by thousands"},
				{Text: "Reviewed community patches"},
			},
		},
	}

	tests := []struct {
		name      string
		tableText string
		wantTitle string
		wantMiss  bool
	}{
		{
			name:      "title and company",
			tableText: "SOFTWARE ENGINEER at Tech  Corp, 2020-2023",
			wantTitle: "Software Engineer",
		},
		{
			name:      "title without company for company-less section",
			tableText: "Open Source Tooling (personal)",
			wantTitle: "Open Source Tooling",
		},
		{
			name:      "title alone does not match when company is required",
			tableText: "Software Engineer, somewhere else",
			wantMiss:  true,
		},
		{
			name:      "half the bullets match",
			tableText: "built distributed pipelines and other things",
			wantTitle: "Software Engineer",
		},
		{
			name:      "exactly half the bullets match",
			tableText: "led a team of four", // 1 of 2 bullets meets the threshold
			wantTitle: "Software Engineer",
		},
		{
			name:      "nothing matches",
			tableText: "Education: B.Sc. Computer Science",
			wantMiss:  true,
		},
		{
			name:      "empty table text",
			tableText: "",
			wantMiss:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MatchSection(tt.tableText, sections)
			if tt.wantMiss {
				assert.Nil(t, got)
				return
			}
			if assert.NotNil(t, got) {
				assert.Equal(t, tt.wantTitle, got.Title)
			}
		})
	}
}

func TestMatchSectionBulletFraction(t *testing.T) {
	sections := []Section{{
		Title:   "Ignored Title",
		Company: "Absent Company",
		BulletPoints: []BulletPoint{
			{Text: "first bullet"},
			{Text: "second bullet"},
			{Text: "third bullet"},
			{Text: "fourth bullet"},
		},
	}}

	// 1 of 4 bullets is below the half threshold.
	assert.Nil(t, MatchSection("contains first bullet only", sections))

	// 2 of 4 reaches it.
	assert.NotNil(t, MatchSection("first bullet and second bullet", sections))

	// 3 of 4 is comfortably above.
	assert.NotNil(t, MatchSection("first bullet, second bullet, third bullet", sections))
}

func TestMatchSectionOrder(t *testing.T) {
	// Two sections that would both match; the earlier one wins every time.
	sections := []Section{
		{Title: "Engineer", BulletPoints: []BulletPoint{{Text: "a"}}},
		{Title: "Engineer II", BulletPoints: []BulletPoint{{Text: "b"}}},
	}

	for i := 0; i < 10; i++ {
		got := MatchSection("Engineer II profile", sections)
		if assert.NotNil(t, got) {
			assert.Equal(t, "Engineer", got.Title)
		}
	}
}
