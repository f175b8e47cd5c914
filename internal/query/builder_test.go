package query

import (
	"strings"
	"testing"

	"github.com/jonathan/talent-sourcing/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandSynonyms_ContainsOriginalFirst(t *testing.T) {
	for _, skill := range []string{"Go", "golang", "K8s", "Docker", "Machine Learning", "後端"} {
		t.Run(skill, func(t *testing.T) {
			out := ExpandSynonyms(skill)
			require.NotEmpty(t, out)
			assert.Equal(t, skill, out[0])
		})
	}
}

func TestExpandSynonyms_KnownGroup(t *testing.T) {
	assert.Equal(t, []string{"Go", "Golang"}, ExpandSynonyms("Go"))
	assert.Equal(t, []string{"golang", "Go"}, ExpandSynonyms("golang"))
	assert.Equal(t, []string{"Docker"}, ExpandSynonyms("Docker"))
	assert.Nil(t, ExpandSynonyms("  "))
}

func TestExpandSynonyms_Idempotent(t *testing.T) {
	for _, skill := range []string{"Go", "React", "AWS", "Rust", "c#"} {
		t.Run(skill, func(t *testing.T) {
			first := ExpandAll([]string{skill})
			second := ExpandAll(first)
			assert.Equal(t, first, second)

			for _, term := range first {
				assert.ElementsMatch(t, lowerAll(first), lowerAll(ExpandSynonyms(term)))
			}
		})
	}
}

func TestBuild_WebQuery(t *testing.T) {
	q := Build([]string{"Go", "Kubernetes", "Docker", "AWS"}, "Taiwan")

	assert.Equal(t,
		`site:linkedin.com/in ("Go" OR "Golang") AND ("Kubernetes" OR "K8s") ("Docker" OR "AWS" OR "Amazon Web Services") "Taiwan"`,
		q.Web)
}

func TestBuild_WebQuery_SingleSynonymNotGrouped(t *testing.T) {
	q := Build([]string{"Docker", "Terraform"}, "")
	assert.Equal(t, `site:linkedin.com/in "Docker" AND "Terraform"`, q.Web)
}

func TestBuild_CodeHostQueries(t *testing.T) {
	q := Build([]string{"Go", "Kubernetes", "Docker", "Machine Learning"}, "Taiwan")

	assert.Equal(t, []string{
		"Go Kubernetes location:Taiwan",
		"Go Kubernetes location:Taipei",
		"Go Docker location:Taiwan",
		"Go Docker location:Taipei",
		`Go "Machine Learning" location:Taiwan`,
		`Go "Machine Learning" location:Taipei`,
	}, q.CodeHost)

	for _, cq := range q.CodeHost {
		assert.NotContains(t, cq, " OR ")
	}
}

func TestBuild_EmptySkillsYieldsLocationOnly(t *testing.T) {
	q := Build(nil, "Taiwan")

	assert.Equal(t, `site:linkedin.com/in "Taiwan"`, q.Web)
	assert.Equal(t, []string{"location:Taiwan", "location:Taipei"}, q.CodeHost)
}

func TestBuild_NothingAtAll(t *testing.T) {
	q := Build([]string{" "}, "")
	assert.Equal(t, ProfileSite, q.Web)
	assert.Equal(t, []string{"type:user"}, q.CodeHost)
}

func TestLocationVariants(t *testing.T) {
	assert.Equal(t, []string{"Taiwan", "Taipei"}, LocationVariants("台灣"))
	assert.Equal(t, []string{"New Taipei"}, LocationVariants("New Taipei"))
	assert.Nil(t, LocationVariants(""))
}

func TestForRole(t *testing.T) {
	role := types.RoleRequirement{Title: "SRE", RequiredSkills: []string{"Go"}, Location: "Berlin"}
	q := ForRole(role)
	assert.Equal(t, []string{"Go location:Berlin"}, q.CodeHost)
	assert.True(t, strings.HasSuffix(q.Web, `"Berlin"`))
}

func lowerAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}
