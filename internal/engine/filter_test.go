package engine

import (
	"testing"

	"github.com/uprez/upgrade-engine/internal/model"
)

func ids(props []model.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestFilterCandidatesExcludesOriginal(t *testing.T) {
	orig := prop("a", 2, 1, "Old Town", 100)
	all := []model.Property{orig, prop("b", 2, 1, "Harbor", 150)}
	got := FilterCandidates(all, orig, DefaultGuardrails())
	if len(got) != 1 || got[0].ID != "b" {
		t.Fatalf("candidates = %v, want [b]", ids(got))
	}
}

func TestFilterCandidatesExcludesFewerBeds(t *testing.T) {
	orig := prop("a", 3, 1, "Old Town", 100)
	all := []model.Property{
		prop("small", 2, 1, "Harbor", 150),
		prop("equal", 3, 1, "Harbor", 150),
		prop("bigger", 4, 1, "Harbor", 150),
	}
	got := FilterCandidates(all, orig, DefaultGuardrails())
	want := []string{"equal", "bigger"}
	if len(got) != 2 || got[0].ID != want[0] || got[1].ID != want[1] {
		t.Fatalf("candidates = %v, want %v", ids(got), want)
	}
}

func TestFilterCandidatesExcludesBlocked(t *testing.T) {
	orig := prop("a", 2, 1, "Old Town", 100)
	g := DefaultGuardrails()
	g.BlockedPropIDs = []string{"banned"}
	all := []model.Property{
		prop("banned", 3, 2, "Harbor", 150),
		prop("ok", 3, 2, "Harbor", 150),
	}
	got := FilterCandidates(all, orig, g)
	if len(got) != 1 || got[0].ID != "ok" {
		t.Fatalf("candidates = %v, want [ok]", ids(got))
	}
}

func TestFilterCandidatesExcludesAboveMultiplier(t *testing.T) {
	orig := prop("a", 2, 1, "Old Town", 100)
	g := DefaultGuardrails()
	g.MaxADRMultiplier = 2.0
	all := []model.Property{
		prop("at_limit", 2, 1, "Harbor", 200),
		prop("above", 2, 1, "Harbor", 200.01),
	}
	got := FilterCandidates(all, orig, g)
	if len(got) != 1 || got[0].ID != "at_limit" {
		t.Fatalf("candidates = %v, want [at_limit]", ids(got))
	}
}

func TestFilterCandidatesZeroMultiplierDisablesCap(t *testing.T) {
	orig := prop("a", 2, 1, "Old Town", 100)
	g := DefaultGuardrails()
	g.MaxADRMultiplier = 0
	all := []model.Property{prop("expensive", 2, 1, "Harbor", 10000)}
	got := FilterCandidates(all, orig, g)
	if len(got) != 1 {
		t.Fatalf("candidates = %v, want [expensive]", ids(got))
	}
}

func TestFilterCandidatesPreservesInputOrder(t *testing.T) {
	orig := prop("a", 1, 1, "Old Town", 100)
	all := []model.Property{
		prop("c1", 2, 1, "Harbor", 150),
		prop("c2", 2, 1, "Harbor", 150),
		prop("c3", 2, 1, "Harbor", 150),
	}
	got := FilterCandidates(all, orig, DefaultGuardrails())
	for i, want := range []string{"c1", "c2", "c3"} {
		if got[i].ID != want {
			t.Fatalf("candidates = %v, want input order preserved", ids(got))
		}
	}
}

func TestFilterCandidatesEmptyResultIsNormal(t *testing.T) {
	orig := prop("a", 5, 2, "Old Town", 100)
	all := []model.Property{orig, prop("b", 2, 1, "Harbor", 150)}
	got := FilterCandidates(all, orig, DefaultGuardrails())
	if len(got) != 0 {
		t.Fatalf("candidates = %v, want empty", ids(got))
	}
}
