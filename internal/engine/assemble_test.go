package engine

import (
	"testing"

	"github.com/uprez/upgrade-engine/internal/model"
)

func stay(rate float64, nights int) model.Booking {
	return model.Booking{
		BaseNightlyRate: rate,
		Nights:          nights,
		TotalPaid:       rate * float64(nights),
	}
}

func TestAssembleRanksByScoreDescending(t *testing.T) {
	orig := prop("orig", 2, 1, "Old Town", 100)
	candidates := []model.Property{
		prop("plain", 2, 1, "Harbor", 300),      // base 5
		prop("best", 4, 3, "Old Town", 180),     // all bonuses, 10
		prop("middling", 3, 1, "Harbor", 150),   // beds + ratio, 8
	}
	got := Assemble(orig, candidates, stay(100, 2), DefaultGuardrails())

	wantOrder := []string{"best", "middling", "plain"}
	if len(got) != 3 {
		t.Fatalf("got %d options, want 3", len(got))
	}
	for i, want := range wantOrder {
		if got[i].PropID != want {
			t.Fatalf("rank %d is %s, want %s", i+1, got[i].PropID, want)
		}
		if got[i].Ranking != i+1 {
			t.Fatalf("option %s has ranking %d, want %d", got[i].PropID, got[i].Ranking, i+1)
		}
	}
}

func TestAssembleStableTieBreakByFilterOrder(t *testing.T) {
	orig := prop("orig", 2, 1, "Old Town", 100)
	// Identical profiles score identically; the earlier candidate must
	// keep the better rank.
	candidates := []model.Property{
		prop("first", 2, 1, "Harbor", 150),
		prop("second", 2, 1, "Harbor", 150),
	}
	got := Assemble(orig, candidates, stay(100, 2), DefaultGuardrails())
	if got[0].PropID != "first" || got[1].PropID != "second" {
		t.Fatalf("tie broken out of order: %s, %s", got[0].PropID, got[1].PropID)
	}
}

func TestAssembleTruncatesToTopN(t *testing.T) {
	orig := prop("orig", 1, 1, "Old Town", 100)
	candidates := []model.Property{
		prop("c1", 2, 1, "Harbor", 150),
		prop("c2", 2, 1, "Harbor", 150),
		prop("c3", 2, 1, "Harbor", 150),
		prop("c4", 2, 1, "Harbor", 150),
		prop("c5", 2, 1, "Harbor", 150),
	}
	got := Assemble(orig, candidates, stay(100, 2), DefaultGuardrails())
	if len(got) != TopN {
		t.Fatalf("got %d options, want %d", len(got), TopN)
	}
}

func TestAssembleExcludesNonPositiveLift(t *testing.T) {
	orig := prop("orig", 2, 1, "Old Town", 200)
	// Lists below the contracted rate: pricing clamps to list rate and
	// the lift goes negative, so the option must not appear.
	candidates := []model.Property{prop("cheaper", 3, 2, "Harbor", 150)}
	got := Assemble(orig, candidates, stay(200, 2), DefaultGuardrails())
	if len(got) != 0 {
		t.Fatalf("got %d options, want none", len(got))
	}
}

func TestAssembleExcludesBelowMinADRRatio(t *testing.T) {
	orig := prop("orig", 2, 1, "Old Town", 100)
	// Lists barely above the contracted rate: the ceiling caps the offer
	// ADR at 104, under the default 1.05 ratio floor, so the option
	// would under-sell the upgrade and must not appear.
	candidates := []model.Property{prop("slim", 3, 2, "Harbor", 104)}
	got := Assemble(orig, candidates, stay(100, 2), DefaultGuardrails())
	if len(got) != 0 {
		t.Fatalf("got %d options, want none", len(got))
	}

	g := DefaultGuardrails()
	g.MinADRRatio = 0
	if got := Assemble(orig, candidates, stay(100, 2), g); len(got) != 1 {
		t.Fatalf("zero ratio must disable the check, got %d options", len(got))
	}
}

func TestAssembleEmptyCandidates(t *testing.T) {
	orig := prop("orig", 2, 1, "Old Town", 100)
	got := Assemble(orig, nil, stay(100, 2), DefaultGuardrails())
	if len(got) != 0 {
		t.Fatalf("got %d options, want none", len(got))
	}
}

func TestBuildOptionCarriesFallbackCopy(t *testing.T) {
	orig := prop("orig", 1, 1, "Old Town", 100)
	cand := prop("cand", 3, 2, "Harbor", 180, "pool")
	opt, ok := BuildOption(orig, cand, stay(100, 3), DefaultGuardrails())
	if !ok {
		t.Fatalf("expected viable option")
	}
	if opt.Headline == "" || opt.Summary == "" {
		t.Fatalf("fallback copy missing: headline=%q summary=%q", opt.Headline, opt.Summary)
	}
	if opt.AICopy != nil {
		t.Fatalf("assembly must not attach ai copy")
	}
	if len(opt.Images) == 0 {
		t.Fatalf("option must carry at least a default image")
	}
}

func TestBuildOptionDefaultImagePath(t *testing.T) {
	orig := prop("orig", 1, 1, "Old Town", 100)
	cand := prop("cand", 2, 1, "Harbor", 150)
	opt, ok := BuildOption(orig, cand, stay(100, 1), DefaultGuardrails())
	if !ok {
		t.Fatalf("expected viable option")
	}
	if want := "/properties/cand.png"; len(opt.Images) != 1 || opt.Images[0] != want {
		t.Fatalf("images = %v, want [%s]", opt.Images, want)
	}
}
