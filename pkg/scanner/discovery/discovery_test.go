package discovery

import "testing"

func TestRegistryPromotion(t *testing.T) {
	r := NewRegistry(2, "en")

	if r.Observe("Battery") {
		t.Error("first mention should not promote")
	}
	if r.Promoted("battery") {
		t.Error("battery should still be watching")
	}
	if !r.Observe("battery") {
		t.Error("second mention should promote")
	}
	if !r.Promoted("BATTERY") {
		t.Error("lookup should be case-insensitive")
	}
	if r.Observe("battery") {
		t.Error("already promoted candidates do not promote again")
	}
	if got := r.GetStats("battery").Count; got != 3 {
		t.Errorf("Expected count 3, got %d", got)
	}
}

func TestRegistryStopWords(t *testing.T) {
	r := NewRegistry(1, "en")
	r.AddStopWord("Thing")

	if r.Observe("The") {
		t.Error("Should not promote stopword 'The'")
	}
	if r.GetStats("The") != nil {
		t.Error("Stopword 'The' should not have stats")
	}
	if r.Observe("thing") {
		t.Error("Should not promote custom stopword")
	}
	if !r.IsStopword("the of") {
		t.Error("phrase of stopwords should be a stopword")
	}
	if r.IsStopword("the camera") {
		t.Error("phrase with a content word is not a stopword")
	}
}

func TestRegistryResetAndIgnore(t *testing.T) {
	r := NewRegistry(1, "en")
	r.Observe("screen")
	r.Ignore("lens")
	if r.Observe("lens") {
		t.Error("ignored candidates are never promoted")
	}
	if r.Len() != 2 {
		t.Errorf("Expected 2 candidates, got %d", r.Len())
	}

	cands := r.GetCandidates()
	if cands[0].Token != "lens" || cands[0].Status != "ignored" {
		t.Errorf("unexpected candidate order: %+v", cands)
	}

	r.Reset()
	if r.Len() != 0 || r.Promoted("screen") {
		t.Error("Reset should forget every candidate")
	}
}

func TestRegistryInflectedMentionsShareEntry(t *testing.T) {
	r := NewRegistry(2, "en")
	r.Observe("screen")
	if !r.Observe("Screens") {
		t.Error("second inflected mention should promote")
	}
	if r.Len() != 1 {
		t.Errorf("Expected 1 candidate, got %d", r.Len())
	}
	if stats := r.GetStats("screens"); stats == nil || stats.Display != "screen" {
		t.Errorf("unexpected stats %+v", stats)
	}
	if r.Observe("very") {
		t.Error("stopwords are checked before stemming")
	}
}
