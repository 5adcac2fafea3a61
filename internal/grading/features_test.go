package grading

import "testing"

func TestExtractFeaturesEmpty(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\n\t "} {
		f := ExtractFeatures(text)
		if f != (Features{}) {
			t.Errorf("ExtractFeatures(%q) = %+v, want zero value", text, f)
		}
	}
}

func TestExtractFeaturesCounts(t *testing.T) {
	text := "التعليم مهم، والقراءة مفيدة.\nهل توافق؟ نعم!\nالتعليم أساس التقدم."
	f := ExtractFeatures(text)

	if f.Tokens != 10 {
		t.Errorf("Tokens = %d, want 10", f.Tokens)
	}
	// "التعليم" repeats once
	if f.UniqueTokens != 9 {
		t.Errorf("UniqueTokens = %d, want 9", f.UniqueTokens)
	}
	if f.Commas != 1 {
		t.Errorf("Commas = %d, want 1", f.Commas)
	}
	// two periods, one Arabic question mark, one exclamation mark
	if f.Terminators != 4 {
		t.Errorf("Terminators = %d, want 4", f.Terminators)
	}
	if f.Lines != 3 {
		t.Errorf("Lines = %d, want 3", f.Lines)
	}
	if f.Punct() != 5 {
		t.Errorf("Punct() = %d, want 5", f.Punct())
	}
}

func TestExtractFeaturesSingleLine(t *testing.T) {
	f := ExtractFeatures("كلمة واحدة")
	if f.Lines != 1 {
		t.Errorf("Lines = %d, want 1 for single-line text", f.Lines)
	}
	if f.Tokens != 2 || f.UniqueTokens != 2 {
		t.Errorf("tokens = %d/%d, want 2/2", f.Tokens, f.UniqueTokens)
	}
}

func TestExtractFeaturesASCIIPunctuation(t *testing.T) {
	f := ExtractFeatures("a, b. c? d")
	if f.Commas != 1 {
		t.Errorf("Commas = %d, want 1", f.Commas)
	}
	// Latin question mark is not a counted terminator; only . ! ؟
	if f.Terminators != 1 {
		t.Errorf("Terminators = %d, want 1", f.Terminators)
	}
}
