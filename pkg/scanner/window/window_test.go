package window

import (
	"errors"
	"reflect"
	"testing"
)

var sentence = []string{"The", "screen", "is", "great", "but", "battery", "is", "bad"}

func indexOf(n int) map[string]int {
	idx := make(map[string]int, n)
	for i := 0; i < n; i++ {
		idx[id(i)] = i
	}
	return idx
}

func id(i int) string {
	return "w" + string(rune('a'+i))
}

func TestTokensCompetingTargets(t *testing.T) {
	idx := indexOf(len(sentence))

	got, err := Tokens(sentence, idx, id(1), id(1), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"The", "screen", "is"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got, err = Tokens(sentence, idx, id(5), id(5), 1, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"but", "battery", "is"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestTokensZeroIsTarget(t *testing.T) {
	got, err := Tokens(sentence, indexOf(len(sentence)), id(2), id(4), 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"is", "great", "but"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestTokensUnboundedIsSentence(t *testing.T) {
	got, err := Tokens(sentence, indexOf(len(sentence)), id(3), id(3), 5000, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(got, sentence) {
		t.Errorf("Expected whole sentence, got %v", got)
	}
}

func TestBoundsAlwaysInRange(t *testing.T) {
	n := len(sentence)
	idx := indexOf(n)
	for first := 0; first < n; first++ {
		for last := first; last < n; last++ {
			for _, span := range []int{0, 1, 3, 7, 5000} {
				lo, hi, err := Bounds(n, idx, id(first), id(last), span, span)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if lo < 0 || hi > n-1 || lo > first || hi < last {
					t.Fatalf("bad window [%d,%d] for target [%d,%d] span %d", lo, hi, first, last, span)
				}
			}
		}
	}
}

func TestTokensMissingTarget(t *testing.T) {
	_, err := Tokens(sentence, indexOf(len(sentence)), "w404", id(2), 1, 1)
	var we *Error
	if !errors.As(err, &we) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if we.FirstID != "w404" {
		t.Errorf("Expected FirstID w404, got %s", we.FirstID)
	}

	if _, err := Tokens(sentence, indexOf(len(sentence)), id(4), id(2), 0, 0); err == nil {
		t.Errorf("Expected error for reversed target")
	}
}
