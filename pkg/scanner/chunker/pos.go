package chunker

// POS is a coarse part-of-speech class.
type POS int

const (
	Other POS = iota
	Noun
	ProperNoun
	Verb
	Adjective
	Adverb
	Determiner
	Preposition
	Auxiliary
	Modal
	Conjunction
	Pronoun
	RelativePronoun
	Punctuation
)

var posNames = [...]string{"X", "NN", "NNP", "VB", "JJ", "RB", "DT", "IN", "AUX", "MD", "CC", "PRP", "WP", "PUNCT"}

func (p POS) String() string {
	if int(p) < len(posNames) {
		return posNames[p]
	}
	return "X"
}

// IsNominal reports noun classes.
func (p POS) IsNominal() bool {
	return p == Noun || p == ProperNoun
}

// IsVerbal reports verb classes.
func (p POS) IsVerbal() bool {
	return p == Verb || p == Auxiliary || p == Modal
}

// IsModifier reports adjectives and adverbs.
func (p POS) IsModifier() bool {
	return p == Adjective || p == Adverb
}
