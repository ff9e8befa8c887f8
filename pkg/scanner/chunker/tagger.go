// Package chunker labels candidate opinion targets with a rule-based noun
// chunker over a small part-of-speech lexicon tuned for product and service
// reviews.
package chunker

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Tagger assigns coarse POS tags from a lexicon, suffix heuristics and a
// pass of contextual corrections.
type Tagger struct {
	lexicon map[string]POS
}

// NewTagger creates a Tagger with the default review lexicon.
func NewTagger() *Tagger {
	t := &Tagger{
		lexicon: make(map[string]POS),
	}
	t.loadDefaultLexicon()
	return t
}

// Tag returns one POS per word. Pass one is lexicon lookup with suffix
// fallback; pass two applies contextual corrections.
func (t *Tagger) Tag(words []string) []POS {
	tags := make([]POS, len(words))

	for i, word := range words {
		tags[i] = t.lookupBaseline(word)
	}

	for i := 0; i < len(tags); i++ {
		currentWord := words[i]
		currentTag := tags[i]

		// Context
		var prevTag POS = Other
		if i > 0 {
			prevTag = tags[i-1]
		}

		// "the [charge]", "fast [charging]"
		if (prevTag == Determiner || prevTag == Adjective) && currentTag == Verb {
			tags[i] = Noun
			continue
		}
		// "can [charge]", "to [charge]"
		if (prevTag == Modal || (i > 0 && isTo(words[i-1]))) && currentTag.IsNominal() {
			tags[i] = Verb
			continue
		}
		// "quality of [service]"
		if i > 0 && isOf(words[i-1]) && currentTag == Verb {
			tags[i] = Noun
			continue
		}
		// Sentence-initial capitals are not evidence of a proper noun.
		if i == 0 && currentTag == ProperNoun {
			tags[i] = t.inferPOS(fastLower(currentWord))
		}
	}

	return tags
}

func (t *Tagger) lookupBaseline(word string) POS {
	lower := fastLower(word)

	// Check lexicon
	if pos, ok := t.lexicon[lower]; ok {
		return pos
	}

	// Infer from heuristics
	return t.inferPOS(word)
}

func (t *Tagger) inferPOS(word string) POS {
	lower := fastLower(word)

	first, _ := utf8.DecodeRuneInString(word)
	if word == "" || (!unicode.IsLetter(first) && !unicode.IsDigit(first)) {
		return Punctuation
	}
	if unicode.IsUpper(first) {
		return ProperNoun
	}

	// Suffix heuristics
	if strings.HasSuffix(lower, "ly") {
		return Adverb
	}
	if strings.HasSuffix(lower, "ing") || strings.HasSuffix(lower, "ed") || strings.HasSuffix(lower, "en") {
		return Verb
	}
	if strings.HasSuffix(lower, "ness") || strings.HasSuffix(lower, "tion") ||
		strings.HasSuffix(lower, "ment") || strings.HasSuffix(lower, "ity") ||
		strings.HasSuffix(lower, "er") || strings.HasSuffix(lower, "or") {
		return Noun
	}
	if strings.HasSuffix(lower, "ful") || strings.HasSuffix(lower, "less") ||
		strings.HasSuffix(lower, "ous") || strings.HasSuffix(lower, "ive") ||
		strings.HasSuffix(lower, "able") || strings.HasSuffix(lower, "ible") {
		return Adjective
	}

	return Noun
}

// fastLower returns the string if it contains no uppercase characters,
// otherwise returns strings.ToLower(s). Avoids allocation for common case.
func fastLower(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			return strings.ToLower(s)
		}
	}
	return s
}

func isTo(s string) bool {
	return len(s) == 2 && (s[0] == 't' || s[0] == 'T') && (s[1] == 'o' || s[1] == 'O')
}

func isOf(s string) bool {
	return len(s) == 2 && (s[0] == 'o' || s[0] == 'O') && (s[1] == 'f' || s[1] == 'F')
}

// SetPOS overrides the lexicon entry for word.
func (t *Tagger) SetPOS(word string, pos POS) {
	t.lexicon[fastLower(word)] = pos
}

func (t *Tagger) add(pos POS, words ...string) {
	for _, w := range words {
		t.lexicon[w] = pos
	}
}

func (t *Tagger) loadDefaultLexicon() {
	t.add(Determiner, "the", "a", "an", "this", "that", "these", "those", "my", "your",
		"his", "her", "its", "our", "their", "some", "any", "no", "every", "each", "all", "both",
		"few", "many", "much", "most", "other", "another")

	t.add(Preposition, "in", "on", "at", "to", "for", "with", "by", "from", "of", "about",
		"into", "through", "during", "before", "after", "above", "below", "between", "under", "over",
		"against", "among", "around", "behind", "beside", "beyond", "near", "toward", "towards",
		"upon", "within", "without", "across", "along", "inside", "outside", "than")

	t.add(Auxiliary, "is", "are", "was", "were", "be", "been", "being", "am", "'s", "'re",
		"have", "has", "had", "having", "do", "does", "did", "doing", "seems", "seemed", "looks", "felt", "feels")

	t.add(Modal, "can", "could", "will", "would", "shall", "should", "may", "might", "must")

	t.add(Conjunction, "and", "or", "but", "nor", "yet", "so", "because", "although", "though",
		"while", "if", "unless", "until", "since", "when", "where", "whether", "however")

	t.add(Pronoun, "i", "you", "he", "she", "it", "we", "they", "me", "him", "us", "them",
		"myself", "yourself", "himself", "herself", "itself", "ourselves", "themselves",
		"everything", "nothing", "something", "anything", "everyone", "one")

	// "that" stays a determiner.
	t.add(RelativePronoun, "who", "whom", "whose", "which", "what")

	t.add(Adjective, "good", "bad", "great", "excellent", "awful", "terrible", "horrible", "nice",
		"poor", "amazing", "fantastic", "perfect", "friendly", "rude", "slow", "fast", "quick",
		"cheap", "expensive", "pricey", "clean", "dirty", "small", "large", "big", "tiny", "huge",
		"old", "new", "hot", "cold", "warm", "fresh", "tasty", "bland", "loud", "quiet", "bright",
		"dim", "sharp", "blurry", "solid", "flimsy", "worst", "best", "better", "worse", "overall",
		"decent", "mediocre", "average", "helpful", "attentive", "cozy", "noisy", "stale")

	t.add(Adverb, "very", "quite", "rather", "really", "too", "just", "only", "pretty",
		"now", "then", "here", "there", "always", "never", "often", "sometimes", "not", "n't",
		"absolutely", "totally", "extremely", "definitely", "also", "again", "already", "still", "even")

	t.add(Verb, "love", "loved", "hate", "hated", "like", "liked", "enjoy", "enjoyed",
		"recommend", "recommended", "buy", "bought", "order", "ordered", "return", "returned",
		"break", "broke", "broken", "work", "works", "worked", "stop", "stopped", "die", "died",
		"arrive", "arrived", "come", "came", "go", "went", "get", "got", "take", "took", "make", "made",
		"charge", "charges", "last", "lasts", "lasted", "say", "said", "want", "wanted", "need", "needed",
		"wait", "waited", "serve", "served", "try", "tried", "use", "used", "feel", "look")

	t.add(Noun, "battery", "screen", "camera", "price", "service", "staff", "food", "room",
		"location", "quality", "design", "sound", "keyboard", "display", "delivery", "waiter",
		"menu", "portion", "bed", "breakfast", "view", "app", "software", "performance", "value",
		"life", "size", "speed", "signal", "lens", "case", "charger", "atmosphere", "decor", "wine")
}
