// internal/validator/validator.go
// Admissibility gate applied to every candidate argument before it is
// committed to the transcript. All checks are pure functions of the candidate
// and the previously accepted arguments, so results are deterministic.
package validator

import (
	"regexp"
	"strings"
)

// Rejection reasons surfaced to agents as regeneration feedback
const (
	ReasonTooShort    = "too short"
	ReasonPlaceholder = "placeholder text"
	ReasonNoSubstance = "lacks substance"
	ReasonNotNovel    = "not novel"
	ReasonOffTopic    = "off-topic"
)

// fillerPhrases are hedges stripped before the substance check
var fillerPhrases = []string{
	"i think", "i believe", "in my opinion", "it seems to me",
	"let me say", "as we know", "generally speaking",
}

// placeholderPatterns indicate template or error text leaking into an argument
var placeholderPatterns = []string{
	`\[.*?\]`,
	`<.*?>`,
	`TODO`,
	`FIXME`,
	`XXX`,
	`\[ERROR`,
}

// reasoningIndicators are connectors that mark declarative, on-topic content
var reasoningIndicators = []string{
	`\bbecause\b`, `\btherefore\b`, `\bhowever\b`,
	`\bevidence\b`, `\bresearch\b`, `\bstudies\b`,
	`\bdata\b`, `\banalysis\b`, `\baccording\b`,
	`\bshould\b`, `\bmust\b`, `\bwould\b`,
}

var (
	placeholderRegexes []*regexp.Regexp
	reasoningRegexes   []*regexp.Regexp
	nonWordRegex       = regexp.MustCompile(`[^\w\s]`)
	wordRegex          = regexp.MustCompile(`\w+`)
)

func init() {
	placeholderRegexes = make([]*regexp.Regexp, len(placeholderPatterns))
	for i, p := range placeholderPatterns {
		placeholderRegexes[i] = regexp.MustCompile("(?i)" + p)
	}
	reasoningRegexes = make([]*regexp.Regexp, len(reasoningIndicators))
	for i, p := range reasoningIndicators {
		reasoningRegexes[i] = regexp.MustCompile(p)
	}
}

// Result is the outcome of a validation pass
type Result struct {
	OK     bool
	Reason string
}

// Options configure the gate thresholds
type Options struct {
	MinWords      int     // minimum word count
	MinChars      int     // minimum trimmed length in bytes
	MaxSimilarity float64 // novelty threshold; above it the candidate is a near-duplicate
	NoveltyWindow int     // how many recent accepted arguments the novelty check scans
}

// DefaultOptions mirror the thresholds the debate ran with historically
func DefaultOptions() Options {
	return Options{
		MinWords:      10,
		MinChars:      20,
		MaxSimilarity: 0.7,
		NoveltyWindow: 5,
	}
}

// Validator gates candidate arguments for one debate topic
type Validator struct {
	opts      Options
	topicKeys []string
}

// New creates a validator for the given topic. Topic key terms are extracted
// once so every check over the debate's lifetime sees the same set.
func New(topic string, opts Options) *Validator {
	if opts.MinWords <= 0 {
		opts.MinWords = DefaultOptions().MinWords
	}
	if opts.MinChars <= 0 {
		opts.MinChars = DefaultOptions().MinChars
	}
	if opts.MaxSimilarity <= 0 {
		opts.MaxSimilarity = DefaultOptions().MaxSimilarity
	}
	if opts.NoveltyWindow <= 0 {
		opts.NoveltyWindow = DefaultOptions().NoveltyWindow
	}
	return &Validator{
		opts:      opts,
		topicKeys: ExtractKeywords(topic),
	}
}

// Check runs every gate in order and returns the first failure
func (v *Validator) Check(candidate string, used []string) Result {
	if !v.hasMinimumLength(candidate) {
		return Result{Reason: ReasonTooShort}
	}
	if isPlaceholder(candidate) {
		return Result{Reason: ReasonPlaceholder}
	}
	if !hasSubstance(candidate) {
		return Result{Reason: ReasonNoSubstance}
	}
	if !v.isNovel(candidate, used) {
		return Result{Reason: ReasonNotNovel}
	}
	if !v.isRelevant(candidate) {
		return Result{Reason: ReasonOffTopic}
	}
	return Result{OK: true}
}

// Feedback turns a rejection reason into regeneration guidance for the agent
func Feedback(reason string) string {
	switch reason {
	case ReasonTooShort:
		return "Your argument was too short. Provide more detailed reasoning in at least a few full sentences."
	case ReasonPlaceholder:
		return "Your argument contained placeholder or error text. Provide a real argument with no template markers."
	case ReasonNoSubstance:
		return "Your argument lacked substantive content. Avoid filler phrases and make concrete points."
	case ReasonNotNovel:
		return "Your argument was too similar to an earlier one. Offer a genuinely new perspective or point."
	case ReasonOffTopic:
		return "Your argument did not engage the debate topic. Address its key terms and use clear reasoning."
	default:
		return "Your argument was rejected. Provide a different, well-reasoned argument."
	}
}

func (v *Validator) hasMinimumLength(candidate string) bool {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) < v.opts.MinChars {
		return false
	}
	return len(strings.Fields(trimmed)) >= v.opts.MinWords
}

func isPlaceholder(candidate string) bool {
	for _, re := range placeholderRegexes {
		if re.MatchString(candidate) {
			return true
		}
	}
	return false
}

func hasSubstance(candidate string) bool {
	clean := strings.ToLower(candidate)
	for _, phrase := range fillerPhrases {
		clean = strings.ReplaceAll(clean, phrase, "")
	}
	words := strings.Fields(clean)
	unique := make(map[string]bool, len(words))
	for _, w := range words {
		unique[w] = true
	}
	return len(unique) >= 5 && len(words) >= 8
}

func (v *Validator) isNovel(candidate string, used []string) bool {
	if len(used) == 0 {
		return true
	}
	recent := used
	if len(recent) > v.opts.NoveltyWindow {
		recent = recent[len(recent)-v.opts.NoveltyWindow:]
	}
	normalized := Normalize(candidate)
	for _, prior := range recent {
		if Similarity(normalized, Normalize(prior)) > v.opts.MaxSimilarity {
			return false
		}
	}
	return true
}

func (v *Validator) isRelevant(candidate string) bool {
	lower := strings.ToLower(candidate)
	for _, key := range v.topicKeys {
		if strings.Contains(lower, key) {
			return true
		}
	}
	for _, re := range reasoningRegexes {
		if re.MatchString(lower) {
			return true
		}
	}
	return false
}

// Normalize lowercases text, strips punctuation and collapses whitespace
// for similarity comparison
func Normalize(text string) string {
	text = strings.ToLower(text)
	text = nonWordRegex.ReplaceAllString(text, "")
	return strings.Join(strings.Fields(text), " ")
}

// Similarity scores word-level overlap between two normalized texts as
// 2*LCS / (len(a)+len(b)), in [0, 1]. Near-duplicate paraphrases score high;
// distinct arguments on the same topic stay below typical thresholds.
func Similarity(a, b string) float64 {
	aw := strings.Fields(a)
	bw := strings.Fields(b)
	if len(aw) == 0 && len(bw) == 0 {
		return 1
	}
	if len(aw) == 0 || len(bw) == 0 {
		return 0
	}

	// Word-level longest common subsequence, single-row DP
	prev := make([]int, len(bw)+1)
	cur := make([]int, len(bw)+1)
	for i := 1; i <= len(aw); i++ {
		for j := 1; j <= len(bw); j++ {
			if aw[i-1] == bw[j-1] {
				cur[j] = prev[j-1] + 1
			} else if prev[j] >= cur[j-1] {
				cur[j] = prev[j]
			} else {
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	lcs := prev[len(bw)]
	return 2 * float64(lcs) / float64(len(aw)+len(bw))
}

// stopwords excluded from topic keyword extraction
var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "is": true, "are": true,
	"was": true, "were": true, "be": true, "been": true, "being": true,
	"have": true, "has": true, "had": true, "do": true, "does": true,
	"did": true, "will": true, "would": true, "could": true, "should": true,
	"may": true, "might": true, "must": true, "can": true,
	"to": true, "of": true, "in": true, "for": true, "on": true,
	"with": true, "at": true, "by": true, "from": true, "about": true,
	"into": true, "through": true, "during": true, "before": true, "after": true,
	"and": true, "or": true, "but": true, "if": true, "then": true,
	"this": true, "that": true, "these": true, "those": true,
	"what": true, "which": true, "who": true, "how": true, "why": true, "when": true,
	"it": true, "its": true,
}

// ExtractKeywords pulls the significant terms out of a topic string
func ExtractKeywords(topic string) []string {
	words := wordRegex.FindAllString(strings.ToLower(topic), -1)
	var keywords []string
	seen := make(map[string]bool)
	for _, word := range words {
		if len(word) > 2 && !stopwords[word] && !seen[word] {
			keywords = append(keywords, word)
			seen[word] = true
		}
	}
	return keywords
}
