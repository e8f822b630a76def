package moderation

import (
	"fmt"
	"regexp"
	"strings"
)

// ModerationResult — вердикт сканера по тексту объявления. Не персистится.
type ModerationResult struct {
	IsViolation  bool     `json:"is_violation"`
	MatchedTerms []string `json:"matched_terms"`
	Reason       string   `json:"reason,omitempty"`
}

// Scanner проверяет текст объявления на запрещённый контент.
// Все выражения компилируются один раз при конструировании; Check не имеет
// состояния и безопасен для конкурентных вызовов.
type Scanner struct {
	keywords []keywordRule
	patterns []patternRule
}

type keywordRule struct {
	term     string
	category string
	re       *regexp.Regexp
}

type patternRule struct {
	label string
	re    *regexp.Regexp
}

// Таблица замен leet-speak для нормализующего прохода.
var leetTable = map[rune]rune{
	'0': 'o',
	'1': 'i',
	'3': 'e',
	'4': 'a',
	'5': 's',
	'7': 't',
	'8': 'b',
	'9': 'g',
	'@': 'a',
	'$': 's',
}

var separatorReplacer = strings.NewReplacer("_", "", "-", "", ".", "")

var whitespaceRe = regexp.MustCompile(`\s+`)

// NewScanner компилирует словарь и статический список паттернов.
func NewScanner(vocab Vocabulary) (*Scanner, error) {
	s := &Scanner{}

	for _, category := range vocab.Categories {
		for _, term := range category.Terms {
			re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
			if err != nil {
				return nil, fmt.Errorf("scanner: compile term %q: %w", term, err)
			}
			s.keywords = append(s.keywords, keywordRule{term: term, category: category.Name, re: re})
		}
	}

	rawPatterns := []struct {
		label string
		expr  string
	}{
		{"ssn-like number", `\b\d{3}-\d{2}-\d{4}\b`},
		{"credit-card-like number", `\b(?:\d{4}[ -]?){3}\d{4}\b`},
		{"drug sale offer", `(?i)\b(?:cocaine|heroin|meth|weed|marijuana|xanax|adderall|mdma|lsd|ketamine|shrooms)\s+(?:for|4)\s+sale\b`},
		{"drug slang with sale intent", `(?i)\b(?:molly|percs|xans|xanny|zaza|addy|shrooms)\b.{0,40}\b(?:for sale|selling|available|dm me|hmu)\b`},
		{"external marketplace link", `(?i)(?:craigslist\.org|offerup\.com|facebook\.com/marketplace|depop\.com|ebay\.com)`},
	}

	for _, p := range rawPatterns {
		re, err := regexp.Compile(p.expr)
		if err != nil {
			return nil, fmt.Errorf("scanner: compile pattern %q: %w", p.label, err)
		}
		s.patterns = append(s.patterns, patternRule{label: p.label, re: re})
	}

	return s, nil
}

// Check сканирует заголовок и описание объявления. Каждое правило
// проверяется и по сырому тексту, и по нормализованному: нормализация
// ловит обход через leet-speak и разделители, сырой проход страхует от
// ложных склеек после удаления разделителей.
func (s *Scanner) Check(title, description string) ModerationResult {
	raw := strings.ToLower(strings.TrimSpace(title + " " + description))
	normalized := normalize(raw)

	var matches []string
	seen := make(map[string]struct{})

	record := func(term string) {
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		matches = append(matches, term)
	}

	for _, kw := range s.keywords {
		if kw.re.MatchString(raw) || kw.re.MatchString(normalized) {
			record(kw.term)
		}
	}

	for _, p := range s.patterns {
		if p.re.MatchString(raw) || p.re.MatchString(normalized) {
			record(p.label)
		}
	}

	if len(matches) == 0 {
		return ModerationResult{IsViolation: false, MatchedTerms: []string{}}
	}

	return ModerationResult{
		IsViolation:  true,
		MatchedTerms: matches,
		Reason:       buildReason(matches),
	}
}

// normalize выполняет нормализующий проход: замены leet-speak, удаление
// разделителей и схлопывание пробелов.
func normalize(lowered string) string {
	var b strings.Builder
	b.Grow(len(lowered))
	for _, r := range lowered {
		if repl, ok := leetTable[r]; ok {
			b.WriteRune(repl)
			continue
		}
		b.WriteRune(r)
	}

	out := separatorReplacer.Replace(b.String())
	out = whitespaceRe.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func buildReason(matches []string) string {
	shown := matches
	if len(shown) > 3 {
		shown = shown[:3]
	}

	reason := "Content policy violation: Detected prohibited content - " + strings.Join(shown, ", ")
	if extra := len(matches) - len(shown); extra > 0 {
		reason += fmt.Sprintf(" and %d more", extra)
	}
	return reason
}
