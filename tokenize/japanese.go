package tokenize

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// charClass is the coarse category the boundary scorer works with.
type charClass uint8

const (
	classOther charClass = iota
	classSpace
	classOpen  // opening bracket or quote
	classClose // closing bracket or quote
	classStop  // full stop, comma and sentence enders
	classPunct // any other punctuation or symbol
	classHan
	classHiragana
	classKatakana
	classLatin // ASCII letters, digits and the English connector runes
	classCount
)

const (
	openBrackets  = "「『（(［[｛{〈《【〔“‘"
	closeBrackets = "」』）)］]｝}〉》】〕”’"
	stopMarks     = "。、，,．.！!？?：；;"
)

func classify(r rune) charClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case strings.ContainsRune(openBrackets, r):
		return classOpen
	case strings.ContainsRune(closeBrackets, r):
		return classClose
	case strings.ContainsRune(stopMarks, r):
		return classStop
	case r < utf8.RuneSelf && isEnglishTokenRune(r):
		return classLatin
	case r == 'ー':
		// prolonged sound mark
		return classKatakana
	case r == '々':
		return classHan
	case unicode.IsPunct(r) || unicode.IsSymbol(r):
		return classPunct
	case unicode.Is(unicode.Han, r):
		return classHan
	case unicode.Is(unicode.Hiragana, r):
		return classHiragana
	case unicode.Is(unicode.Katakana, r):
		return classKatakana
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		// Full-width Latin and other scripts group with ASCII words.
		return classLatin
	}
	return classOther
}

// boundaryRule scores the gap between a rune of class prev and one of class
// cur. A positive total score splits the text at that gap.
type boundaryRule struct {
	prev, cur []charClass
	score     int
}

var anyClass = []charClass{
	classOther, classSpace, classOpen, classClose, classStop, classPunct,
	classHan, classHiragana, classKatakana, classLatin,
}

var separators = []charClass{classSpace, classOpen, classClose, classStop, classPunct}

var boundaryRules = []boundaryRule{
	// Punctuation ends and starts segments on both sides.
	{prev: separators, cur: anyClass, score: 100},
	{prev: anyClass, cur: separators, score: 100},

	// Script changes between Latin and Japanese.
	{prev: []charClass{classLatin}, cur: []charClass{classHan, classHiragana, classKatakana}, score: 50},
	{prev: []charClass{classHan, classHiragana, classKatakana}, cur: []charClass{classLatin}, score: 50},

	// Katakana runs are loan words and stand on their own.
	{prev: []charClass{classKatakana}, cur: []charClass{classHan, classHiragana}, score: 30},
	{prev: []charClass{classHan, classHiragana}, cur: []charClass{classKatakana}, score: 30},
}

// boundaryTable is boundaryRules folded into a lookup table.
var boundaryTable = func() (t [classCount][classCount]int) {
	for _, rule := range boundaryRules {
		for _, p := range rule.prev {
			for _, c := range rule.cur {
				t[p][c] += rule.score
			}
		}
	}
	return t
}()

// japaneseTokens segments text with the boundary scorer. Segments that are
// only punctuation or whitespace are dropped.
func japaneseTokens(text string) ([]string, error) {
	if !utf8.ValidString(text) {
		return nil, errInvalidText
	}

	var (
		tokens  []string
		current strings.Builder
		prev    = classSpace
		first   = true
	)
	flush := func() {
		if current.Len() > 0 {
			tokens = append(tokens, current.String())
			current.Reset()
		}
	}

	for _, r := range text {
		cls := classify(r)
		if !first && boundaryTable[prev][cls] > 0 {
			flush()
		}
		first = false
		prev = cls
		if isSeparator(cls) {
			continue
		}
		current.WriteRune(r)
	}
	flush()
	return tokens, nil
}

func isSeparator(cls charClass) bool {
	switch cls {
	case classSpace, classOpen, classClose, classStop, classPunct:
		return true
	}
	return false
}
