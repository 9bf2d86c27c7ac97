package evidence

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/highlog/interviewer/internal/topics"
)

const (
	minParagraphRunes = 10
	maxParagraphRunes = 1000
	splitTargetRunes  = 500
)

// ChunkDraft is one classified chunk of record text.
type ChunkDraft struct {
	Index    int
	Category topics.Category
	Text     string
}

var paragraphBreak = regexp.MustCompile(`\n\s*\n`)

// categoryKeywords is checked in order; the first category with a keyword
// contained in the paragraph wins.
var categoryKeywords = []struct {
	category topics.Category
	keywords []string
}{
	{topics.CategoryAttendance, []string{"출결", "결석", "지각", "조퇴", "수업"}},
	{topics.CategoryGrades, []string{"성적", "과목", "이수", "단위", "원점수", "표준점수"}},
	{topics.CategorySubjectNotes, []string{"세부능력", "소개", "교과", "주제"}},
	{topics.CategoryAwards, []string{"수상", "경시대회", "올림피아드", "대회"}},
	{topics.CategoryReading, []string{"독서", "책", "저자", "출판사"}},
	{topics.CategoryActivities, []string{"진로", "활동", "동아리", "봉사", "체험"}},
}

// Chunk splits record text into blank-line separated paragraphs, drops
// fragments shorter than ten characters, classifies each paragraph by
// keyword, and splits paragraphs over 1000 characters into sentence groups
// of at most 500.
func Chunk(text string) []ChunkDraft {
	var out []ChunkDraft
	for _, para := range paragraphBreak.Split(strings.TrimSpace(text), -1) {
		para = strings.TrimSpace(para)
		if utf8.RuneCountInString(para) < minParagraphRunes {
			continue
		}
		cat := Classify(para)
		parts := []string{para}
		if utf8.RuneCountInString(para) > maxParagraphRunes {
			parts = splitLong(para, splitTargetRunes)
		}
		for _, p := range parts {
			out = append(out, ChunkDraft{Index: len(out), Category: cat, Text: p})
		}
	}
	return out
}

// Classify returns the evidence category of a paragraph.
func Classify(para string) topics.Category {
	for _, ck := range categoryKeywords {
		for _, kw := range ck.keywords {
			if strings.Contains(para, kw) {
				return ck.category
			}
		}
	}
	return topics.CategoryOther
}

// splitLong groups sentences greedily up to max runes. A single sentence
// longer than max becomes its own group.
func splitLong(text string, max int) []string {
	var (
		groups []string
		cur    strings.Builder
		curLen int
	)
	for _, s := range sentences(text) {
		n := utf8.RuneCountInString(s)
		if curLen > 0 && curLen+1+n > max {
			groups = append(groups, cur.String())
			cur.Reset()
			curLen = 0
		}
		if curLen > 0 {
			cur.WriteByte(' ')
			curLen++
		}
		cur.WriteString(s)
		curLen += n
	}
	if curLen > 0 {
		groups = append(groups, cur.String())
	}
	return groups
}

// sentences splits after '.', '!' or '?' followed by whitespace.
func sentences(text string) []string {
	var (
		out   []string
		start int
	)
	runes := []rune(text)
	for i := 0; i < len(runes)-1; i++ {
		switch runes[i] {
		case '.', '!', '?':
			if unicode.IsSpace(runes[i+1]) {
				if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
					out = append(out, s)
				}
				start = i + 1
			}
		}
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		out = append(out, s)
	}
	return out
}
