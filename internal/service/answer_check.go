package service

import (
	"regexp"
	"strings"

	"electromatrix/internal/model"
)

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	separatorRun  = regexp.MustCompile(`[,;|]+`)
)

// NormalizeAnswer lower-cases, collapses whitespace, folds , ; | runs into a
// single comma and trims.
func NormalizeAnswer(s string) string {
	s = strings.ToLower(s)
	s = whitespaceRun.ReplaceAllString(s, " ")
	s = separatorRun.ReplaceAllString(s, ",")
	return strings.TrimSpace(s)
}

// CompareAnswer grades a free-text answer. When the normalised correct answer
// has several comma separated parts, the submission must contain exactly the
// same parts in any order.
func CompareAnswer(submitted, correct string) bool {
	u := NormalizeAnswer(submitted)
	c := NormalizeAnswer(correct)

	if !strings.Contains(c, ",") {
		return u == c
	}

	userParts := splitParts(u)
	correctParts := splitParts(c)
	if len(userParts) != len(correctParts) {
		return false
	}

	have := make(map[string]struct{}, len(userParts))
	for _, p := range userParts {
		have[p] = struct{}{}
	}
	for _, p := range correctParts {
		if _, ok := have[p]; !ok {
			return false
		}
	}
	return true
}

func splitParts(s string) []string {
	var parts []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

// normalizeKey is the MCQ normalisation: trim and lower-case only
func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckGridAnswer grades a submission against a grid question. MCQ answers
// may name the option key or its label.
func CheckGridAnswer(q *model.GridQuestion, submitted string) bool {
	if q.Type != model.QuestionTypeMCQ {
		return CompareAnswer(submitted, q.CorrectAnswer)
	}

	want := normalizeKey(submitted)
	for _, o := range q.Options {
		if normalizeKey(o.Key) == want || normalizeKey(o.Label) == want {
			return normalizeKey(o.Key) == normalizeKey(q.CorrectAnswer)
		}
	}
	return false
}
