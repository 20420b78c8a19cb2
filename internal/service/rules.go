package service

import (
	"fmt"

	"electromatrix/internal/model"
)

// Scoring and attempt rules
const (
	GridPointsCorrect    = 2
	GridPenaltyWrongMCQ  = 1
	SectionPointsCorrect = 5

	MaxAttemptsText = 5
	MaxAttemptsMCQ  = 4
	MaxAttemptsMeta = 5

	SectionCount  = 3
	CellsPerGrid  = 6
	MetaQuestions = 1 // one meta-question per section, always idx 0
)

// MaxAttempts returns the attempt ceiling for a grid question type.
// Unknown or unrecorded types get the text ceiling.
func MaxAttempts(t model.QuestionType) int {
	if t == model.QuestionTypeMCQ {
		return MaxAttemptsMCQ
	}
	return MaxAttemptsText
}

func attemptsLeft(ceiling, attempts int) int {
	if left := ceiling - attempts; left > 0 {
		return left
	}
	return 0
}

// cellResolved reports whether a response closes its cell
func cellResolved(r *model.TeamResponse) bool {
	if r == nil {
		return false
	}
	return r.IsCorrect || r.Attempts >= MaxAttempts(r.QuestionType)
}

// TileImageURL is the reveal image for a grid cell (cell 0..5 maps to 1..6)
func TileImageURL(section, cell int) string {
	return fmt.Sprintf("/images/section%d.%d.png", section, cell+1)
}

// DefaultCompositeImageURL is used when a section has no stored meta
func DefaultCompositeImageURL(section int) string {
	if section < 1 || section > SectionCount {
		section = 1
	}
	return fmt.Sprintf("/images/section%d.png", section)
}

func validSection(section int) bool {
	return section >= 1 && section <= SectionCount
}

func validCell(cell int) bool {
	return cell >= 0 && cell < CellsPerGrid
}
