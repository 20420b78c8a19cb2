package model

// CellView is one tile of the section overview
type CellView struct {
	Cell         int    `json:"cell"`
	Answered     bool   `json:"answered"`
	AttemptsLeft int    `json:"attemptsLeft"`
	ImageURL     string `json:"imageUrl"`
}

// SectionView is one section of the overview
type SectionView struct {
	ID                int        `json:"id"`
	Cells             []CellView `json:"cells"`
	CompositeImageURL string     `json:"compositeImageUrl"`
}

// SectionsOverview is returned by GET /api/quiz/sections
type SectionsOverview struct {
	Sections        []SectionView `json:"sections"`
	UnlockedSection int           `json:"unlockedSection"`
}

// CellQuestion is returned by GET /api/quiz/question
type CellQuestion struct {
	Section      int          `json:"section"`
	Cell         int          `json:"cell"`
	Prompt       string       `json:"prompt"`
	Type         QuestionType `json:"type"`
	Options      []Option     `json:"options"`
	ImageURL     string       `json:"imageUrl"`
	AttemptsLeft int          `json:"attemptsLeft"`
	Solved       bool         `json:"solved"`
}

// AnswerRequest is the body of POST /api/quiz/answer.
// Pointers distinguish a missing index from zero.
type AnswerRequest struct {
	Section *int   `json:"section"`
	Cell    *int   `json:"cell"`
	Answer  string `json:"answer"`
}

// AnswerResult is the outcome of a grid submission
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	AlreadySolved bool   `json:"alreadySolved,omitempty"`
	AttemptsLeft  int    `json:"attemptsLeft"`
	ImageURL      string `json:"imageUrl"`
}

// MetaQuestionView is a meta-question as shown to a team
type MetaQuestionView struct {
	Idx          int    `json:"idx"`
	Prompt       string `json:"prompt"`
	Solved       bool   `json:"solved"`
	AttemptsLeft int    `json:"attemptsLeft"`
}

// SectionQuestionsView is returned by GET /api/quiz/section-questions
type SectionQuestionsView struct {
	Locked            bool               `json:"locked"`
	Questions         []MetaQuestionView `json:"questions"`
	CompositeImageURL string             `json:"compositeImageUrl"`
	RemainingSeconds  *int64             `json:"remainingSeconds"`
	Expired           bool               `json:"expired"`
}

// SectionAnswerRequest is the body of POST /api/quiz/section-answer
type SectionAnswerRequest struct {
	Section *int   `json:"section"`
	Idx     *int   `json:"idx"`
	Answer  string `json:"answer"`
}

// SectionAnswerResult is the outcome of a meta-question submission
type SectionAnswerResult struct {
	Correct          bool   `json:"correct"`
	AlreadySolved    bool   `json:"alreadySolved,omitempty"`
	AttemptsLeft     int    `json:"attemptsLeft"`
	RemainingSeconds *int64 `json:"remainingSeconds"`
	Completed        bool   `json:"completed"`
}

// LeaderboardEntry is one ranked team
type LeaderboardEntry struct {
	Rank            int    `json:"rank"`
	Username        string `json:"username"`
	Points          int    `json:"points"`
	RunTotalTimeSec *int64 `json:"runTotalTimeSec,omitempty"`
}
