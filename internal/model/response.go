package model

import "time"

// TeamResponse tracks attempts on one grid cell
type TeamResponse struct {
	ID           string       `bson:"_id" json:"id"`
	Team         string       `bson:"team" json:"team"`
	Section      int          `bson:"section" json:"section"`
	Cell         int          `bson:"cell" json:"cell"`
	QuestionType QuestionType `bson:"questionType,omitempty" json:"questionType,omitempty"`
	AnswerGiven  string       `bson:"answerGiven" json:"answerGiven"`
	IsCorrect    bool         `bson:"isCorrect" json:"isCorrect"`
	Attempts     int          `bson:"attempts" json:"attempts"`
	AnsweredAt   time.Time    `bson:"answeredAt" json:"answeredAt"`
}

// TeamSectionResponse tracks attempts on a section meta-question
type TeamSectionResponse struct {
	ID          string    `bson:"_id" json:"id"`
	Team        string    `bson:"team" json:"team"`
	Section     int       `bson:"section" json:"section"`
	Idx         int       `bson:"idx" json:"idx"`
	AnswerGiven string    `bson:"answerGiven" json:"answerGiven"`
	IsCorrect   bool      `bson:"isCorrect" json:"isCorrect"`
	Attempts    int       `bson:"attempts" json:"attempts"`
	AnsweredAt  time.Time `bson:"answeredAt" json:"answeredAt"`
}
