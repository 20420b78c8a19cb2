package model

// SectionGridAssignment binds one cell of a team's section grid to a pooled question
type SectionGridAssignment struct {
	ID       string `bson:"_id" json:"id"`
	Team     string `bson:"team" json:"team"`
	Section  int    `bson:"section" json:"section"`
	Cell     int    `bson:"cell" json:"cell"`
	Question string `bson:"question" json:"question"`
}
