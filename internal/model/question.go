package model

// QuestionType defines how a grid answer is graded
type QuestionType string

const (
	QuestionTypeMCQ  QuestionType = "mcq"  // Graded by option key or label
	QuestionTypeText QuestionType = "text" // Graded by the free-text comparator
)

// Option is a single MCQ choice
type Option struct {
	Key   string `bson:"key" json:"key" yaml:"key"` // a..d
	Label string `bson:"label" json:"label" yaml:"label"`
}

// GridQuestion is pooled content assigned to grid cells
type GridQuestion struct {
	ID            string       `bson:"_id" json:"id"`
	Prompt        string       `bson:"prompt" json:"prompt" yaml:"prompt"`
	Type          QuestionType `bson:"type" json:"type" yaml:"type"`
	Options       []Option     `bson:"options,omitempty" json:"options,omitempty" yaml:"options,omitempty"`
	CorrectAnswer string       `bson:"correctAnswer" json:"-" yaml:"correctAnswer"`
	ImageURL      string       `bson:"imageUrl,omitempty" json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	Pool          string       `bson:"pool,omitempty" json:"pool,omitempty" yaml:"pool,omitempty"` // A, B, C or empty
}

// SectionQuestion is the meta-question that closes a section
type SectionQuestion struct {
	ID      string `bson:"_id" json:"id"`
	Section int    `bson:"section" json:"section" yaml:"section"`
	Idx     int    `bson:"idx" json:"idx" yaml:"idx"`
	Prompt  string `bson:"prompt" json:"prompt" yaml:"prompt"`
	Answer  string `bson:"answer" json:"-" yaml:"answer"`
}

// SectionMeta holds the composite image revealed by a section's grid
type SectionMeta struct {
	Section           int    `bson:"section" json:"section" yaml:"section"`
	CompositeImageURL string `bson:"compositeImageUrl" json:"compositeImageUrl" yaml:"compositeImageUrl"`
}

// PromptPool is a labelled group of prompts drawn from when building a grid.
// Take is how many questions the pool contributes to a fresh six-cell grid.
type PromptPool struct {
	Label   string   `yaml:"label"`
	Take    int      `yaml:"take"`
	Prompts []string `yaml:"prompts"`
}
