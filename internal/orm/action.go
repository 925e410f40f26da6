package orm

import "gorm.io/gorm"

// Action is one handled moderator command.
type Action struct {
	gorm.Model
	Community    string `gorm:"index"`
	Moderator    string
	Verb         string
	TargetAuthor string
	TargetID     string `gorm:"index"`
	Permalink    string
	Annotation   string
	Restriction  string
	Outcome      string
	Error        string
}
