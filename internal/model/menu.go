package model

// Menu is a named tasting menu: an ordered list of dish names.  Menus are
// authored elsewhere and are read-only to the pacing core.
type Menu struct {
	ID      string   `json:"id" yaml:"id"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty"`
	Courses []string `json:"courses" yaml:"courses"`
}
