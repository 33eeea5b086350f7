package domain

// Page identifies one of the mutually exclusive screens of the application.
type Page string

const (
	PageLogin   Page = "login"
	PageSignup  Page = "signup"
	PageLanding Page = "landing"
	PageCreate  Page = "create"
	PageOutput  Page = "output"
)

// Valid reports whether p is one of the defined pages.
func (p Page) Valid() bool {
	switch p {
	case PageLogin, PageSignup, PageLanding, PageCreate, PageOutput:
		return true
	}
	return false
}

// Action identifies a user action posted against the current page.
// Each action maps to exactly one row of the navigation transition table.
type Action string

const (
	ActionLogin         Action = "login"
	ActionGotoSignup    Action = "goto_signup"
	ActionSignup        Action = "signup"
	ActionBackToLogin   Action = "back_to_login"
	ActionCreateStory   Action = "create_story"
	ActionLogout        Action = "logout"
	ActionGenerate      Action = "generate"
	ActionBack          Action = "back"
	ActionBackToLanding Action = "back_to_landing"
)
