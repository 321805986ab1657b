package templates

import "time"

//go:generate templ generate

// TimeoutNotice is the data shown in the session timeout email.
type TimeoutNotice struct {
	Name      string // greeting name, may be empty
	SignedOut time.Time
	AppName   string
	LoginURL  string // optional sign-in link, unsafe schemes are replaced by templ
}

// Subject returns the subject line used with SessionTimeout.
func Subject(appName string) string {
	return subjectFor(appName)
}

func subjectFor(appName string) string {
	if appName == "" {
		return "You have been signed out"
	}
	return "You have been signed out of " + appName
}

func signedOutAt(t time.Time) string {
	return t.UTC().Format("January 2, 2006 at 15:04 MST")
}
