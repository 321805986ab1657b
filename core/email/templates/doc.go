// Package templates renders the HTML bodies of transactional emails.
//
// Components are written in .templ files and compiled with the templ CLI;
// the generated *_templ.go files are committed next to their sources.
// Regenerate after editing a template:
//
//	templ generate ./core/email/templates
//
// Links go through templ.URL, so unsafe schemes such as javascript: are
// replaced with a placeholder instead of being rendered.
//
//	html, err := templates.Render(ctx, templates.SessionTimeout(templates.TimeoutNotice{
//		Name:      "Alice",
//		SignedOut: time.Now(),
//		AppName:   "Acme",
//		LoginURL:  "https://acme.example/login",
//	}))
package templates
