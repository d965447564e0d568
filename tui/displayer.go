package tui

import (
	"fmt"
	"io"
	"time"

	tea "charm.land/bubbletea/v2"
)

// Displayer abstracts all output from the session flow.
type Displayer interface {
	Banner()
	TokensFound()
	TokenValid()
	TokenExpired()
	TokensNotFound()
	Refreshing()
	RefreshOK()
	RefreshFailed(err error)
	SessionExpired()
	LoggingIn(email string)
	LoginOK()
	TokenSaved(path string)
	TokenSaveFailed(err error)
	FetchingProfile()
	ProfileOK(summary string)
	ProfileFailed(err error)
	Done(preview, persistence string, expiresIn time.Duration)
	Fatal(err error)
}

// PlainDisplayer writes plain text output to w.
// Used when stderr is not a TTY (pipes, CI, SSH without pty).
type PlainDisplayer struct {
	w io.Writer
}

// NewPlainDisplayer creates a PlainDisplayer that writes to w.
func NewPlainDisplayer(w io.Writer) *PlainDisplayer {
	return &PlainDisplayer{w: w}
}

func (p *PlainDisplayer) Banner() {
	fmt.Fprintln(p.w, "=== SkillSwap Session CLI ===")
	fmt.Fprintln(p.w)
}

func (p *PlainDisplayer) TokensFound() {
	fmt.Fprintln(p.w, "Found stored tokens!")
}

func (p *PlainDisplayer) TokenValid() {
	fmt.Fprintln(p.w, "Access token is still valid, using it...")
}

func (p *PlainDisplayer) TokenExpired() {
	fmt.Fprintln(p.w, "Access token expired, refreshing...")
}

func (p *PlainDisplayer) TokensNotFound() {
	fmt.Fprintln(p.w, "No stored tokens found, logging in...")
}

func (p *PlainDisplayer) Refreshing() {
	fmt.Fprintln(p.w, "Refreshing access token...")
}

func (p *PlainDisplayer) RefreshOK() {
	fmt.Fprintln(p.w, "Token refreshed successfully!")
}

func (p *PlainDisplayer) RefreshFailed(err error) {
	fmt.Fprintf(p.w, "Refresh failed: %v\n", err)
}

func (p *PlainDisplayer) SessionExpired() {
	fmt.Fprintln(p.w, "Session expired, a fresh login is required...")
}

func (p *PlainDisplayer) LoggingIn(email string) {
	fmt.Fprintf(p.w, "Logging in as %s...\n", email)
}

func (p *PlainDisplayer) LoginOK() {
	fmt.Fprintln(p.w, "Login successful!")
}

func (p *PlainDisplayer) TokenSaved(path string) {
	fmt.Fprintf(p.w, "Tokens saved to %s\n", path)
}

func (p *PlainDisplayer) TokenSaveFailed(err error) {
	fmt.Fprintf(p.w, "Warning: Failed to save tokens: %v\n", err)
}

func (p *PlainDisplayer) FetchingProfile() {
	fmt.Fprintln(p.w, "\nFetching profile...")
}

func (p *PlainDisplayer) ProfileOK(summary string) {
	if summary != "" {
		fmt.Fprintf(p.w, "Profile: %s\n", summary)
	}
	fmt.Fprintln(p.w, "Profile fetched successfully!")
}

func (p *PlainDisplayer) ProfileFailed(err error) {
	fmt.Fprintf(p.w, "Profile request failed: %v\n", err)
}

func (p *PlainDisplayer) Done(preview, persistence string, expiresIn time.Duration) {
	fmt.Fprintln(p.w, "\n========================================")
	fmt.Fprintln(p.w, "Current Session Info:")
	fmt.Fprintf(p.w, "Access Token: %s...\n", preview)
	fmt.Fprintf(p.w, "Persistence:  %s\n", persistence)
	fmt.Fprintf(p.w, "Expires In:   %s\n", expiresIn.Round(time.Second))
	fmt.Fprintln(p.w, "========================================")
}

func (p *PlainDisplayer) Fatal(err error) {
	fmt.Fprintf(p.w, "Error: %v\n", err)
}

// NoopDisplayer is a no-op implementation used in tests.
type NoopDisplayer struct{}

func (NoopDisplayer) Banner()                           {}
func (NoopDisplayer) TokensFound()                      {}
func (NoopDisplayer) TokenValid()                       {}
func (NoopDisplayer) TokenExpired()                     {}
func (NoopDisplayer) TokensNotFound()                   {}
func (NoopDisplayer) Refreshing()                       {}
func (NoopDisplayer) RefreshOK()                        {}
func (NoopDisplayer) RefreshFailed(_ error)             {}
func (NoopDisplayer) SessionExpired()                   {}
func (NoopDisplayer) LoggingIn(_ string)                {}
func (NoopDisplayer) LoginOK()                          {}
func (NoopDisplayer) TokenSaved(_ string)               {}
func (NoopDisplayer) TokenSaveFailed(_ error)           {}
func (NoopDisplayer) FetchingProfile()                  {}
func (NoopDisplayer) ProfileOK(_ string)                {}
func (NoopDisplayer) ProfileFailed(_ error)             {}
func (NoopDisplayer) Done(_, _ string, _ time.Duration) {}
func (NoopDisplayer) Fatal(_ error)                     {}

// ProgramDisplayer sends BubbleTea messages to a running tea.Program.
type ProgramDisplayer struct {
	p *tea.Program
}

// NewProgramDisplayer creates a ProgramDisplayer that sends messages to p.
func NewProgramDisplayer(p *tea.Program) *ProgramDisplayer {
	return &ProgramDisplayer{p: p}
}

func (t *ProgramDisplayer) Banner() {
	t.p.Send(MsgBanner{})
}

func (t *ProgramDisplayer) TokensFound() {
	t.p.Send(MsgTokensFound{})
}

func (t *ProgramDisplayer) TokenValid() {
	t.p.Send(MsgTokenValid{})
}

func (t *ProgramDisplayer) TokenExpired() {
	t.p.Send(MsgTokenExpired{})
}

func (t *ProgramDisplayer) TokensNotFound() {
	t.p.Send(MsgTokensNotFound{})
}

func (t *ProgramDisplayer) Refreshing() {
	t.p.Send(MsgRefreshing{})
}

func (t *ProgramDisplayer) RefreshOK() {
	t.p.Send(MsgRefreshOK{})
}

func (t *ProgramDisplayer) RefreshFailed(err error) {
	t.p.Send(MsgRefreshFailed{Err: err})
}

func (t *ProgramDisplayer) SessionExpired() {
	t.p.Send(MsgSessionExpired{})
}

func (t *ProgramDisplayer) LoggingIn(email string) {
	t.p.Send(MsgLoggingIn{Email: email})
}

func (t *ProgramDisplayer) LoginOK() {
	t.p.Send(MsgLoginOK{})
}

func (t *ProgramDisplayer) TokenSaved(path string) {
	t.p.Send(MsgTokenSaved{Path: path})
}

func (t *ProgramDisplayer) TokenSaveFailed(err error) {
	t.p.Send(MsgTokenSaveFailed{Err: err})
}

func (t *ProgramDisplayer) FetchingProfile() {
	t.p.Send(MsgFetchingProfile{})
}

func (t *ProgramDisplayer) ProfileOK(summary string) {
	t.p.Send(MsgProfileOK{Summary: summary})
}

func (t *ProgramDisplayer) ProfileFailed(err error) {
	t.p.Send(MsgProfileFailed{Err: err})
}

func (t *ProgramDisplayer) Done(preview, persistence string, expiresIn time.Duration) {
	t.p.Send(MsgDone{Preview: preview, Persistence: persistence, ExpiresIn: expiresIn})
}

func (t *ProgramDisplayer) Fatal(err error) {
	t.p.Send(MsgFatal{Err: err})
}
