package browser

import "context"

// Page is one tab of the remote browser.
type Page interface {
	// Navigate marks the current document and starts loading url without
	// waiting for it; pair it with DocumentReplaced.
	Navigate(ctx context.Context, url string) error
	// MarkDocument tags the current document so a later DocumentReplaced
	// check can tell when a click-triggered navigation has landed.
	MarkDocument(ctx context.Context) error
	// DocumentReplaced reports whether the marked document has been replaced
	// by a fully loaded one.
	DocumentReplaced(ctx context.Context) (bool, error)
	Exists(ctx context.Context, selector string) (bool, error)
	Click(ctx context.Context, selector string) error
	Type(ctx context.Context, selector, value string) error
	AttachFiles(ctx context.Context, selector string, paths []string) error
	SelectOption(ctx context.Context, selector, value string) error
	Location(ctx context.Context) (string, error)
	// Screenshot returns a full-page PNG.
	Screenshot(ctx context.Context) ([]byte, error)
}

// Session is a Page plus the browser process behind it.
type Session interface {
	Page
	Close() error
}

// Launcher opens sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}
