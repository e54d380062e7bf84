package models

import "errors"

var (
	// ErrConfiguration is fatal at startup: empty account pool, missing cookie directory.
	ErrConfiguration = errors.New("configuration error")
	// ErrAuthentication means sign-in could not be verified within the timeout.
	ErrAuthentication = errors.New("authentication failed")
	// ErrNotAuthenticated means extraction was attempted without a verified session.
	ErrNotAuthenticated = errors.New("you are not logged in")
	// ErrStructuralExtraction marks a page section whose markup did not have the expected shape.
	ErrStructuralExtraction = errors.New("unexpected page structure")
	// ErrTransientLoad means a page did not render its root content in time.
	ErrTransientLoad = errors.New("page did not finish loading")
	// ErrIncompleteRecord means there is no person record to assemble.
	ErrIncompleteRecord = errors.New("incomplete record")
)
