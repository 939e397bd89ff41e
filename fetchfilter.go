// Package fetchfilter downloads the files linked from a single index page.
// It scrapes the page for hyperlinks, keeps those matching an extension set
// and a name substring, streams each match to a local directory and can
// verify every file against a persisted checksum store.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, http/, sqlite/).
package fetchfilter
