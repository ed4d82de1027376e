// Package webcrawl provides a breadth-first web crawler that bounds total
// concurrent downloads, total concurrent link extractions, and concurrent
// downloads per host.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, http/).
package webcrawl
