// Package harvest extracts normalized text and metadata from the URLs a user
// collects onto a content board: YouTube videos, articles, and social posts.
// Several independent strategies are tried per content class and their
// partial results are merged into a single ExtractionResult.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, trafilatura/, gemini/).
package harvest
