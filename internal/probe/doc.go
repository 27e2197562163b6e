// Package probe reads chapter metadata with ffprobe and turns it into
// validated, ordered chapters.
//
// Types:
//   - Metadata, RawChapter: the unvalidated ffprobe listing (types.go)
//   - Chapter: one validated chapter with 0-based Index (types.go)
//
// Functions:
//   - (Prober).Probe(ctx, path) → *Metadata
//     Runs ffprobe -show_chapters -print_format json, optionally decoding
//     non-UTF-8 metadata (prober.go).
//   - ParseJSON(data) → *Metadata (prober.go)
//   - ParseChapters(*Metadata) → []Chapter
//     Rejects empty listings, malformed timestamps, empty chapters and
//     non-increasing start times (chapters.go).
package probe
