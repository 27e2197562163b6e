// Package naming decides where each chapter is written and how it is tagged.
//
// Types:
//   - Policy: per-input allocator of destinations and tags (policy.go)
//   - CollisionResolver: case-insensitive "-N" suffixing of repeated title
//     labels and repeated paths (collision.go)
//
// Functions:
//   - Sanitize(s) strips characters unsafe in file names (sanitize.go)
//   - PadWidth(total), PadIndex, SplitInput, Label, FileName build the
//     "<padded> - <label><ext>" name (outputpath.go)
package naming
