// Package ffmpeg builds and runs the per-chapter ffmpeg extraction and
// provides the concrete ffprobe/ffmpeg Toolchain used by the pipeline.
//
// Functions:
//   - Build(bin, Job, verbose) → []string: stream-copy argv (builder.go)
//   - Reason, Tail: stderr classification for failure reports (errors.go)
//   - (*Toolchain).Probe / Available / Command / Extract (executor.go)
package ffmpeg
