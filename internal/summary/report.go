package summary

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/backmassage/chaptersplit/internal/display"
	"github.com/backmassage/chaptersplit/internal/failure"
)

// Logger is the subset of logging.Logger used for reporting.
type Logger interface {
	Info(format string, args ...interface{})
	Success(format string, args ...interface{})
	Warn(format string, args ...interface{})
	Error(format string, args ...interface{})
}

// Report logs one line per failed chapter with its reason, then totals.
// Files produced by successful jobs are left in place on failure.
func (s Summary) Report(log Logger) {
	for _, r := range s.Failures() {
		log.Error("  %s (%s): %v", r.Job, filepath.Base(r.Job.DestinationPath), r.Err)
	}

	log.Info("==============================")
	total := len(s.Results)
	switch s.Status {
	case AllSucceeded:
		log.Success("Done: %d/%d chapters written (%s)", total, total, display.FormatBytes(s.OutputBytes()))
	case PartialFailure:
		log.Warn("Done with failures: %d/%d chapters written, %d failed", s.Succeeded(), total, s.Failed())
	case AllFailed:
		log.Error("Failed: none of %d chapters written", total)
	}
}

// OutputBytes sums the sizes of destinations written by successful jobs.
// Missing files count as zero.
func (s Summary) OutputBytes() int64 {
	var n int64
	for _, r := range s.Results {
		if !r.Succeeded() {
			continue
		}
		if fi, err := os.Stat(r.Job.DestinationPath); err == nil {
			n += fi.Size()
		}
	}
	return n
}

// RunInfo identifies a run in the JSON report.
type RunInfo struct {
	RunID     string
	InputPath string
	OutputDir string
	Started   time.Time
	Elapsed   time.Duration
}

type jsonReport struct {
	RunID     string        `json:"run_id"`
	Input     string        `json:"input"`
	OutputDir string        `json:"output_dir"`
	Started   time.Time     `json:"started"`
	ElapsedMS int64         `json:"elapsed_ms"`
	Status    Status        `json:"status"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Chapters  []jsonChapter `json:"chapters"`
}

type jsonChapter struct {
	Track       int     `json:"track"`
	Title       string  `json:"title,omitempty"`
	Start       float64 `json:"start"`
	End         float64 `json:"end"`
	Destination string  `json:"destination"`
	OK          bool    `json:"ok"`
	ElapsedMS   int64   `json:"elapsed_ms"`
	Kind        string  `json:"kind,omitempty"`
	Error       string  `json:"error,omitempty"`
}

// WriteJSON writes the run report to path, replacing any previous report
// only once the new one is fully written.
func (s Summary) WriteJSON(path string, info RunInfo) error {
	rep := jsonReport{
		RunID:     info.RunID,
		Input:     info.InputPath,
		OutputDir: info.OutputDir,
		Started:   info.Started,
		ElapsedMS: info.Elapsed.Milliseconds(),
		Status:    s.Status,
		Succeeded: s.Succeeded(),
		Failed:    s.Failed(),
		Chapters:  make([]jsonChapter, 0, len(s.Results)),
	}
	for _, r := range s.Results {
		c := jsonChapter{
			Track:       r.Job.Number(),
			Title:       r.Job.Title,
			Start:       r.Job.Start,
			End:         r.Job.End,
			Destination: r.Job.DestinationPath,
			OK:          r.Succeeded(),
			ElapsedMS:   r.Elapsed.Milliseconds(),
		}
		if r.Err != nil {
			c.Kind = string(failure.KindOf(r.Err))
			c.Error = r.Err.Error()
		}
		rep.Chapters = append(rep.Chapters, c)
	}

	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode report")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create report directory for %s", path)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "write report %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrapf(err, "write report %s", path)
	}
	return nil
}
