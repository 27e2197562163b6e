package pipeline_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/kballard/go-shellquote"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/backmassage/chaptersplit/internal/config"
	"github.com/backmassage/chaptersplit/internal/failure"
	"github.com/backmassage/chaptersplit/internal/logging"
	"github.com/backmassage/chaptersplit/internal/naming"
	"github.com/backmassage/chaptersplit/internal/pipeline"
	"github.com/backmassage/chaptersplit/internal/planner"
	"github.com/backmassage/chaptersplit/internal/probe"
	"github.com/backmassage/chaptersplit/internal/summary"
)

// fakeToolchain returns canned metadata and records requested extractions.
// When write is set, Extract creates the destination like ffmpeg would.
type fakeToolchain struct {
	meta        *probe.Metadata
	probeErr    error
	unavailable error
	fail        map[int]error
	write       bool

	mu     sync.Mutex
	probed []string
	jobs   []planner.Job
}

func (f *fakeToolchain) Probe(_ context.Context, path string) (*probe.Metadata, error) {
	f.probed = append(f.probed, path)
	return f.meta, f.probeErr
}

func (f *fakeToolchain) Available() error { return f.unavailable }

func (f *fakeToolchain) Extract(_ context.Context, job planner.Job) error {
	f.mu.Lock()
	f.jobs = append(f.jobs, job)
	f.mu.Unlock()
	if err := f.fail[job.ChapterIndex]; err != nil {
		return err
	}
	if f.write {
		return os.WriteFile(job.DestinationPath, []byte("audio"), 0o644)
	}
	return nil
}

func (f *fakeToolchain) Command(job planner.Job) []string {
	return []string{"ffmpeg", "-i", job.SourcePath, "-ss", fmt.Sprint(job.Start), job.DestinationPath}
}

func metadata(titles ...string) *probe.Metadata {
	m := &probe.Metadata{}
	for i, t := range titles {
		raw := probe.RawChapter{
			ID:        int64(i),
			TimeBase:  "1/1000",
			StartTime: strconv.Itoa(i*20) + ".000000",
			EndTime:   strconv.Itoa((i+1)*20) + ".000000",
		}
		if t != "" {
			raw.Tags = map[string]string{"title": t}
		}
		m.Chapters = append(m.Chapters, raw)
	}
	return m
}

var _ = Describe("Run", func() {
	var (
		dir    string
		cfg    config.Config
		tc     *fakeToolchain
		log    *logging.Logger
		out    *bytes.Buffer
		outDir string
	)

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "pipeline-test-")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)
		input := filepath.Join(dir, "beep.m4b")
		Expect(os.WriteFile(input, []byte("not really audio"), 0o644)).To(Succeed())
		outDir = filepath.Join(dir, "chapters")

		cfg = config.DefaultConfig()
		cfg.InputFile = input
		cfg.OutputDir = outDir
		cfg.Concurrency = 3

		tc = &fakeToolchain{fail: map[int]error{}, write: true}
		log = logging.NewWriterLogger(GinkgoWriter, true)
		out = &bytes.Buffer{}
	})

	run := func() (summary.Summary, error) {
		return pipeline.Run(context.Background(), &cfg, log, tc, out)
	}

	ExpectNoFilesWritten := func() {
		_, err := os.Stat(outDir)
		Expect(os.IsNotExist(err)).To(BeTrue(), "output directory should not exist")
	}

	Context("with four chapters, the last untitled", func() {
		BeforeEach(func() {
			tc.meta = metadata("Chapter Zero", "Chapter One", "Chapter Two", "")
		})

		It("writes one file per chapter, named and tagged in order", func() {
			sum, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Status).To(Equal(summary.AllSucceeded))
			Expect(sum.Results).To(HaveLen(4))

			want := []string{"1 - Chapter Zero.m4b", "2 - Chapter One.m4b", "3 - Chapter Two.m4b", "4 - beep.m4b"}
			for i, r := range sum.Results {
				Expect(r.Job.ChapterIndex).To(Equal(i))
				Expect(filepath.Base(r.Job.DestinationPath)).To(Equal(want[i]))
				Expect(r.Job.Tags[0]).To(Equal(naming.Tag{Key: "track", Value: fmt.Sprintf("%d/4", i+1)}))
				Expect(r.Job.DestinationPath).To(BeAnExistingFile())
			}
			Expect(tc.jobs).To(HaveLen(4))
		})
	})

	Context("with two chapters titled Intro", func() {
		BeforeEach(func() {
			tc.meta = metadata("Intro", "Intro")
		})

		It("suffixes the second destination instead of overwriting", func() {
			sum, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(filepath.Base(sum.Results[0].Job.DestinationPath)).To(Equal("1 - Intro.m4b"))
			Expect(filepath.Base(sum.Results[1].Job.DestinationPath)).To(Equal("2 - Intro-2.m4b"))
		})
	})

	Context("with an empty chapter list", func() {
		BeforeEach(func() {
			tc.meta = &probe.Metadata{}
		})

		It("fails with a metadata error and creates nothing", func() {
			_, err := run()
			Expect(errors.Is(err, failure.ErrMetadata)).To(BeTrue())
			Expect(tc.jobs).To(BeEmpty())
			ExpectNoFilesWritten()
		})
	})

	Context("when probing fails without a classification", func() {
		BeforeEach(func() {
			tc.probeErr = errors.New("exit status 1")
		})

		It("reports a metadata error", func() {
			_, err := run()
			Expect(failure.KindOf(err)).To(Equal(failure.KindMetadata))
			Expect(tc.jobs).To(BeEmpty())
		})
	})

	Context("when the probing tool is missing", func() {
		BeforeEach(func() {
			tc.probeErr = failure.Environmentf("ffprobe not found")
		})

		It("keeps the environment classification", func() {
			_, err := run()
			Expect(failure.KindOf(err)).To(Equal(failure.KindEnvironment))
		})
	})

	Context("when the input file is missing", func() {
		BeforeEach(func() {
			cfg.InputFile = filepath.Join(dir, "missing.m4b")
		})

		It("fails before probing", func() {
			_, err := run()
			Expect(errors.Is(err, failure.ErrMetadata)).To(BeTrue())
			Expect(tc.probed).To(BeEmpty())
		})
	})

	Context("when a destination already exists", func() {
		BeforeEach(func() {
			tc.meta = metadata("One", "Two")
			Expect(os.MkdirAll(outDir, 0o755)).To(Succeed())
			Expect(os.WriteFile(filepath.Join(outDir, "2 - Two.m4b"), []byte("old"), 0o644)).To(Succeed())
		})

		It("fails with a plan error and dispatches nothing", func() {
			_, err := run()
			Expect(errors.Is(err, failure.ErrPlan)).To(BeTrue())
			Expect(tc.jobs).To(BeEmpty())
			Expect(filepath.Join(outDir, "1 - One.m4b")).NotTo(BeAnExistingFile())
		})
	})

	Context("when the output directory is the input file", func() {
		BeforeEach(func() {
			tc.meta = metadata("One")
			cfg.OutputDir = cfg.InputFile
		})

		It("fails with a plan error", func() {
			_, err := run()
			Expect(errors.Is(err, failure.ErrPlan)).To(BeTrue())
		})
	})

	Context("when ffmpeg is unavailable", func() {
		BeforeEach(func() {
			tc.meta = metadata("One", "Two")
			tc.unavailable = failure.Environmentf("ffmpeg not found")
		})

		It("fails with an environment error before any extraction", func() {
			_, err := run()
			Expect(errors.Is(err, failure.ErrEnvironment)).To(BeTrue())
			Expect(tc.jobs).To(BeEmpty())
		})
	})

	Context("when one extraction fails", func() {
		BeforeEach(func() {
			tc.meta = metadata("A", "B", "C")
			tc.fail[1] = failure.Extractionf("ffmpeg exited with status 1")
			cfg.ReportFile = filepath.Join(dir, "report.json")
		})

		It("reports a partial failure and keeps the other files", func() {
			sum, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Status).To(Equal(summary.PartialFailure))
			Expect(sum.Failures()).To(HaveLen(1))
			Expect(sum.Failures()[0].Job.ChapterIndex).To(Equal(1))
			Expect(sum.Results[0].Job.DestinationPath).To(BeAnExistingFile())
			Expect(sum.Results[2].Job.DestinationPath).To(BeAnExistingFile())

			data, err := os.ReadFile(cfg.ReportFile)
			Expect(err).NotTo(HaveOccurred())
			var rep map[string]interface{}
			Expect(json.Unmarshal(data, &rep)).To(Succeed())
			Expect(rep["status"]).To(Equal("PartialFailure"))
			Expect(rep["run_id"]).NotTo(BeEmpty())
		})
	})

	Context("with every extraction failing", func() {
		BeforeEach(func() {
			tc.meta = metadata("A", "B")
			tc.fail[0] = errors.New("boom")
			tc.fail[1] = errors.New("boom")
		})

		It("reports AllFailed", func() {
			sum, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Status).To(Equal(summary.AllFailed))
			Expect(sum.OK()).To(BeFalse())
		})
	})

	Context("in dry-run mode", func() {
		BeforeEach(func() {
			tc.meta = metadata("Part 1: Begin", "")
			cfg.DryRun = true
		})

		It("prints a runnable script and touches nothing", func() {
			sum, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.OK()).To(BeTrue())
			Expect(tc.jobs).To(BeEmpty())
			ExpectNoFilesWritten()

			lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
			Expect(lines).To(HaveLen(4))
			Expect(string(lines[0])).To(Equal("# dry-run"))
			Expect(string(lines[1])).To(Equal(shellquote.Join("mkdir", "-p", outDir)))
			Expect(string(lines[2])).To(ContainSubstring("'" + filepath.Join(outDir, "1 - Part 1 Begin.m4b") + "'"))
			Expect(string(lines[3])).To(ContainSubstring("2 - beep.m4b"))
		})
	})

	Context("in dump mode", func() {
		BeforeEach(func() {
			tc.meta = metadata("It All Started With a Simple BEEP", "All You Can BEEP Buffee", "The Final Beep")
			cfg.DumpOnly = true
		})

		It("prints the chapter table and plans nothing", func() {
			_, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(out.String()).To(ContainSubstring("All You Can BEEP Buffee"))
			Expect(out.String()).To(ContainSubstring("0:00:40.000"))
			Expect(tc.jobs).To(BeEmpty())
			ExpectNoFilesWritten()
		})
	})

	DescribeTable("pads indices to the minimal width",
		func(n int, first, last string) {
			titles := make([]string, n)
			tc.meta = metadata(titles...)
			cfg.Concurrency = 8

			sum, err := run()
			Expect(err).NotTo(HaveOccurred())
			Expect(sum.Results).To(HaveLen(n))
			Expect(filepath.Base(sum.Results[0].Job.DestinationPath)).To(Equal(first))
			Expect(filepath.Base(sum.Results[n-1].Job.DestinationPath)).To(Equal(last))
		},
		Entry("1 chapter", 1, "1 - beep.m4b", "1 - beep.m4b"),
		Entry("9 chapters", 9, "1 - beep.m4b", "9 - beep.m4b"),
		Entry("10 chapters", 10, "01 - beep.m4b", "10 - beep.m4b"),
		Entry("99 chapters", 99, "01 - beep.m4b", "99 - beep.m4b"),
		Entry("100 chapters", 100, "001 - beep.m4b", "100 - beep.m4b"),
	)
})
