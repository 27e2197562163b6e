package dispatch_test

import (
	"context"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/backmassage/chaptersplit/internal/dispatch"
	"github.com/backmassage/chaptersplit/internal/failure"
	"github.com/backmassage/chaptersplit/internal/logging"
	"github.com/backmassage/chaptersplit/internal/planner"
)

// fakeExtractor records every Extract call without touching the filesystem.
type fakeExtractor struct {
	unavailable error
	fail        map[int]error
	delay       time.Duration
	onExtract   func(job planner.Job)
	waitForCtx  bool

	mu          sync.Mutex
	started     []int
	completed   []int
	inFlight    int
	maxInFlight int
}

func (f *fakeExtractor) Available() error { return f.unavailable }

func (f *fakeExtractor) Extract(ctx context.Context, job planner.Job) error {
	f.mu.Lock()
	f.started = append(f.started, job.ChapterIndex)
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	f.mu.Unlock()

	defer func() {
		f.mu.Lock()
		f.inFlight--
		f.completed = append(f.completed, job.ChapterIndex)
		f.mu.Unlock()
	}()

	if f.onExtract != nil {
		f.onExtract(job)
	}
	if f.waitForCtx {
		<-ctx.Done()
		return ctx.Err()
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	return f.fail[job.ChapterIndex]
}

func makeJobs(n int) []planner.Job {
	jobs := make([]planner.Job, n)
	for i := range jobs {
		jobs[i] = planner.Job{
			ChapterIndex:    i,
			TotalChapters:   n,
			Start:           float64(i),
			End:             float64(i + 1),
			SourcePath:      "book.m4b",
			DestinationPath: "out/" + string(rune('a'+i%26)) + ".m4b",
		}
	}
	return jobs
}

var _ = Describe("Dispatcher", func() {
	var (
		ex  *fakeExtractor
		log *logging.Logger
		ctx context.Context
	)

	BeforeEach(func() {
		ex = &fakeExtractor{fail: map[int]error{}}
		log = logging.NewWriterLogger(GinkgoWriter, true)
		ctx = context.Background()
	})

	ExpectOneResultPerJob := func(results []dispatch.Result, n int) {
		Expect(results).To(HaveLen(n))
		for i, r := range results {
			Expect(r.Job.ChapterIndex).To(Equal(i))
		}
	}

	Describe("New", func() {
		It("falls back to the CPU count for limits below one", func() {
			Expect(dispatch.New(0, ex, log).Limit()).To(Equal(runtime.NumCPU()))
			Expect(dispatch.New(-3, ex, log).Limit()).To(Equal(runtime.NumCPU()))
			Expect(dispatch.New(3, ex, log).Limit()).To(Equal(3))
		})
	})

	Context("when the extractor is unavailable", func() {
		BeforeEach(func() {
			ex.unavailable = errors.New("ffmpeg not on PATH")
		})

		It("fails with an environment error before any job runs", func() {
			results, err := dispatch.New(2, ex, log).Run(ctx, makeJobs(3))
			Expect(errors.Is(err, failure.ErrEnvironment)).To(BeTrue())
			Expect(results).To(BeNil())
			Expect(ex.started).To(BeEmpty())
		})
	})

	Context("with a concurrency limit of one", func() {
		It("runs and completes jobs in chapter order", func() {
			results, err := dispatch.New(1, ex, log).Run(ctx, makeJobs(6))
			Expect(err).NotTo(HaveOccurred())
			ExpectOneResultPerJob(results, 6)
			Expect(ex.started).To(Equal([]int{0, 1, 2, 3, 4, 5}))
			Expect(ex.completed).To(Equal([]int{0, 1, 2, 3, 4, 5}))
			Expect(ex.maxInFlight).To(Equal(1))
		})
	})

	Context("with a concurrency limit above one", func() {
		BeforeEach(func() {
			ex.delay = 2 * time.Millisecond
		})

		It("runs every job exactly once within the limit", func() {
			results, err := dispatch.New(4, ex, log).Run(ctx, makeJobs(25))
			Expect(err).NotTo(HaveOccurred())
			ExpectOneResultPerJob(results, 25)
			for _, r := range results {
				Expect(r.Succeeded()).To(BeTrue())
			}

			Expect(ex.started).To(HaveLen(25))
			started := append([]int(nil), ex.started...)
			sort.Ints(started)
			for i, idx := range started {
				Expect(idx).To(Equal(i))
			}
			Expect(ex.maxInFlight).To(BeNumerically("<=", 4))
		})
	})

	Context("when one job fails", func() {
		BeforeEach(func() {
			ex.fail[2] = failure.Extractionf("ffmpeg exited with status 1")
		})

		It("records the failure and still completes the siblings", func() {
			results, err := dispatch.New(3, ex, log).Run(ctx, makeJobs(5))
			Expect(err).NotTo(HaveOccurred())
			ExpectOneResultPerJob(results, 5)

			for i, r := range results {
				if i == 2 {
					Expect(r.Succeeded()).To(BeFalse())
					Expect(errors.Is(r.Err, failure.ErrExtraction)).To(BeTrue())
					continue
				}
				Expect(r.Succeeded()).To(BeTrue())
			}
			Expect(ex.started).To(HaveLen(5))
		})
	})

	Context("when the extractor returns an unclassified error", func() {
		BeforeEach(func() {
			ex.fail[0] = errors.New("disk on fire")
		})

		It("marks it as an extraction error", func() {
			results, err := dispatch.New(1, ex, log).Run(ctx, makeJobs(1))
			Expect(err).NotTo(HaveOccurred())
			Expect(errors.Is(results[0].Err, failure.ErrExtraction)).To(BeTrue())
			Expect(results[0].Err.Error()).To(ContainSubstring("disk on fire"))
		})
	})

	Context("when the run is cancelled", func() {
		It("attempts nothing if cancelled up front", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			results, err := dispatch.New(2, ex, log).Run(cancelled, makeJobs(4))
			Expect(err).NotTo(HaveOccurred())
			ExpectOneResultPerJob(results, 4)
			for _, r := range results {
				Expect(errors.Is(r.Err, failure.ErrExtraction)).To(BeTrue())
				Expect(errors.Is(r.Err, context.Canceled)).To(BeTrue())
			}
			Expect(ex.started).To(BeEmpty())
		})

		It("records unstarted jobs as failed after a mid-run cancel", func() {
			running, cancel := context.WithCancel(ctx)
			defer cancel()
			ex.onExtract = func(job planner.Job) {
				if job.ChapterIndex == 1 {
					cancel()
				}
			}

			results, err := dispatch.New(1, ex, log).Run(running, makeJobs(5))
			Expect(err).NotTo(HaveOccurred())
			ExpectOneResultPerJob(results, 5)
			Expect(ex.started).To(Equal([]int{0, 1}))
			Expect(results[0].Succeeded()).To(BeTrue())
			for _, r := range results[2:] {
				Expect(r.Succeeded()).To(BeFalse())
				Expect(r.Err.Error()).To(ContainSubstring("not started"))
			}
		})
	})

	Context("with a per-job timeout", func() {
		BeforeEach(func() {
			ex.waitForCtx = true
		})

		It("fails jobs that run past the deadline", func() {
			d := dispatch.New(2, ex, log, dispatch.WithJobTimeout(10*time.Millisecond))
			results, err := d.Run(ctx, makeJobs(2))
			Expect(err).NotTo(HaveOccurred())
			ExpectOneResultPerJob(results, 2)
			for _, r := range results {
				Expect(errors.Is(r.Err, failure.ErrExtraction)).To(BeTrue())
				Expect(errors.Is(r.Err, context.DeadlineExceeded)).To(BeTrue())
			}
		})
	})

	It("returns an empty result set for an empty plan", func() {
		results, err := dispatch.New(2, ex, log).Run(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(results).To(BeEmpty())
	})
})
