package orchestrator

import "context"

// Progress is a coarse milestone of a tool call
type Progress struct {
	Percent int
	Message string
}

// ProgressSink receives milestones as an operation advances
type ProgressSink interface {
	Report(ctx context.Context, p Progress)
}

// ProgressFunc adapts a function to ProgressSink
type ProgressFunc func(ctx context.Context, p Progress)

func (f ProgressFunc) Report(ctx context.Context, p Progress) { f(ctx, p) }

var (
	progressLoginStarted   = Progress{Percent: 10, Message: "Starting browser and logging in..."}
	progressLoginFinished  = Progress{Percent: 30, Message: "Finished logging in to LinkedIn"}
	progressScrapeStarted  = Progress{Percent: 40, Message: "About to scrape the profile"}
	progressScrapeFinished = Progress{Percent: 90, Message: "Finished scraping the profile"}
	progressSearchStarted  = Progress{Percent: 40, Message: "Starting LinkedIn profile search..."}
	progressSearchFinished = Progress{Percent: 90, Message: "Finished LinkedIn profile search"}
)

func report(ctx context.Context, sink ProgressSink, p Progress) {
	if sink != nil {
		sink.Report(ctx, p)
	}
}
