package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"
)

// searchProgress shows a progress bar while files are searched. A disabled
// progress is a no-op.
type searchProgress struct {
	bar *progressbar.ProgressBar
}

func newSearchProgress(totalFiles int, enabled bool, out io.Writer) *searchProgress {
	if !enabled || totalFiles == 0 {
		return &searchProgress{}
	}

	return &searchProgress{
		bar: progressbar.NewOptions(totalFiles,
			progressbar.OptionSetWriter(out),
			progressbar.OptionSetDescription("Searching files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(out)
			}),
		),
	}
}

// OnFileDone advances the bar. It is safe for concurrent use.
func (p *searchProgress) OnFileDone(string) {
	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Finish completes the bar.
func (p *searchProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
	}
}
