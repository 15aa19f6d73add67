package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/mvp-joe/memgrep/internal/hostfs"
)

// loadProgress draws a progress bar on w while scan reads files.
type loadProgress struct {
	w   io.Writer
	bar *progressbar.ProgressBar
}

func newLoadProgress(w io.Writer) *loadProgress {
	return &loadProgress{w: w}
}

// Func returns the callback handed to the loader. The bar is created on the
// first call, once the total is known.
func (p *loadProgress) Func() hostfs.ProgressFunc {
	return func(done, total int) {
		if p.bar == nil {
			p.bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(p.w),
				progressbar.OptionSetDescription("Reading files"),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("files/s"),
				progressbar.OptionThrottle(65*time.Millisecond),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionOnCompletion(func() {
					fmt.Fprintln(p.w)
				}),
			)
		}
		_ = p.bar.Set(done)
	}
}

// Finish completes the bar, if one was drawn, and resets it for the next
// scan.
func (p *loadProgress) Finish() {
	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// summary prints the one-line report shown after a scan.
func (p *loadProgress) summary(r *scanReport) {
	fmt.Fprintf(p.w, "✓ Scanned %s files in %.1fs: %s read (%s cached), %s binary, %s oversized, %s unreadable, %s filtered out\n",
		formatNumber(r.walked), r.took.Seconds(),
		formatNumber(r.stats.Loaded), formatNumber(r.stats.CacheHits),
		formatNumber(r.stats.Binary), formatNumber(r.stats.Oversized),
		formatNumber(len(r.stats.Failed)), formatNumber(r.walked-r.kept))
	fmt.Fprintf(p.w, "  %s matches in %s files\n",
		formatNumber(r.result.TotalMatches), formatNumber(r.result.FilesWithMatches))
}

// formatNumber adds thousands separators.
func formatNumber(n int) string {
	if n < 0 {
		return "-" + formatNumber(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}
