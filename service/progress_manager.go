package service

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/ludo-technologies/exprlint/domain"
	"github.com/mattn/go-runewidth"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"
)

// maxLabelWidth bounds the bar label so the bar stays on one line
const maxLabelWidth = 40

// IsInteractiveEnvironment reports whether stderr is a terminal and the
// process is not running under CI
func IsInteractiveEnvironment() bool {
	if os.Getenv("CI") != "" || os.Getenv("TERM") == "dumb" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// NewProgressManager returns a file progress bar on stderr when enabled and
// interactive, and a silent manager otherwise
func NewProgressManager(enabled bool) domain.ProgressManager {
	if enabled && IsInteractiveEnvironment() {
		return newProgressManager(os.Stderr)
	}
	return &NoOpProgressManager{}
}

// ProgressManagerImpl draws one bar per executor run. Runs may overlap, so
// the bar list is guarded.
type ProgressManagerImpl struct {
	out io.Writer

	mu   sync.Mutex
	bars []*progressbar.ProgressBar
}

func newProgressManager(w io.Writer) *ProgressManagerImpl {
	return &ProgressManagerImpl{out: w}
}

// StartTask starts a bar counting total files
func (pm *ProgressManagerImpl) StartTask(description string, total int) domain.TaskProgress {
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(pm.out),
		progressbar.OptionSetDescription(fitLabel(description)),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionSetWidth(24),
		progressbar.OptionShowCount(),
		progressbar.OptionThrottle(50*time.Millisecond),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "|",
			BarEnd:        "|",
		}),
		progressbar.OptionClearOnFinish(),
	)

	pm.mu.Lock()
	pm.bars = append(pm.bars, bar)
	pm.mu.Unlock()

	return &TaskProgressImpl{bar: bar, label: description}
}

func (pm *ProgressManagerImpl) IsInteractive() bool {
	return true
}

// Close finishes every bar still drawn
func (pm *ProgressManagerImpl) Close() {
	pm.mu.Lock()
	defer pm.mu.Unlock()
	for _, bar := range pm.bars {
		_ = bar.Finish()
	}
	pm.bars = nil
}

// TaskProgressImpl is the bar of one run. Describe shows the file being
// processed next to the run label.
type TaskProgressImpl struct {
	bar   *progressbar.ProgressBar
	label string
}

func (tp *TaskProgressImpl) Increment(n int) {
	_ = tp.bar.Add(n)
}

func (tp *TaskProgressImpl) Describe(current string) {
	tp.bar.Describe(fitLabel(tp.label + " " + current))
}

func (tp *TaskProgressImpl) Complete() {
	_ = tp.bar.Finish()
}

// fitLabel truncates label to maxLabelWidth terminal cells
func fitLabel(label string) string {
	return runewidth.Truncate(label, maxLabelWidth, "...")
}

// NoOpProgressManager is used for piped output, JSON reports and CI
type NoOpProgressManager struct{}

func (pm *NoOpProgressManager) StartTask(_ string, _ int) domain.TaskProgress {
	return &NoOpTaskProgress{}
}

func (pm *NoOpProgressManager) IsInteractive() bool {
	return false
}

func (pm *NoOpProgressManager) Close() {}

// NoOpTaskProgress discards all updates
type NoOpTaskProgress struct{}

func (tp *NoOpTaskProgress) Increment(_ int) {}

func (tp *NoOpTaskProgress) Describe(_ string) {}

func (tp *NoOpTaskProgress) Complete() {}
