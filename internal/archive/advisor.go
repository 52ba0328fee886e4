package archive

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"funcpack/internal/buildlog"
)

// Verdict classifies an archive size against the deployment limits.
type Verdict string

const (
	VerdictOK        Verdict = "OK"
	VerdictNearLimit Verdict = "NEAR_LIMIT"
	VerdictOverLimit Verdict = "OVER_LIMIT"
)

// Assessment is the advisory size result for one archive. It never fails
// a run; an over-limit archive is still a completed build.
type Assessment struct {
	Verdict   Verdict
	SizeBytes int64
	Headline  string
	Advice    []string
}

// Assess classifies sizeBytes against the warn and hard thresholds.
func Assess(sizeBytes, warnThresholdBytes, hardThresholdBytes int64) Assessment {
	a := Assessment{SizeBytes: sizeBytes}
	size := humanize.IBytes(uint64(sizeBytes))
	hard := humanize.IBytes(uint64(hardThresholdBytes))

	switch {
	case sizeBytes > hardThresholdBytes:
		a.Verdict = VerdictOverLimit
		a.Headline = fmt.Sprintf("archive size %s exceeds the %s deployment limit", size, hard)
		a.Advice = []string{
			"upload the archive directly with a CLI or API client instead of the web console",
			"move heavy dependencies into a separately managed shared layer",
			"switch to a container-image deployment, which allows a much larger package",
		}
	case sizeBytes > warnThresholdBytes:
		a.Verdict = VerdictNearLimit
		a.Headline = fmt.Sprintf("archive size %s is approaching the %s deployment limit", size, hard)
	default:
		a.Verdict = VerdictOK
		a.Headline = fmt.Sprintf("archive size %s is within the %s deployment limit", size, hard)
	}
	return a
}

// LogTo records the assessment. Size problems are warnings, never errors:
// the run's exit status does not depend on them.
func (a Assessment) LogTo(log *buildlog.Logger) {
	switch a.Verdict {
	case VerdictOK:
		log.Infof("%s", a.Headline)
	default:
		log.Warnf("%s", a.Headline)
		for _, advice := range a.Advice {
			log.Warnf("consider: %s", advice)
		}
	}
}
