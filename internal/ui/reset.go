package ui

import (
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"

	applog "github.com/fwmsg/aufgaben-web/internal/log"
)

// StartCacheReset clears c on the cron schedule spec. An empty spec disables
// the job and returns a nil scheduler.
func StartCacheReset(spec string, c *SubstepCache) (*cron.Cron, error) {
	if spec == "" {
		return nil, nil
	}
	sched := cron.New()
	if _, err := sched.AddFunc(spec, func() {
		n := c.Reset()
		applog.Infof("Zwischenschritt-Cache geleert (%d Einträge)", n)
	}); err != nil {
		return nil, errors.Wrapf(err, "cache reset spec %q", spec)
	}
	sched.Start()
	return sched, nil
}
