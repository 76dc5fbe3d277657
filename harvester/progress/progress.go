package progress

import (
	"time"

	logging "github.com/ipfs/go-log/v2"
)

// Triangle logs item counts at geometrically spaced milestones, so long runs
// stay quiet without going silent.
type Triangle struct {
	log   *logging.ZapEventLogger
	base  int64
	i     int64
	next  int64
	start time.Time
}

func NewTriangle(logger *logging.ZapEventLogger, base int64) *Triangle {
	if base < 2 {
		base = 2
	}

	return &Triangle{
		log:   logger,
		base:  base,
		next:  1,
		start: time.Now(),
	}
}

func (t *Triangle) Update() {
	t.i++
	if t.i == t.next {
		t.log.Infof("%d files in %s", t.i, time.Since(t.start).Round(time.Millisecond))
		t.next *= t.base
	}
}

func (t *Triangle) Count() int64 {
	return t.i
}

func (t *Triangle) Done() {
	t.log.Infof("%d files in %s", t.i, time.Since(t.start).Round(time.Millisecond))
}
