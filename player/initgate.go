package player

import (
	"github.com/samber/mo"
	"github.com/vidctl/vidctl/event"
)

// initGate lets Initialized through once per session.
type initGate struct {
	fired bool
}

// open returns the Initialized event on the first call only.
func (g *initGate) open(duration int64, format mo.Option[VideoFormat]) (event.Initialized, bool) {
	if g.fired {
		return event.Initialized{}, false
	}
	g.fired = true

	return initialized(duration, format), true
}

func initialized(duration int64, format mo.Option[VideoFormat]) event.Initialized {
	e := event.Initialized{Duration: duration}

	f, ok := format.Get()
	if !ok {
		return e
	}

	e.Width, e.Height = f.Width, f.Height
	switch f.RotationDegrees {
	case 90, 270:
		e.Width, e.Height = f.Height, f.Width
	case 180:
		e.RotationCorrection = mo.Some(180)
	}

	return e
}
