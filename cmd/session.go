package cmd

import (
	"context"
	"fmt"
	"sync"

	"github.com/spf13/viper"
	"github.com/vidctl/vidctl/event"
	"github.com/vidctl/vidctl/history"
	"github.com/vidctl/vidctl/key"
	"github.com/vidctl/vidctl/log"
	"github.com/vidctl/vidctl/player"
	"github.com/vidctl/vidctl/source"
)

// session is the listener of one controller. It tracks startup and the end
// of playback for the command, then hands every event on to whichever
// output is attached, queueing while none is.
type session struct {
	*player.Controller

	out     *event.Sink
	looping bool

	ready     chan struct{}
	readyOnce sync.Once

	done     chan struct{}
	doneOnce sync.Once
	failure  error
}

type sessionOptions struct {
	looping  bool
	headless bool
}

func newSession(ctx context.Context, req source.Request, options sessionOptions) (*session, error) {
	c, err := player.Create(ctx, player.CreateParams{
		URI:        req.URI,
		FormatHint: req.Hint,
		Headers:    req.Headers,
		UserAgent:  req.UserAgent,
		Options: player.Options{
			MixWithOthers: viper.GetBool(key.PlayerMixWithOthers),
		},
		Engine: engineFactory(options.headless),
	})
	if err != nil {
		return nil, err
	}

	s := &session{
		Controller: c,
		out:        event.NewSink(),
		looping:    options.looping,
		ready:      make(chan struct{}),
		done:       make(chan struct{}),
	}

	c.Attach(s)
	return s, nil
}

func (s *session) OnEvent(e event.Event) {
	switch e := e.(type) {
	case event.Initialized:
		s.readyOnce.Do(func() { close(s.ready) })
	case event.Completed:
		if !s.looping {
			s.finish(nil)
		}
	case event.Error:
		s.finish(fmt.Errorf("%s: %s", e.Code, e.Message))
	}

	s.out.Success(e)
}

// Attach routes the session's events to l, replaying those not yet seen.
func (s *session) Attach(l event.Listener) {
	s.out.SetDelegate(l)
}

func (s *session) Detach() {
	s.out.SetDelegate(nil)
}

func (s *session) finish(err error) {
	s.doneOnce.Do(func() {
		s.failure = err
		close(s.done)
	})
}

// waitReady blocks until the media is initialized. A session that ends
// first reports why.
func (s *session) waitReady(ctx context.Context) error {
	select {
	case <-s.ready:
		return nil
	case <-s.done:
		if s.failure != nil {
			return s.failure
		}
		return fmt.Errorf("playback ended before the media was ready")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// wait blocks until playback completes, fails, or ctx is done.
func (s *session) wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.failure
	case <-ctx.Done():
		return nil
	}
}

// close disposes the controller and records where playback stopped.
func (s *session) close(save bool) {
	position, duration := s.Position(), s.Duration()
	s.Dispose()

	if !save || duration <= 0 {
		return
	}

	if err := history.Save(s.Descriptor(), position, duration); err != nil {
		log.Warnf("save history: %v", err)
	}
}
