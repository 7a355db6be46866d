// Package popup models the floating-video popup player: a closed/open state
// machine over an ordered video list with clamped navigation and deferred
// media teardown.
package popup

import (
	"fmt"
	"time"

	"github.com/featvid/featvid/internal/settings"
)

// TeardownDelay is how long a closed popup keeps its media element alive,
// covering the close animation before the element is torn down.
const TeardownDelay = 300 * time.Millisecond

// Video is one playable entry. Source decides which URL field is used.
type Video struct {
	Source   string
	URL      string
	EmbedURL string
	Title    string
}

// Element describes the single media element mounted on the surface.
type Element struct {
	Kind string // "video" or "iframe"
	SRC  string

	// video element attributes
	Autoplay     bool
	Loop         bool
	Muted        bool
	Controls     bool
	ControlsList string
	PiP          bool

	// iframe attributes
	Allow string
}

// Surface is where the player mounts its media element. Mount replaces any
// element already mounted; the player never keeps two alive.
type Surface interface {
	Mount(el Element)
	Clear()
}

// Scheduler defers the teardown after close. AfterFunc returns a cancel
// function; canceling after the timer fired is a no-op.
type Scheduler interface {
	AfterFunc(d time.Duration, fn func()) (cancel func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, fn func()) func() {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}

// NewScheduler returns the real timer-backed scheduler.
func NewScheduler() Scheduler {
	return timerScheduler{}
}

type Player struct {
	videos        []Video
	selfControls  settings.Controls
	embedControls settings.Controls

	surface Surface
	sched   Scheduler

	open           bool
	index          int
	cancelTeardown func()
}

func NewPlayer(videos []Video, selfControls, embedControls settings.Controls, surface Surface, sched Scheduler) *Player {
	return &Player{
		videos:        videos,
		selfControls:  selfControls,
		embedControls: embedControls,
		surface:       surface,
		sched:         sched,
	}
}

// Open shows the popup at the first video. Reopening while a teardown is
// pending cancels it and rebuilds the element from scratch.
func (p *Player) Open() {
	if p.open {
		return
	}
	if p.cancelTeardown != nil {
		p.cancelTeardown()
		p.cancelTeardown = nil
	}
	p.open = true
	p.index = 0
	p.mount()
}

// Close hides the popup and schedules the media teardown. The element
// stays mounted for TeardownDelay so the close animation has something to
// animate.
func (p *Player) Close() {
	if !p.open {
		return
	}
	p.open = false
	p.cancelTeardown = p.sched.AfterFunc(TeardownDelay, func() {
		p.surface.Clear()
	})
}

// Next advances to the following video. At the last video it does nothing;
// navigation clamps instead of wrapping.
func (p *Player) Next() {
	if !p.open || p.index >= len(p.videos)-1 {
		return
	}
	p.index++
	p.mount()
}

// Prev steps back to the previous video, clamped at the first.
func (p *Player) Prev() {
	if !p.open || p.index <= 0 {
		return
	}
	p.index--
	p.mount()
}

// Keyboard keys the player reacts to while open.
const (
	KeyEscape     = "Escape"
	KeyArrowLeft  = "ArrowLeft"
	KeyArrowRight = "ArrowRight"
)

// HandleKey routes a keyboard event. Keys are ignored while closed.
func (p *Player) HandleKey(key string) {
	if !p.open {
		return
	}
	switch key {
	case KeyEscape:
		p.Close()
	case KeyArrowLeft:
		p.Prev()
	case KeyArrowRight:
		p.Next()
	}
}

func (p *Player) IsOpen() bool { return p.open }

func (p *Player) Index() int { return p.index }

// Nav is the chrome rendered around the media element.
type Nav struct {
	Title        string
	Counter      string
	PrevDisabled bool
	NextDisabled bool
}

func (p *Player) Nav() Nav {
	if len(p.videos) == 0 {
		return Nav{PrevDisabled: true, NextDisabled: true}
	}
	return Nav{
		Title:        p.videos[p.index].Title,
		Counter:      fmt.Sprintf("%d / %d", p.index+1, len(p.videos)),
		PrevDisabled: p.index == 0,
		NextDisabled: p.index == len(p.videos)-1,
	}
}

// mount tears down the previous element and builds the current video's.
func (p *Player) mount() {
	if p.index < 0 || p.index >= len(p.videos) {
		return
	}
	p.surface.Clear()
	p.surface.Mount(p.element(p.videos[p.index]))
}

func (p *Player) element(v Video) Element {
	if v.Source == "embed" {
		return Element{
			Kind:  "iframe",
			SRC:   NormalizeEmbedURL(v.EmbedURL, p.embedControls),
			Allow: "fullscreen; autoplay; picture-in-picture",
		}
	}
	el := Element{
		Kind:     "video",
		SRC:      v.URL,
		Autoplay: p.selfControls.Autoplay,
		Loop:     p.selfControls.Loop,
		Muted:    p.selfControls.Mute,
		Controls: p.selfControls.Controls,
		PiP:      p.selfControls.PIP,
	}
	if !p.selfControls.Download {
		el.ControlsList = "nodownload"
	}
	return el
}
