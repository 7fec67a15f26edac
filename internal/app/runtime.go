package app

import (
	"github.com/annel0/mmo-game/internal/config"
)

// Runtime is the process-wide resource both client and server
// construct exactly once and pass by reference into their state
// machine — spec §9's recast of the source's global SDL/audio/GL
// context into a single owned value instead of ambient globals.
type Runtime struct {
	Config   config.Config
	Headless bool

	window Window // nil in a headless Runtime
}

// Window is the graphical surface/input source a client Runtime owns;
// borrowed conceptually from dantero-ps-mini-mc-go's glfw.Window usage
// (Init/Terminate/SwapBuffers/ShouldClose/PollEvents), kept as a small
// interface here so headless servers and tests never link GL/windowing
// at all.
type Window interface {
	ShouldClose() bool
	SwapBuffers()
	PollEvents()
	Destroy()
}

// NewHeadlessRuntime builds a Runtime for the server process: no
// window, no audio, no input devices.
func NewHeadlessRuntime(cfg config.Config) *Runtime {
	return &Runtime{Config: cfg, Headless: true}
}

// NewGraphicalRuntime builds a client Runtime around an
// already-initialized window (constructed by cmd/client, which is the
// only place glfw/gl are imported — keeping windowing out of internal
// packages used by both processes).
func NewGraphicalRuntime(cfg config.Config, w Window) *Runtime {
	return &Runtime{Config: cfg, Headless: false, window: w}
}

func (r *Runtime) Window() Window { return r.window }

// Shutdown releases the window, if any. Safe to call on a headless
// Runtime.
func (r *Runtime) Shutdown() {
	if r.window != nil {
		r.window.Destroy()
	}
}
