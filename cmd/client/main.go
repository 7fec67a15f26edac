package main

import (
	"fmt"
	"net"
	"os"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/annel0/mmo-game/internal/app"
	"github.com/annel0/mmo-game/internal/block"
	"github.com/annel0/mmo-game/internal/block/blocktypes"
	"github.com/annel0/mmo-game/internal/client"
	"github.com/annel0/mmo-game/internal/cmdparser"
	"github.com/annel0/mmo-game/internal/config"
	"github.com/annel0/mmo-game/internal/logging"
	"github.com/annel0/mmo-game/internal/network"
)

// tickInterval is the fixed client simulation step spec §4.9's
// prediction loop advances by — matches internal/server's tick rate so
// the two integrate in lockstep.
const tickInterval = 16 * time.Millisecond

func init() {
	// glfw/gl require their calling goroutine pinned to the OS thread
	// that owns the GL context — borrowed from dantero-ps-mini-mc-go.
	runtime.LockOSThread()
}

func main() {
	os.Exit(run())
}

func run() int {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		return 1
	}
	cfg.EnvOverride()
	cfg.Client = true

	if err := cmdparser.Parse(os.Args[1:], &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	if !cfg.Client {
		fmt.Fprintln(os.Stderr, "cmd/client requires --client")
		return 1
	}

	if err := logging.InitLogger("client"); err != nil {
		fmt.Fprintf(os.Stderr, "init logging: %v\n", err)
		return 2
	}
	defer logging.CloseLogger()

	registry := block.NewRegistry()
	blocktypes.Install(registry)

	serverAddr, err := net.ResolveUDPAddr("udp", fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	if err != nil {
		logging.LogError("resolve server address: %v", err)
		return 2
	}
	conn, err := net.ListenUDP("udp", &net.UDPAddr{})
	if err != nil {
		logging.LogError("open socket: %v", err)
		return 2
	}
	defer conn.Close()

	var window *glfwWindow
	var input client.Input = client.StaticInput{}
	if !cfg.NoKeyboard || !cfg.NoMouse {
		w, err := setupWindow(cfg)
		if err != nil {
			logging.LogError("create window: %v", err)
			return 2
		}
		window = w
		input = window.input
	}

	runtime := newRuntime(cfg, window)
	defer runtime.Shutdown()

	metrics := network.NewMetrics()
	sess := client.NewSession(conn, serverAddr, registry, input, metrics)

	if err := sess.Login(cfg.PlayerName); err != nil {
		logging.LogError("send login: %v", err)
		return 2
	}

	go receiveLoop(conn, sess)

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	frames := 0
	deadline := runDeadline(cfg)
	for {
		if window != nil && window.ShouldClose() {
			break
		}
		<-ticker.C
		if err := sess.Tick(tickInterval.Seconds()); err != nil {
			logging.LogError("tick: %v", err)
		}
		if window != nil {
			window.SwapBuffers()
			window.PollEvents()
		}
		frames++
		if cfg.RunFrames > 0 && frames >= cfg.RunFrames {
			break
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			break
		}
	}

	_ = sess.Part()
	return 0
}

func runDeadline(cfg config.Config) time.Time {
	if cfg.RunDuration <= 0 {
		return time.Time{}
	}
	return time.Now().Add(time.Duration(cfg.RunDuration) * time.Millisecond)
}

// receiveLoop hands every inbound datagram to the session; runs on its
// own goroutine so reads never block the fixed-step tick loop.
func receiveLoop(conn *net.UDPConn, sess *client.Session) {
	buf := make([]byte, network.MaxPacketSize)
	for {
		n, _, err := conn.ReadFromUDP(buf)
		if err != nil {
			if sess.Joined() {
				logging.LogWarn("read from server: %v", err)
			}
			return
		}
		pkt := make([]byte, n)
		copy(pkt, buf[:n])
		sess.HandlePacket(pkt)
	}
}

func newRuntime(cfg config.Config, w *glfwWindow) *app.Runtime {
	if w == nil {
		return app.NewHeadlessRuntime(cfg)
	}
	return app.NewGraphicalRuntime(cfg, w)
}

// glfwWindow adapts a *glfw.Window to app.Window and tracks live input
// state for a liveInput. Rendering the world itself is out of scope —
// this process only needs a window to own an input/event pump.
type glfwWindow struct {
	win   *glfw.Window
	input *liveInput
}

func (g *glfwWindow) ShouldClose() bool { return g.win.ShouldClose() }
func (g *glfwWindow) SwapBuffers()      { g.win.SwapBuffers() }
func (g *glfwWindow) PollEvents()       { glfw.PollEvents() }
func (g *glfwWindow) Destroy() {
	g.win.Destroy()
	glfw.Terminate()
}

// liveInput implements client.Input from glfw keyboard/mouse state,
// polled once per tick rather than pushed through callbacks — the
// fixed-step session loop samples intent at a known point instead of
// reacting to input events asynchronously.
type liveInput struct {
	win          *glfw.Window
	pitch, yaw   float64
	lastX, lastY float64
	haveLast     bool
	actions      uint8
	slot         uint8
	keyboardOff  bool
}

const mouseSensitivity = 0.0022

func newLiveInput(win *glfw.Window, noKeyboard, noMouse bool) *liveInput {
	li := &liveInput{win: win, keyboardOff: noKeyboard}
	if !noMouse {
		win.SetCursorPosCallback(func(_ *glfw.Window, xpos, ypos float64) {
			li.onCursorMove(xpos, ypos)
		})
		win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
			li.onMouseButton(button, action)
		})
	}
	return li
}

func (li *liveInput) onCursorMove(xpos, ypos float64) {
	if !li.haveLast {
		li.lastX, li.lastY = xpos, ypos
		li.haveLast = true
		return
	}
	dx, dy := xpos-li.lastX, ypos-li.lastY
	li.lastX, li.lastY = xpos, ypos
	li.yaw += dx * mouseSensitivity
	li.pitch -= dy * mouseSensitivity
	const limit = 1.5533 // ~89 degrees
	if li.pitch > limit {
		li.pitch = limit
	}
	if li.pitch < -limit {
		li.pitch = -limit
	}
}

func (li *liveInput) onMouseButton(button glfw.MouseButton, action glfw.Action) {
	const (
		bitPrimary   uint8 = 1 << 0
		bitSecondary uint8 = 1 << 1
	)
	bit := uint8(0)
	switch button {
	case glfw.MouseButtonLeft:
		bit = bitPrimary
	case glfw.MouseButtonRight:
		bit = bitSecondary
	default:
		return
	}
	if action == glfw.Press {
		li.actions |= bit
	} else if action == glfw.Release {
		li.actions &^= bit
	}
}

func (li *liveInput) Movement() mgl64.Vec3 {
	if li.keyboardOff {
		return mgl64.Vec3{}
	}
	var forward, strafe, vertical float64
	if li.win.GetKey(glfw.KeyW) == glfw.Press {
		forward++
	}
	if li.win.GetKey(glfw.KeyS) == glfw.Press {
		forward--
	}
	if li.win.GetKey(glfw.KeyD) == glfw.Press {
		strafe++
	}
	if li.win.GetKey(glfw.KeyA) == glfw.Press {
		strafe--
	}
	if li.win.GetKey(glfw.KeySpace) == glfw.Press {
		vertical++
	}
	if li.win.GetKey(glfw.KeyLeftShift) == glfw.Press {
		vertical--
	}
	v := mgl64.Vec3{strafe, vertical, forward}
	if l := v.Len(); l > 1 {
		v = v.Mul(1 / l)
	}
	return v
}

func (li *liveInput) Look() (pitch, yaw float64) { return li.pitch, li.yaw }
func (li *liveInput) Actions() uint8             { return li.actions }
func (li *liveInput) Slot() uint8                { return li.slot }

func setupWindow(cfg config.Config) (*glfwWindow, error) {
	if err := glfw.Init(); err != nil {
		return nil, err
	}
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	if cfg.Multisampling > 0 {
		glfw.WindowHint(glfw.Samples, cfg.Multisampling)
	}
	if cfg.DisableDoubleBuffer {
		glfw.WindowHint(glfw.DoubleBuffer, glfw.False)
	}

	win, err := glfw.CreateWindow(1280, 720, "mmo-game", nil, nil)
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	win.MakeContextCurrent()

	if cfg.NoVsync {
		glfw.SwapInterval(0)
	} else {
		glfw.SwapInterval(1)
	}
	if !cfg.NoMouse {
		win.SetInputMode(glfw.CursorMode, glfw.CursorDisabled)
	}

	li := newLiveInput(win, cfg.NoKeyboard, cfg.NoMouse)
	return &glfwWindow{win: win, input: li}, nil
}
