// Package cmdparser implements the two command surfaces the spec
// documents: the process argument parser shared by the client and
// server binaries (§6 CLI), and the in-world text command parser
// players use over chat (a supplemented feature — distinct from the
// out-of-scope TCP console, which is one line in, one line out with
// no grammar of its own).
package cmdparser

import (
	"fmt"
	"strconv"

	"github.com/annel0/mmo-game/internal/config"
)

// ErrUsage signals an invalid argument list — callers exit with code 1
// (spec §6's "1 invalid arguments").
type ErrUsage struct{ Msg string }

func (e ErrUsage) Error() string { return e.Msg }

// Parse reads CLI args into cfg (already loaded from a config file),
// applying every short and long option spec §6 lists.
func Parse(args []string, cfg *config.Config) error {
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch a {
		case "-d":
			cfg.DisableDoubleBuffer = true
		case "-m":
			n, err := nextInt(args, &i)
			if err != nil {
				return err
			}
			cfg.Multisampling = n
		case "-n":
			n, err := nextInt(args, &i)
			if err != nil {
				return err
			}
			cfg.RunFrames = n
		case "-s":
			n, err := nextInt(args, &i)
			if err != nil {
				return err
			}
			cfg.Seed = int64(n)
		case "-t":
			n, err := nextInt(args, &i)
			if err != nil {
				return err
			}
			cfg.RunDuration = n
		case "--server":
			cfg.Server = true
		case "--client":
			cfg.Client = true
		case "--no-vsync":
			cfg.NoVsync = true
		case "--no-keyboard":
			cfg.NoKeyboard = true
		case "--no-mouse":
			cfg.NoMouse = true
		case "--no-hud":
			cfg.NoHUD = true
		case "--no-audio":
			cfg.NoAudio = true
		case "--asset-path":
			v, err := nextString(args, &i)
			if err != nil {
				return err
			}
			cfg.AssetPath = v
		case "--save-path":
			v, err := nextString(args, &i)
			if err != nil {
				return err
			}
			cfg.SavePath = v
		case "--world-name":
			v, err := nextString(args, &i)
			if err != nil {
				return err
			}
			cfg.WorldName = v
		case "--host":
			v, err := nextString(args, &i)
			if err != nil {
				return err
			}
			cfg.Host = v
		case "--port":
			n, err := nextInt(args, &i)
			if err != nil {
				return err
			}
			cfg.Port = n
		case "--cmd-port":
			n, err := nextInt(args, &i)
			if err != nil {
				return err
			}
			cfg.CmdPort = n
		case "--player-name":
			v, err := nextString(args, &i)
			if err != nil {
				return err
			}
			cfg.PlayerName = v
		default:
			return ErrUsage{Msg: fmt.Sprintf("unrecognized argument: %s", a)}
		}
	}
	if cfg.Server == cfg.Client {
		return ErrUsage{Msg: "exactly one of --server or --client is required"}
	}
	return nil
}

func nextString(args []string, i *int) (string, error) {
	if *i+1 >= len(args) {
		return "", ErrUsage{Msg: fmt.Sprintf("%s requires a value", args[*i])}
	}
	*i++
	return args[*i], nil
}

func nextInt(args []string, i *int) (int, error) {
	v, err := nextString(args, i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, ErrUsage{Msg: fmt.Sprintf("%s requires an integer, got %q", args[*i-1], v)}
	}
	return n, nil
}
