// Package shell provides the ishell backed operator console.
package shell

import (
	"fmt"
	"strings"

	"github.com/abiosoft/ishell"

	"LiftLink/internal/core"
	"LiftLink/internal/device"
	"LiftLink/internal/model"
	"LiftLink/internal/protocol"
	"LiftLink/internal/trigger"
)

const (
	shellKey          = "$shell"
	unconnectedPrompt = "[none] > "
)

// Shell drives a running System from the terminal.
type Shell struct {
	Shell *ishell.Shell
	Sys   *core.System
}

// action runs one command and returns the text to print.
type action func(s *Shell, args []string) (string, error)

// New creates a shell bound to sys.
func New(sys *core.System) *Shell {
	s := &Shell{Shell: ishell.New(), Sys: sys}
	s.Shell.Set(shellKey, s)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	s.updatePrompt()
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// MustBeConnected wraps an action that needs an open controller port.
func MustBeConnected(fn action) action {
	return func(s *Shell, args []string) (string, error) {
		if !s.Sys.Lift.Connected() {
			return "", device.ErrNotConnected
		}
		return fn(s, args)
	}
}

// Run processes args as a single command, or starts the interactive loop.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	s.Shell.Println("LiftLink console, type help for commands")
	s.Shell.Run()
	return nil
}

func (s *Shell) updatePrompt() {
	if s.Shell == nil {
		return
	}
	if port := s.Sys.Lift.PortName(); port != "" {
		s.Shell.SetPrompt(port + " > ")
		return
	}
	s.Shell.SetPrompt(unconnectedPrompt)
}

func cmdFunc(fn action) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		out, err := fn(s, c.Args)
		s.updatePrompt()
		if err != nil {
			c.Err(err)
			return
		}
		if out != "" {
			c.Println(out)
		}
	}
}

func sendCommand(text string) action {
	return func(s *Shell, args []string) (string, error) {
		cmd, err := protocol.ParseCommand(strings.Join(append([]string{text}, args...), " "))
		if err != nil {
			return "", err
		}
		if err := s.Sys.Lift.Send(cmd); err != nil {
			return "", err
		}
		return "sent " + cmd.Encode(), nil
	}
}

func showState(s *Shell, _ []string) (string, error) {
	return FormatView(s.Sys.View()), nil
}

func showLog(s *Shell, _ []string) (string, error) {
	lines := s.Sys.Log.Lines()
	if len(lines) == 0 {
		return "(no messages)", nil
	}
	return strings.Join(lines, "\n"), nil
}

func listPorts(s *Shell, _ []string) (string, error) {
	ports, err := s.Sys.Lift.Ports()
	if err != nil {
		return "", err
	}
	if len(ports) == 0 {
		return "No ports found", nil
	}
	return strings.Join(ports, "\n"), nil
}

func connect(s *Shell, args []string) (string, error) {
	var port string
	if len(args) > 0 {
		port = args[0]
	}
	if err := s.Sys.Lift.Connect(port); err != nil {
		return "", err
	}
	return "connected to " + s.Sys.Lift.PortName(), nil
}

func disconnect(s *Shell, _ []string) (string, error) {
	if err := s.Sys.Lift.Close(); err != nil {
		return "", err
	}
	return "disconnected", nil
}

func detect(s *Shell, args []string) (string, error) {
	present := true
	if len(args) > 0 {
		var ok bool
		if present, ok = trigger.ParsePresence(args[0]); !ok {
			return "", fmt.Errorf("detect expects on or off, got %q", args[0])
		}
	}
	return FormatResult(s.Sys.Trigger.Observe(present)), nil
}

// FormatView prints a status view on one line.
func FormatView(v model.StatusView) string {
	conn := "disconnected"
	if v.Connected {
		conn = "connected " + v.Port
	}
	out := fmt.Sprintf("%s | %s", conn, v.FloorLabel)
	if v.Connected {
		out += " " + v.Motion
	}
	if v.LastMessage != "" {
		out += " | last " + v.LastMessage
	}
	if v.CooldownRemaining > 0 {
		out += fmt.Sprintf(" | cooldown %.1fs", v.CooldownRemaining)
	}
	return out
}

// FormatResult describes a trigger outcome.
func FormatResult(r trigger.Result) string {
	switch {
	case !r.Edge:
		return "no change"
	case r.Err != nil:
		return "not sent: " + r.Err.Error()
	case r.Suppressed():
		return fmt.Sprintf("ignored, cooldown %.1fs", r.Remaining.Seconds())
	case r.Fired:
		return "triggered"
	}
	return "edge"
}

var commands = []*ishell.Cmd{
	{
		Name:    "goto",
		Aliases: []string{"g"},
		Help:    "N  move the car to floor N (1-based)",
		Func:    cmdFunc(MustBeConnected(sendCommand("goto"))),
	},
	{
		Name: "reset",
		Help: "return the car to the ground floor",
		Func: cmdFunc(MustBeConnected(sendCommand("reset"))),
	},
	{
		Name: "status",
		Help: "ask the controller for its floor",
		Func: cmdFunc(MustBeConnected(sendCommand("status"))),
	},
	{
		Name:    "state",
		Aliases: []string{"s"},
		Help:    "show the live state",
		Func:    cmdFunc(showState),
	},
	{
		Name: "log",
		Help: "show recent controller messages",
		Func: cmdFunc(showLog),
	},
	{
		Name:    "ports",
		Aliases: []string{"list", "l"},
		Help:    "list serial ports",
		Func:    cmdFunc(listPorts),
	},
	{
		Name:    "connect",
		Aliases: []string{"c"},
		Help:    "[PORT]  open the controller port",
		Func:    cmdFunc(connect),
	},
	{
		Name:    "disconnect",
		Aliases: []string{"d"},
		Help:    "close the controller port",
		Func:    cmdFunc(disconnect),
	},
	{
		Name: "detect",
		Help: "[on|off]  feed a detection sample (default on)",
		Func: cmdFunc(detect),
	},
}
