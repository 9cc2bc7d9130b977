// Package protocol converts between LiftLink commands/events and the
// line-oriented text protocol spoken by the elevator controller.
//
// Outbound wire format (host -> controller):
//
//	GOTO <n>    n is the zero-based target floor
//	RESET
//	STATUS
//
// Inbound wire format (controller -> host):
//
//	FLOOR|<n>   STATUS|<n>   DONE|<n>   RESET_DONE
package protocol

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind identifies an outbound command variant.
type CommandKind int

const (
	// CommandGoto moves the car to a floor.
	CommandGoto CommandKind = iota
	// CommandReset returns the car to the ground floor.
	CommandReset
	// CommandStatus asks the controller to report its floor.
	CommandStatus
)

// Command is an immutable outbound command.
// Floor is one-based and only meaningful for CommandGoto.
type Command struct {
	Kind  CommandKind
	Floor int
}

// ErrInvalidCommand is returned by ParseCommand for unusable operator input.
var ErrInvalidCommand = errors.New("invalid command")

// GotoFloor builds a command for the one-based floor n.
func GotoFloor(n int) Command { return Command{Kind: CommandGoto, Floor: n} }

// Reset builds a RESET command.
func Reset() Command { return Command{Kind: CommandReset} }

// StatusRequest builds a STATUS command.
func StatusRequest() Command { return Command{Kind: CommandStatus} }

// Encode returns the wire text of c without the line terminator.
// The controller numbers floors from zero, users from one.
func (c Command) Encode() string {
	switch c.Kind {
	case CommandGoto:
		return "GOTO " + strconv.Itoa(c.Floor-1)
	case CommandReset:
		return "RESET"
	default:
		return "STATUS"
	}
}

// String returns the operator form of c, as accepted by ParseCommand.
func (c Command) String() string {
	switch c.Kind {
	case CommandGoto:
		return fmt.Sprintf("goto %d", c.Floor)
	case CommandReset:
		return "reset"
	default:
		return "status"
	}
}

// ParseCommand parses operator text such as "goto 2", "reset" or "status".
func ParseCommand(text string) (Command, error) {
	fields := strings.Fields(strings.ToLower(text))
	if len(fields) == 0 {
		return Command{}, fmt.Errorf("%w: empty", ErrInvalidCommand)
	}
	switch fields[0] {
	case "goto":
		if len(fields) != 2 {
			return Command{}, fmt.Errorf("%w: goto expects one floor", ErrInvalidCommand)
		}
		n, err := strconv.Atoi(fields[1])
		if err != nil || n < 1 {
			return Command{}, fmt.Errorf("%w: floor %q must be a number >= 1", ErrInvalidCommand, fields[1])
		}
		return GotoFloor(n), nil
	case "reset":
		if len(fields) != 1 {
			return Command{}, fmt.Errorf("%w: reset takes no arguments", ErrInvalidCommand)
		}
		return Reset(), nil
	case "status":
		if len(fields) != 1 {
			return Command{}, fmt.Errorf("%w: status takes no arguments", ErrInvalidCommand)
		}
		return StatusRequest(), nil
	}
	return Command{}, fmt.Errorf("%w: unknown command %q", ErrInvalidCommand, fields[0])
}
