package driver

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sarchlab/vmsim/vm"
)

// An Action is the operation a script line asks for.
type Action int

// The actions a script can request.
const (
	ActionAlloc Action = iota
	ActionFree
	ActionRead
	ActionWrite
	ActionSwitch
	ActionShow
)

// String returns the script keyword of the action.
func (a Action) String() string {
	switch a {
	case ActionAlloc:
		return "alloc"
	case ActionFree:
		return "free"
	case ActionRead:
		return "read"
	case ActionWrite:
		return "write"
	case ActionSwitch:
		return "switch"
	case ActionShow:
		return "show"
	default:
		return "unknown"
	}
}

// A Command is one parsed script line.
type Command struct {
	// Line is the 1-based line number the command came from.
	Line int

	Action Action
	VPN    vm.VPN
	PID    vm.PID
	Mode   vm.AccessMode

	// Data is the byte a write command stores, if HasData is set.
	Data    byte
	HasData bool
}

// ParseScript reads a whole script and returns its commands. Blank lines
// and lines starting with # carry no command. A malformed line stops
// parsing with an error naming the line.
func ParseScript(r io.Reader) ([]Command, error) {
	var commands []Command

	scanner := bufio.NewScanner(r)
	lineNo := 0

	for scanner.Scan() {
		lineNo++

		cmd, ok, err := ParseLine(scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !ok {
			continue
		}

		cmd.Line = lineNo
		commands = append(commands, cmd)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return commands, nil
}

// ParseLine parses one script line. The second return value is false for
// blank lines and comments.
func ParseLine(line string) (Command, bool, error) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Command{}, false, nil
	}

	fields := strings.Fields(line)
	keyword := fields[0]
	args := fields[1:]

	switch keyword {
	case "alloc":
		return parseAlloc(args)
	case "free":
		return parseFree(args)
	case "read":
		return parseRead(args)
	case "write":
		return parseWrite(args)
	case "switch":
		return parseSwitch(args)
	case "show":
		if len(args) != 0 {
			return Command{}, false, fmt.Errorf("show takes no arguments")
		}

		return Command{Action: ActionShow}, true, nil
	default:
		return Command{}, false, fmt.Errorf("unknown command %q", keyword)
	}
}

func parseAlloc(args []string) (Command, bool, error) {
	if len(args) != 2 {
		return Command{}, false,
			fmt.Errorf("alloc takes a page number and ro or rw")
	}

	vpn, err := parseVPN(args[0])
	if err != nil {
		return Command{}, false, err
	}

	var mode vm.AccessMode
	switch args[1] {
	case "ro":
		mode = vm.AccessRead
	case "rw":
		mode = vm.AccessReadWrite
	default:
		return Command{}, false,
			fmt.Errorf("access mode must be ro or rw, not %q", args[1])
	}

	return Command{Action: ActionAlloc, VPN: vpn, Mode: mode}, true, nil
}

func parseFree(args []string) (Command, bool, error) {
	if len(args) != 1 {
		return Command{}, false, fmt.Errorf("free takes a page number")
	}

	vpn, err := parseVPN(args[0])
	if err != nil {
		return Command{}, false, err
	}

	return Command{Action: ActionFree, VPN: vpn}, true, nil
}

func parseRead(args []string) (Command, bool, error) {
	if len(args) != 1 {
		return Command{}, false, fmt.Errorf("read takes a page number")
	}

	vpn, err := parseVPN(args[0])
	if err != nil {
		return Command{}, false, err
	}

	return Command{Action: ActionRead, VPN: vpn, Mode: vm.AccessRead},
		true, nil
}

func parseWrite(args []string) (Command, bool, error) {
	if len(args) != 1 && len(args) != 2 {
		return Command{}, false,
			fmt.Errorf("write takes a page number and an optional byte")
	}

	vpn, err := parseVPN(args[0])
	if err != nil {
		return Command{}, false, err
	}

	cmd := Command{Action: ActionWrite, VPN: vpn, Mode: vm.AccessReadWrite}

	if len(args) == 2 {
		data, err := strconv.ParseUint(args[1], 0, 8)
		if err != nil {
			return Command{}, false, fmt.Errorf("bad byte value %q", args[1])
		}

		cmd.Data = byte(data)
		cmd.HasData = true
	}

	return cmd, true, nil
}

func parseSwitch(args []string) (Command, bool, error) {
	if len(args) != 1 {
		return Command{}, false, fmt.Errorf("switch takes a pid")
	}

	pid, err := strconv.ParseUint(args[0], 0, 32)
	if err != nil {
		return Command{}, false, fmt.Errorf("bad pid %q", args[0])
	}

	return Command{Action: ActionSwitch, PID: vm.PID(pid)}, true, nil
}

func parseVPN(s string) (vm.VPN, error) {
	vpn, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("bad page number %q", s)
	}

	return vm.VPN(vpn), nil
}
