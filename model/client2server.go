package model

type Command int

const (
	CmdPause Command = iota + 1
	CmdResume
	CmdReset
)

func (c Command) Name() string {
	switch c {
	case CmdPause:
		return "PAUSE"
	case CmdResume:
		return "RESUME"
	case CmdReset:
		return "RESET"
	default:
		return "N/A"
	}
}

type ClientMessage struct {
	Command Command
}
