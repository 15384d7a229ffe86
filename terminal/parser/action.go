package parser

import (
	"fmt"
	"strings"
)

// ActionType is an action that taked when event or
// state transition occurs
type ActionType int

const (
	ActionNone ActionType = iota
	ActionIgnore
	ActionPrint
	ActionExecute
	ActionCollect
	ActionParam
	ActionESCDispatch
	ActionCSIDispatch
	ActionDCSPut
	ActionDCSUnHook
	ActionOSCPut
	ActionOSCEnd
)

func (a ActionType) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionIgnore:
		return "Ignore"
	case ActionPrint:
		return "Print"
	case ActionExecute:
		return "Execute"
	case ActionCollect:
		return "Collect"
	case ActionParam:
		return "Param"
	case ActionESCDispatch:
		return "ESCDispatch"
	case ActionCSIDispatch:
		return "CSIDispatch"
	case ActionDCSPut:
		return "DCSPut"
	case ActionDCSUnHook:
		return "DCSUnHook"
	case ActionOSCPut:
		return "OSCPut"
	case ActionOSCEnd:
		return "OSCEnd"
	default:
		return "Unknown"
	}
}

// Action is the action that a caller of the parser is expected to
// take as a result of some input character
type Action struct {
	Type ActionType

	// Byte to print or the C0/C1 function to execute.
	Byte uint8

	// The complete sequence for the dispatch actions.
	Sequence *Sequence
}

func (a *Action) String() string {
	if a == nil {
		return "{nil}"
	}
	builder := new(strings.Builder)
	fmt.Fprintf(builder, "{ .%s = ", a.Type.String())
	switch a.Type {
	case ActionPrint, ActionExecute:
		fmt.Fprintf(builder, "0x%x", a.Byte)
	case ActionESCDispatch, ActionCSIDispatch, ActionOSCEnd, ActionDCSUnHook:
		if a.Sequence != nil {
			builder.WriteString(a.Sequence.String())
		} else {
			builder.WriteString("nil")
		}
	}
	builder.WriteString("}")
	return builder.String()
}

type SequenceKind int

const (
	SequenceESC SequenceKind = iota
	SequenceCSI
	SequenceOSC
	SequenceDCS
)

func (k SequenceKind) String() string {
	switch k {
	case SequenceESC:
		return "ESC"
	case SequenceCSI:
		return "CSI"
	case SequenceOSC:
		return "OSC"
	case SequenceDCS:
		return "DCS"
	default:
		return "Unknown"
	}
}

// Sequence is a fully parsed escape sequence. The slices are owned by the
// sequence.
type Sequence struct {
	Kind          SequenceKind
	Intermediates []uint8
	Params        []uint16
	Final         uint8
	// Payload of OSC strings and DCS passthrough, capped at MaxDataLen.
	Data []byte
}

// Private reports whether the sequence carries a DEC private marker.
func (s *Sequence) Private() bool {
	return len(s.Intermediates) == 1 && s.Intermediates[0] == '?'
}

func (s *Sequence) String() string {
	switch s.Kind {
	case SequenceOSC:
		return fmt.Sprintf("OSC %q", s.Data)
	case SequenceDCS:
		return fmt.Sprintf("DCS %v %v %v %q", s.Intermediates, s.Params, s.Final, s.Data)
	default:
		return fmt.Sprintf("%s %v %v %v", s.Kind, s.Intermediates, s.Params, s.Final)
	}
}
