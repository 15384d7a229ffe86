package parser

import (
	"slices"

	"github.com/hnimtadd/termtext/logger"
	"github.com/hnimtadd/termtext/terminal/utils"
)

const (
	MaxParams        = 24
	MaxIntermediates = 4
	// MaxDataLen caps the stored OSC and DCS payload. Longer payloads are
	// truncated.
	MaxDataLen = 1024

	maxParamValue = 65535
)

// VT-series parser for escape and control sequences.
//
// This is implemented directly as the state machine described on
// vt100.net: https://vt100.net/emu/dec_ansi_parser
type Parser struct {
	State State

	// intermediate tracking
	intermediates    [MaxIntermediates]uint8
	intermediatesIdx int

	// param tracking
	params      [MaxParams]uint16
	paramsIdx   int
	paramsSet   *utils.StaticBitSet
	paramAcc    uint32
	paramAccIdx int

	// OSC and DCS payload
	data []byte
	// DCS header kept from hook to unhook
	dcs *Sequence

	table *parserTable

	logger logger.Logger
}

func NewParser(l logger.Logger) *Parser {
	return &Parser{
		State:     StateGround,
		table:     sharedTable,
		paramsSet: utils.NewStaticBitSet(MaxParams),
		logger:    logger.OrNop(l),
	}
}

var sharedTable = newParserTable()

// Next consumes the next character c and returns the actions to execute.
//
// Up to 3 actions may need to be executed. When going from one state to
// another state, the actions take place in this order
//
// 1. exit action from old state
//
// 2. transition action
//
// 3. entry action to new state
func (p *Parser) Next(c uint8) [3]*Action {
	effect := p.table[c][p.State]
	nextState := effect.state

	actions := [3]*Action{}

	if p.State != nextState {
		switch p.State {
		case StateOSCString:
			actions[0] = &Action{
				Type:     ActionOSCEnd,
				Sequence: &Sequence{Kind: SequenceOSC, Data: slices.Clone(p.data)},
			}
		case StateDCSPassthrough:
			seq := p.dcs
			if seq == nil {
				seq = &Sequence{Kind: SequenceDCS}
			}
			seq.Data = slices.Clone(p.data)
			p.dcs = nil
			actions[0] = &Action{Type: ActionDCSUnHook, Sequence: seq}
		}
	}

	actions[1] = p.doAction(effect.action, c)

	if p.State != nextState {
		switch nextState {
		case StateEscape, StateDCSEntry, StateCSIEntry:
			p.Clear()
		case StateOSCString:
			p.data = p.data[:0]
		case StateDCSPassthrough:
			// hook: the final character of the DCS header arrived.
			p.finalizeParams()
			p.dcs = &Sequence{
				Kind:          SequenceDCS,
				Intermediates: slices.Clone(p.intermediates[:p.intermediatesIdx]),
				Params:        slices.Clone(p.params[:p.paramsIdx]),
				Final:         c,
			}
			p.data = p.data[:0]
		}
	}

	p.State = nextState
	return actions
}

func (p *Parser) doAction(actionType ActionType, c uint8) *Action {
	switch actionType {
	case ActionIgnore, ActionNone:
		return nil
	case ActionPrint, ActionExecute:
		return &Action{Type: actionType, Byte: c}
	case ActionCollect:
		p.Collect(c)
		return nil
	case ActionParam:
		// Semicolon separates parameters. If we encounter a semicolon
		// we need to store and move on to the next parameter.
		if c == ';' || c == ':' {
			// ignore too many parameters
			if p.paramsIdx >= MaxParams {
				return nil
			}
			p.params[p.paramsIdx] = uint16(p.paramAcc)
			if c == ':' {
				p.paramsSet.Set(p.paramsIdx)
			}
			p.paramsIdx++
			p.paramAcc = 0
			p.paramAccIdx = 0
			return nil
		}

		// A numeric value. Saturate instead of overflowing.
		p.paramAcc = min(p.paramAcc*10+uint32(c-'0'), maxParamValue)
		p.paramAccIdx++
		return nil
	case ActionESCDispatch:
		return &Action{
			Type: ActionESCDispatch,
			Sequence: &Sequence{
				Kind:          SequenceESC,
				Intermediates: slices.Clone(p.intermediates[:p.intermediatesIdx]),
				Final:         c,
			},
		}
	case ActionCSIDispatch:
		// Ignore too many parameters
		if p.paramsIdx >= MaxParams {
			return nil
		}
		p.finalizeParams()

		// We only allow colon or mixed separators for the 'm' command.
		if c != 'm' && p.paramsSet.Count() > 0 {
			p.logger.Debug("CSI colon separators only allowed for 'm'", "final", string(rune(c)))
			return nil
		}
		return &Action{
			Type: ActionCSIDispatch,
			Sequence: &Sequence{
				Kind:          SequenceCSI,
				Intermediates: slices.Clone(p.intermediates[:p.intermediatesIdx]),
				Params:        slices.Clone(p.params[:p.paramsIdx]),
				Final:         c,
			},
		}
	case ActionOSCPut, ActionDCSPut:
		if len(p.data) < MaxDataLen {
			p.data = append(p.data, c)
		}
		return nil
	default:
		p.logger.Warn("unknown parser action", "type", actionType)
		return nil
	}
}

func (p *Parser) finalizeParams() {
	if p.paramAccIdx > 0 && p.paramsIdx < MaxParams {
		p.params[p.paramsIdx] = uint16(p.paramAcc)
		p.paramsIdx++
		p.paramAcc = 0
		p.paramAccIdx = 0
	}
}

func (p *Parser) Collect(c uint8) {
	if p.intermediatesIdx >= MaxIntermediates {
		p.logger.Debug("too many intermediates, ignoring", "codepoint", c)
		return
	}
	p.intermediates[p.intermediatesIdx] = c
	p.intermediatesIdx++
}

func (p *Parser) Clear() {
	p.paramsIdx = 0
	p.paramAcc = 0
	p.paramAccIdx = 0
	p.paramsSet.Clear()
	p.intermediatesIdx = 0
}
