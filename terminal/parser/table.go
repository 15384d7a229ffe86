package parser

// transition is the state to move to and the action to run on the way.
type transition struct {
	state  State
	action ActionType
}

// parserTable is indexed by input byte, then current state. It follows the
// DEC diagram at https://vt100.net/emu/dec_ansi_parser. Bytes without a
// rule go back to ground and do nothing.
type parserTable [256][numStates]transition

// span is an inclusive byte range.
type span struct{ lo, hi uint8 }

func one(c uint8) span { return span{c, c} }

// stay keeps the current state.
const stay State = -1

// rule sends every byte in spans from one state to next.
type rule struct {
	from   State
	spans  []span
	next   State
	action ActionType
}

// C0 controls that are executed or swallowed in place, leaving out CAN, SUB
// and ESC which have rules of their own.
var c0 = []span{{0x00, 0x17}, one(0x19), {0x1C, 0x1F}}

var (
	paramBytes = []span{{0x30, 0x39}, one(0x3B)}
	privBytes  = []span{{0x3C, 0x3F}}
	interBytes = []span{{0x20, 0x2F}}
	finalBytes = []span{{0x40, 0x7E}}
	st         = []span{one(0x9C)}
	del        = []span{one(0x7F)}
)

// anywhere applies to every state before the state's own rules.
var anywhere = []rule{
	{spans: []span{one(0x18), one(0x1A), {0x80, 0x8F}, {0x91, 0x97}, one(0x99), one(0x9A)}, next: StateGround, action: ActionExecute},
	{spans: st, next: StateGround},
	{spans: []span{one(0x98), one(0x9E), one(0x9F)}, next: StateSosPmApcString},
	{spans: []span{one(0x1B)}, next: StateEscape},
	{spans: []span{one(0x90)}, next: StateDCSEntry},
	{spans: []span{one(0x9D)}, next: StateOSCString},
	{spans: []span{one(0x9B)}, next: StateCSIEntry},
}

// rules are applied in order, so a later rule wins on overlap.
var rules = []rule{
	{StateGround, c0, stay, ActionExecute},
	{StateGround, []span{{0x20, 0x7F}}, stay, ActionPrint},

	{StateEscape, []span{{0x30, 0x4F}, {0x51, 0x57}, one(0x59), one(0x5A), one(0x5C), {0x60, 0x7E}}, StateGround, ActionESCDispatch},
	{StateEscape, interBytes, StateEscapeIntermediate, ActionCollect},
	{StateEscape, []span{one(0x58), one(0x5E), one(0x5F)}, StateSosPmApcString, ActionNone},
	{StateEscape, []span{one(0x50)}, StateDCSEntry, ActionNone},
	{StateEscape, []span{one(0x5D)}, StateOSCString, ActionNone},
	{StateEscape, []span{one(0x5B)}, StateCSIEntry, ActionNone},
	{StateEscape, c0, stay, ActionExecute},
	{StateEscape, del, stay, ActionIgnore},

	{StateEscapeIntermediate, []span{{0x30, 0x7E}}, StateGround, ActionESCDispatch},
	{StateEscapeIntermediate, c0, stay, ActionExecute},
	{StateEscapeIntermediate, interBytes, stay, ActionCollect},
	{StateEscapeIntermediate, del, stay, ActionIgnore},

	{StateCSIEntry, finalBytes, StateGround, ActionCSIDispatch},
	{StateCSIEntry, paramBytes, StateCSIParam, ActionParam},
	{StateCSIEntry, privBytes, StateCSIParam, ActionCollect},
	{StateCSIEntry, []span{one(0x3A)}, StateCsiIgnore, ActionNone},
	{StateCSIEntry, interBytes, StateCSIIntermediate, ActionCollect},
	{StateCSIEntry, c0, stay, ActionExecute},
	{StateCSIEntry, del, stay, ActionIgnore},

	{StateCSIParam, finalBytes, StateGround, ActionCSIDispatch},
	{StateCSIParam, []span{one(0x3A), {0x3C, 0x3F}}, StateCsiIgnore, ActionNone},
	{StateCSIParam, interBytes, StateCSIIntermediate, ActionCollect},
	{StateCSIParam, c0, stay, ActionExecute},
	{StateCSIParam, paramBytes, stay, ActionParam},
	{StateCSIParam, del, stay, ActionIgnore},

	{StateCSIIntermediate, finalBytes, StateGround, ActionCSIDispatch},
	{StateCSIIntermediate, []span{{0x30, 0x3F}}, StateCsiIgnore, ActionNone},
	{StateCSIIntermediate, c0, stay, ActionExecute},
	{StateCSIIntermediate, interBytes, stay, ActionCollect},
	{StateCSIIntermediate, del, stay, ActionIgnore},

	{StateCsiIgnore, finalBytes, StateGround, ActionNone},
	{StateCsiIgnore, c0, stay, ActionExecute},
	{StateCsiIgnore, []span{{0x20, 0x3F}, one(0x7F)}, stay, ActionIgnore},

	{StateDCSEntry, interBytes, StateDCSIntermediate, ActionCollect},
	{StateDCSEntry, []span{one(0x3A)}, StateDCSIgnore, ActionNone},
	{StateDCSEntry, paramBytes, StateDCSParam, ActionParam},
	{StateDCSEntry, privBytes, StateDCSParam, ActionCollect},
	{StateDCSEntry, finalBytes, StateDCSPassthrough, ActionNone},
	{StateDCSEntry, append(c0, del...), stay, ActionIgnore},

	{StateDCSParam, interBytes, StateDCSIntermediate, ActionCollect},
	{StateDCSParam, []span{one(0x3A), {0x3C, 0x3F}}, StateDCSIgnore, ActionNone},
	{StateDCSParam, finalBytes, StateDCSPassthrough, ActionNone},
	{StateDCSParam, append(c0, del...), stay, ActionIgnore},
	{StateDCSParam, paramBytes, stay, ActionParam},

	{StateDCSIntermediate, []span{{0x30, 0x3F}}, StateDCSIgnore, ActionNone},
	{StateDCSIntermediate, finalBytes, StateDCSPassthrough, ActionNone},
	{StateDCSIntermediate, append(c0, del...), stay, ActionIgnore},
	{StateDCSIntermediate, interBytes, stay, ActionCollect},

	{StateDCSPassthrough, st, StateGround, ActionNone},
	{StateDCSPassthrough, append(c0, span{0x20, 0x7E}), stay, ActionDCSPut},
	{StateDCSPassthrough, del, stay, ActionIgnore},

	{StateDCSIgnore, st, StateGround, ActionNone},
	{StateDCSIgnore, append(c0, span{0x20, 0x7F}), stay, ActionIgnore},

	{StateOSCString, st, StateGround, ActionNone},
	{StateOSCString, c0, stay, ActionIgnore},
	// The payload may be UTF-8, so every high byte but ST is kept.
	{StateOSCString, []span{{0x20, 0x7F}, {0x80, 0x9B}, {0x9D, 0xFF}}, stay, ActionOSCPut},
	// xterm also ends OSC with BEL.
	{StateOSCString, []span{one(0x07)}, StateGround, ActionNone},

	{StateSosPmApcString, st, StateGround, ActionNone},
	{StateSosPmApcString, append(c0, span{0x20, 0x7F}), stay, ActionIgnore},
}

func newParserTable() *parserTable {
	t := new(parserTable)
	for s := StateGround; s < numStates; s++ {
		for _, r := range anywhere {
			r.from = s
			t.apply(r)
		}
	}
	for _, r := range rules {
		t.apply(r)
	}
	return t
}

func (t *parserTable) apply(r rule) {
	next := r.next
	if next == stay {
		next = r.from
	}
	for _, sp := range r.spans {
		// int loop so that hi = 0xFF terminates
		for c := int(sp.lo); c <= int(sp.hi); c++ {
			t[c][r.from] = transition{state: next, action: r.action}
		}
	}
}
