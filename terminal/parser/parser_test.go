package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func feed(p *Parser, input string) []*Action {
	var out []*Action
	for i := 0; i < len(input); i++ {
		for _, a := range p.Next(input[i]) {
			if a != nil {
				out = append(out, a)
			}
		}
	}
	return out
}

func TestParserNext(t *testing.T) {
	tcs := []struct {
		name     string
		previous []uint8
		curr     uint8
		expected func(*testing.T, [3]*Action)
	}{
		{
			name:     "esc: ESC ( B -- 0x1B 0x28 0x42",
			previous: []uint8{0x1B, '('},
			curr:     'B',
			expected: func(t *testing.T, actions [3]*Action) {
				assert.Nil(t, actions[0])
				require.NotNil(t, actions[1])
				assert.Nil(t, actions[2])

				d := actions[1].Sequence
				assert.Equal(t, SequenceESC, d.Kind)
				assert.EqualValues(t, 'B', d.Final)
				assert.Equal(t, []uint8{'('}, d.Intermediates)
			},
		},
		{
			name:     "csi: CSI ( B",
			previous: []uint8{0x9B, '('},
			curr:     'B',
			expected: func(t *testing.T, actions [3]*Action) {
				assert.Nil(t, actions[0])
				require.NotNil(t, actions[1])
				assert.Nil(t, actions[2])

				d := actions[1].Sequence
				assert.Equal(t, SequenceCSI, d.Kind)
				assert.EqualValues(t, 'B', d.Final)
				assert.Equal(t, []uint8{'('}, d.Intermediates)
			},
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			p := NewParser(nil)
			for _, prev := range tc.previous {
				p.Next(prev)
			}
			actions := p.Next(tc.curr)
			tc.expected(t, actions)
		})
	}
}

func TestParser_CSIParams(t *testing.T) {
	p := NewParser(nil)
	actions := feed(p, "\x1b[?7;20h")
	require.Len(t, actions, 1)
	seq := actions[0].Sequence
	assert.Equal(t, ActionCSIDispatch, actions[0].Type)
	assert.True(t, seq.Private())
	assert.Equal(t, []uint16{7, 20}, seq.Params)
	assert.EqualValues(t, 'h', seq.Final)
	assert.Equal(t, StateGround, p.State)
}

func TestParser_CSIParamSaturates(t *testing.T) {
	p := NewParser(nil)
	actions := feed(p, "\x1b[99999999m")
	require.Len(t, actions, 1)
	assert.Equal(t, []uint16{65535}, actions[0].Sequence.Params)
}

func TestParser_CSIColonIgnored(t *testing.T) {
	p := NewParser(nil)
	assert.Empty(t, feed(p, "\x1b[4:3H"))
	assert.Equal(t, StateGround, p.State)
}

func TestParser_EscapeRestart(t *testing.T) {
	p := NewParser(nil)
	actions := feed(p, "\x1b\x1b[1A")
	require.Len(t, actions, 1)
	assert.EqualValues(t, 'A', actions[0].Sequence.Final)
}

func TestParser_OSC(t *testing.T) {
	p := NewParser(nil)
	actions := feed(p, "\x1b]0;héllo\x07")
	require.Len(t, actions, 1)
	assert.Equal(t, ActionOSCEnd, actions[0].Type)
	assert.Equal(t, "0;héllo", string(actions[0].Sequence.Data))
	assert.Equal(t, StateGround, p.State)

	// ST terminated: the OSC ends on ESC, then ESC \ dispatches.
	actions = feed(p, "\x1b]2;t\x1b\\")
	require.Len(t, actions, 2)
	assert.Equal(t, "2;t", string(actions[0].Sequence.Data))
	assert.Equal(t, ActionESCDispatch, actions[1].Type)
}

func TestParser_DCS(t *testing.T) {
	p := NewParser(nil)
	actions := feed(p, "\x1bP1$qm\x1b\\")
	require.NotEmpty(t, actions)
	assert.Equal(t, ActionDCSUnHook, actions[0].Type)
	seq := actions[0].Sequence
	assert.Equal(t, SequenceDCS, seq.Kind)
	assert.Equal(t, []uint16{1}, seq.Params)
	assert.Equal(t, []uint8{'$'}, seq.Intermediates)
	assert.EqualValues(t, 'q', seq.Final)
	assert.Equal(t, "m", string(seq.Data))
}

func TestParser_ExecuteInsideCSI(t *testing.T) {
	p := NewParser(nil)
	actions := feed(p, "\x1b[1\n;2H")
	require.Len(t, actions, 2)
	assert.Equal(t, ActionExecute, actions[0].Type)
	assert.EqualValues(t, '\n', actions[0].Byte)
	assert.Equal(t, []uint16{1, 2}, actions[1].Sequence.Params)
}

func TestParser_TooManyIntermediates(t *testing.T) {
	p := NewParser(nil)
	actions := feed(p, "\x1b[!!!!!!p")
	require.Len(t, actions, 1)
	assert.Len(t, actions[0].Sequence.Intermediates, MaxIntermediates)
}

func TestParserTable(t *testing.T) {
	tbl := newParserTable()
	for s := StateGround; s < numStates; s++ {
		assert.Equal(t, StateEscape, tbl[0x1B][s].state, "ESC from %d", s)
	}
	assert.Equal(t, transition{StateGround, ActionPrint}, tbl['a'][StateGround])
	assert.Equal(t, transition{StateCSIParam, ActionParam}, tbl['1'][StateCSIEntry])
	assert.Equal(t, transition{StateCSIParam, ActionCollect}, tbl['?'][StateCSIEntry])
	assert.Equal(t, transition{StateOSCString, ActionOSCPut}, tbl[0xE2][StateOSCString])
	assert.Equal(t, transition{StateOSCString, ActionOSCPut}, tbl[0xFF][StateOSCString])
	assert.Equal(t, transition{StateGround, ActionNone}, tbl[0x9C][StateOSCString])
	assert.Equal(t, transition{StateGround, ActionNone}, tbl[0x07][StateOSCString])
	assert.Equal(t, transition{StateEscape, ActionIgnore}, tbl[0x7F][StateEscape])
	// no rule
	assert.Equal(t, transition{StateGround, ActionNone}, tbl[0xE2][StateGround])
}

func TestState_String(t *testing.T) {
	p := NewParser(nil)
	assert.Equal(t, "ground", p.State.String())
	feed(p, "\x1b[1")
	assert.Equal(t, "csi_param", p.State.String())
	assert.Equal(t, "unknown", State(-1).String())
}
