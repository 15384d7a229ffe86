package parser

// State is a node of the DEC parser diagram.
type State int

const (
	StateGround State = iota // text and C0 controls
	StateEscape
	StateEscapeIntermediate
	StateCSIEntry
	StateCSIParam
	StateCSIIntermediate
	StateCsiIgnore // malformed CSI, skipped up to its final byte
	StateDCSEntry
	StateDCSParam
	StateDCSIntermediate
	StateDCSPassthrough
	StateDCSIgnore
	StateOSCString
	StateSosPmApcString // SOS, PM and APC strings are skipped

	numStates
)

var stateNames = [numStates]string{
	"ground", "escape", "escape_intermediate",
	"csi_entry", "csi_param", "csi_intermediate", "csi_ignore",
	"dcs_entry", "dcs_param", "dcs_intermediate", "dcs_passthrough", "dcs_ignore",
	"osc_string", "sos_pm_apc_string",
}

func (s State) String() string {
	if s < 0 || s >= numStates {
		return "unknown"
	}
	return stateNames[s]
}
