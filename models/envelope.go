package models

// AdvancedParams are the request parameters that cost extra credits on the
// backend. The permission gate only ever proposes parameters from this set,
// and never applies one without explicit caller confirmation.
var AdvancedParams = []string{
	"render_js",
	"residential",
	"mobile",
	"premium",
	"bypass_level",
	"optimize_request",
}

// UsedOptions records the parameter values actually applied to one outgoing
// request. It is built incrementally while the request is assembled and read
// once by the permission gate.
type UsedOptions map[string]any

// Set records a parameter value.
func (u UsedOptions) Set(name string, value any) {
	u[name] = value
}

// AdvancedUsed returns the advanced parameter names present with a defined,
// non-false value.
func (u UsedOptions) AdvancedUsed() []string {
	var used []string
	for _, name := range AdvancedParams {
		v, ok := u[name]
		if !ok || v == nil {
			continue
		}
		if b, isBool := v.(bool); isBool && !b {
			continue
		}
		used = append(used, name)
	}
	return used
}

// IsBasic reports whether no advanced parameter was applied.
func (u UsedOptions) IsBasic() bool {
	return len(u.AdvancedUsed()) == 0
}

// PermissionRequest asks the caller to confirm a costlier retry. Advanced
// options are never applied without the caller acting on this block in a
// subsequent call.
type PermissionRequest struct {
	Message          string      `json:"message"`
	Question         string      `json:"question"`
	SuggestedOptions UsedOptions `json:"suggested_options"`
	EstimatedCost    string      `json:"estimated_cost"`
	Instruction      string      `json:"instruction"`
}

// Diagnostic explains a failure that already used advanced options.
type Diagnostic struct {
	OptionsTried   []string `json:"options_tried"`
	PossibleCauses []string `json:"possible_causes"`
}

// Envelope is the uniform JSON response for a fetch-backed tool call.
// At most one of PermissionRequest and Diagnostic is present.
type Envelope struct {
	Success           bool               `json:"success"`
	URL               string             `json:"url"`
	Error             string             `json:"error,omitempty"`
	ErrorType         ErrorKind          `json:"error_type,omitempty"`
	StatusCode        int                `json:"status_code,omitempty"`
	RetriesAttempted  int                `json:"retries_attempted"`
	OptionsUsed       UsedOptions        `json:"options_used"`
	PermissionRequest *PermissionRequest `json:"permission_request,omitempty"`
	Diagnostic        *Diagnostic        `json:"diagnostic,omitempty"`
}
