package catalog

// Function represents a function. Arguments is the normalized input
// argument type list and participates in identity because functions can be
// overloaded; everything else is data.
type Function struct {
	Schema    string `json:"schema"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // normalized input argument types
	Owner     string `json:"owner,omitempty"`

	Signature  string `json:"signature,omitempty"` // full parameter list for rendering
	Definition string `json:"definition"`
	ReturnType string `json:"return_type"`
	Language   string `json:"language"`

	Volatility      string   `json:"volatility,omitempty"` // IMMUTABLE, STABLE, VOLATILE
	Strict          bool     `json:"strict,omitempty"`
	SecurityDefiner bool     `json:"security_definer,omitempty"`
	Leakproof       bool     `json:"leakproof,omitempty"`
	Parallel        string   `json:"parallel,omitempty"` // SAFE, RESTRICTED, UNSAFE
	Config          []string `json:"config,omitempty"`   // function-level SET parameters
	Comment         string   `json:"comment,omitempty"`

	Dependencies []string `json:"dependencies,omitempty"`
}

func (f *Function) StableID() string {
	return FunctionID(f.Schema, f.Name, f.Arguments)
}

// Procedure represents a procedure.
type Procedure struct {
	Schema    string `json:"schema"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Owner     string `json:"owner,omitempty"`

	Signature       string `json:"signature,omitempty"`
	Definition      string `json:"definition"`
	Language        string `json:"language"`
	SecurityDefiner bool   `json:"security_definer,omitempty"`
	Comment         string `json:"comment,omitempty"`

	Dependencies []string `json:"dependencies,omitempty"`
}

func (p *Procedure) StableID() string {
	return ProcedureID(p.Schema, p.Name, p.Arguments)
}

// Aggregate represents a user-defined aggregate.
type Aggregate struct {
	Schema    string `json:"schema"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
	Owner     string `json:"owner,omitempty"`

	TransitionFunc   string `json:"transition_func"`
	StateType        string `json:"state_type"`
	FinalFunc        string `json:"final_func,omitempty"`
	InitialCondition string `json:"initial_condition,omitempty"`
	Comment          string `json:"comment,omitempty"`
}

func (a *Aggregate) StableID() string {
	return AggregateID(a.Schema, a.Name, a.Arguments)
}
