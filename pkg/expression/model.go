package expression

// Rule is one signal's penalty rule. The signal exceeds when its rise over
// baseline is above Delta, or its absolute value is above Absolute (which
// catches subjects whose resting face is already elevated).
type Rule struct {
	Signal   Signal
	Delta    float64
	Absolute float64
	Penalty  float64
	Warning  string

	// MaxJawOpen, when positive, additionally requires jawOpen below it so a
	// yawn is not mistaken for a smile.
	MaxJawOpen float64
}

// DefaultRules is the penalty table for expression-based distraction.
// eyeSquint, jawOpen and eyeBlink are tracked but score through the
// dedicated eyes-closed and yawning conditions instead.
func DefaultRules() []Rule {
	return []Rule{
		{Signal: BrowDown, Delta: 0.02, Absolute: 0.15, Penalty: 5, Warning: "brow_down"},
		{Signal: Smile, Delta: 0.15, Absolute: 0.35, Penalty: 8, Warning: "smile", MaxJawOpen: 0.2},
		{Signal: MouthPucker, Delta: 0.5, Absolute: 0.8, Penalty: 3, Warning: "mouth_pucker"},
		{Signal: MouthPress, Delta: 0.1, Absolute: 0.3, Penalty: 3, Warning: "mouth_press"},
		{Signal: EyeWide, Delta: 0.01, Absolute: 0.1, Penalty: 5, Warning: "eye_wide"},
		{Signal: MouthFrown, Delta: 0.1, Absolute: 0.25, Penalty: 5, Warning: "mouth_frown"},
		{Signal: BrowInnerUp, Delta: 0.5, Absolute: 0.7, Penalty: 3, Warning: "brow_inner_up"},
		{Signal: MouthFunnel, Delta: 0.15, Absolute: 0.3, Penalty: 5, Warning: "mouth_funnel"},
	}
}

// DefaultCap bounds the total expression penalty.
const DefaultCap = 30.0

// Result is the capped penalty and the warnings of every exceeding rule, in
// rule order.
type Result struct {
	Penalty  float64  `json:"penalty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Model evaluates the rule table.
type Model struct {
	rules []Rule
	cap   float64
}

// NewModel creates a model with the given rules and cap.
func NewModel(rules []Rule, cap float64) *Model {
	return &Model{rules: rules, cap: cap}
}

// DefaultModel creates a model with DefaultRules and DefaultCap.
func DefaultModel() *Model {
	return NewModel(DefaultRules(), DefaultCap)
}

// Exceeds reports whether a single rule fires. A nil baseline counts as zero.
func (r Rule) Exceeds(current, baseline Signals) bool {
	value := current[r.Signal]
	delta := value - baseline[r.Signal]
	if !(delta > r.Delta || value > r.Absolute) {
		return false
	}
	if r.MaxJawOpen > 0 && current[JawOpen] >= r.MaxJawOpen {
		return false
	}
	return true
}

// Evaluate applies every rule and caps the total penalty.
func (m *Model) Evaluate(current, baseline Signals) Result {
	var res Result
	for _, rule := range m.rules {
		if rule.Exceeds(current, baseline) {
			res.Penalty += rule.Penalty
			res.Warnings = append(res.Warnings, rule.Warning)
		}
	}
	if res.Penalty > m.cap {
		res.Penalty = m.cap
	}
	return res
}
