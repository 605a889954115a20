package event

// Interacted fires around every interact, whether from a click or the
// walkthrough. Pre is true for the pre-interact hook.
type Interacted struct {
	Object string
	Player string
	Pre    bool
}

// Arrived fires when a walking object reaches its destination. It is
// emitted, so observers see it when the frame flushes the bus.
type Arrived struct {
	Object string
	X, Y   float64
}

type SceneChanged struct {
	From string
	To   string
}

// OptionChosen fires when the player picks an answer in an ask.
type OptionChosen struct {
	Actor  string
	Prompt string
	Option string
}

// StepPlayed is published by the walkthrough driver for every step it
// synthesises.
type StepPlayed struct {
	Index   int
	Kind    string
	Target  string
	Extra   string
	Outcome string // "ok", "skipped" or "failed"
}

type WalkthroughFinished struct {
	Index int
	Total int
}
