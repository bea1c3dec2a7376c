package train

/*
Environment is an interactive collaborator for reinforcement training.

Execute returns the successor state and must not mutate the receiver;
Serialize writes the state vector into a caller-provided buffer of
length Size.
*/
type Environment interface {
	// Size is the serialized state vector length
	Size() int
	// ActionCount is the number of actions available in every state
	ActionCount() int
	// Reward of the current state
	Reward() float64
	// CanExecute reports whether any action can still be taken
	CanExecute() bool
	Clone() Environment
	Execute(action int) Environment
	Serialize(buffer []float64)
}
