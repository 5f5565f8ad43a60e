package session

// Phase is the dispatcher's position in the session protocol. Participant
// sessions move Joining -> Lobby -> AwaitingQuestion -> Answering (loop) ->
// Summary; host sessions move Hosting -> Configuring -> Running -> Summary.
type Phase string

const (
	// PhaseHome is the pre-session phase shared by both roles.
	PhaseHome Phase = "home"

	PhaseJoining          Phase = "joining"
	PhaseLobby            Phase = "lobby"
	PhaseAwaitingQuestion Phase = "awaiting_question"
	PhaseAnswering        Phase = "answering"

	PhaseHosting     Phase = "hosting"
	PhaseConfiguring Phase = "configuring"
	PhaseRunning     Phase = "running"

	PhaseSummary Phase = "summary"
)

// Store aggregates the three state partitions. Partitions never read or
// mutate each other; cross-partition coordination happens only in the
// dispatcher, which is also the only writer.
type Store struct {
	Common      Common
	Host        Host
	Participant Participant
}

// NewStore returns a store with every partition at its initial value.
func NewStore() *Store {
	return &Store{
		Common:      NewCommon(),
		Host:        NewHost(),
		Participant: NewParticipant(),
	}
}

// Reset restores all partitions to their initial values. Idempotent:
// resetting twice is the same as resetting once.
func (s *Store) Reset() {
	s.Common = s.Common.Reset()
	s.Host = s.Host.Reset()
	s.Participant = s.Participant.Reset()
}
