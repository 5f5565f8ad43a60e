package protocol

import (
	"encoding/json"
	"fmt"
)

// Packet is the wire envelope for every protocol message. The payload is
// kept raw on decode so the dispatcher can branch on type before committing
// to a payload shape.
type Packet struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Decode parses a single frame into a Packet. The payload is not
// interpreted; an unknown type is not an error at this layer.
func Decode(frame []byte) (Packet, error) {
	var p Packet
	if err := json.Unmarshal(frame, &p); err != nil {
		return Packet{}, fmt.Errorf("decode packet: %w", err)
	}
	if p.Type == "" {
		return Packet{}, fmt.Errorf("decode packet: missing type")
	}
	return p, nil
}

// Encode serializes the packet to one frame.
func (p Packet) Encode() ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("encode packet: %w", err)
	}
	return data, nil
}

// encode marshals a payload struct. The payload types in this package only
// contain strings, ints, bools and slices of those, so marshalling cannot
// fail; an empty object is substituted rather than propagating an error.
func encode(v any) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("{}")
	}
	return data
}

// Constructors for every outbound message kind. Building a packet never
// touches channel state.

func ParticipantConfig(name string) Packet {
	return Packet{Type: TypeParticipantConfig, Payload: encode(ParticipantConfigMsg{Name: name})}
}

func ParticipantAnswer(questionIndex int, selectedOptionIndexes []int, answeredInDurationMillis int) Packet {
	return Packet{Type: TypeParticipantAnswer, Payload: encode(ParticipantAnswerMsg{
		QuestionIndex:         questionIndex,
		SelectedOptionIndexes: selectedOptionIndexes,
		AnsweredInDuration:    answeredInDurationMillis,
	})}
}

func ParticipantAnswerTimeout(questionIndex int) Packet {
	return Packet{Type: TypeParticipantAnswerTimeout, Payload: encode(ParticipantAnswerTimeoutMsg{QuestionIndex: questionIndex})}
}

func RequestParticipantQuestion(questionIndex int) Packet {
	return Packet{Type: TypeRequestParticipantQuestion, Payload: encode(RequestParticipantQuestionMsg{QuestionIndex: questionIndex})}
}

func RequestParticipantResults(userID string) Packet {
	return Packet{Type: TypeRequestParticipantResults, Payload: encode(RequestParticipantResultsMsg{UserID: userID})}
}

func HostConfig(quizName string, categories []string, durationSeconds int, selectedQuestionIndexes []int) Packet {
	return Packet{Type: TypeHostConfig, Payload: encode(HostConfigMsg{
		QuizName:                quizName,
		Categories:              categories,
		Duration:                durationSeconds,
		SelectedQuestionIndexes: selectedQuestionIndexes,
	})}
}

func HostStart() Packet {
	return Packet{Type: TypeHostStart, Payload: encode(HostStartMsg{})}
}

func RequestHostQuestions() Packet {
	return Packet{Type: TypeRequestHostQuestions, Payload: encode(RequestHostQuestionsMsg{})}
}

func RequestHostQuizSummary() Packet {
	return Packet{Type: TypeRequestHostQuizSummary, Payload: encode(RequestHostQuizSummaryMsg{})}
}
