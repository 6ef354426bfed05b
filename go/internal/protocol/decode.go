package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned for frames that are not JSON objects, lack a
// type, or lack a field their kind requires.
var ErrMalformedFrame = errors.New("malformed frame")

type envelope struct {
	Type       *string `json:"type"`
	ServerTime string  `json:"server_time"`
}

type timerPayload struct {
	Value *int `json:"value"`
}

type statusPayload struct {
	Value *string `json:"value"`
}

type resultPayload struct {
	Number  *int               `json:"number"`
	Color   *Color             `json:"color"`
	History *[]HistoryEntry    `json:"history"`
	Winners map[string]float64 `json:"winners"`
}

type initPayload struct {
	History *[]HistoryEntry `json:"history"`
}

type betConfirmedPayload struct {
	NewBalance    *float64 `json:"new_balance"`
	Message       string   `json:"message"`
	BetInfo       string   `json:"bet_info"`
	CorrelationID string   `json:"correlation_id"`
}

type errorPayload struct {
	Message       *string `json:"message"`
	CorrelationID string  `json:"correlation_id"`
}

// Decode parses one inbound frame. Unknown kinds decode to Unknown with a nil
// error; anything the client cannot safely apply yields ErrMalformedFrame.
func Decode(data []byte) (Envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	if env.Type == nil || *env.Type == "" {
		return Envelope{}, fmt.Errorf("%w: missing type", ErrMalformedFrame)
	}

	msg, err := decodeMessage(Kind(*env.Type), data)
	if err != nil {
		return Envelope{}, fmt.Errorf("%w: %s: %v", ErrMalformedFrame, *env.Type, err)
	}
	return Envelope{ServerTime: env.ServerTime, Message: msg}, nil
}

func decodeMessage(kind Kind, data []byte) (Message, error) {
	switch kind {
	case KindTimer:
		var p timerPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		if p.Value == nil {
			return nil, errors.New("missing value")
		}
		if *p.Value < 0 {
			return nil, fmt.Errorf("negative countdown %d", *p.Value)
		}
		return Timer{Value: *p.Value}, nil

	case KindStatus:
		var p statusPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		if p.Value == nil {
			return nil, errors.New("missing value")
		}
		return Status{Value: *p.Value}, nil

	case KindResult:
		var p resultPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		if p.Number == nil || p.Color == nil || p.History == nil {
			return nil, errors.New("missing number, color or history")
		}
		if err := validateSpin(*p.Number, *p.Color); err != nil {
			return nil, err
		}
		if err := validateHistory(*p.History); err != nil {
			return nil, err
		}
		winners := p.Winners
		if winners == nil {
			winners = map[string]float64{}
		}
		return Result{Number: *p.Number, Color: *p.Color, History: *p.History, Winners: winners}, nil

	case KindInit:
		var p initPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		if p.History == nil {
			return nil, errors.New("missing history")
		}
		if err := validateHistory(*p.History); err != nil {
			return nil, err
		}
		return Init{History: *p.History}, nil

	case KindBetConfirmed:
		var p betConfirmedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		if p.NewBalance == nil {
			return nil, errors.New("missing new_balance")
		}
		return BetConfirmed{
			NewBalance:    *p.NewBalance,
			Message:       p.Message,
			BetInfo:       p.BetInfo,
			CorrelationID: p.CorrelationID,
		}, nil

	case KindError:
		var p errorPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
		if p.Message == nil {
			return nil, errors.New("missing message")
		}
		return Error{Message: *p.Message, CorrelationID: p.CorrelationID}, nil

	default:
		return Unknown{Type: string(kind)}, nil
	}
}

func validateSpin(number int, color Color) error {
	if number < MinNumber || number > MaxNumber {
		return fmt.Errorf("number %d out of range", number)
	}
	if !color.Valid() {
		return fmt.Errorf("unknown color %q", color)
	}
	return nil
}

func validateHistory(history []HistoryEntry) error {
	for i, h := range history {
		if err := validateSpin(h.Number, h.Color); err != nil {
			return fmt.Errorf("history[%d]: %w", i, err)
		}
	}
	return nil
}
