package protocol

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestDecode_Kinds(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want Kind
	}{
		{name: "timer", raw: `{"type":"timer","value":12,"status":"betting"}`, want: KindTimer},
		{name: "status", raw: `{"type":"status","value":"rolling"}`, want: KindStatus},
		{name: "result", raw: `{"type":"result","number":17,"color":"black","history":[{"number":17,"color":"black"}],"winners":{"3":360}}`, want: KindResult},
		{name: "init", raw: `{"type":"init","history":[]}`, want: KindInit},
		{name: "bet confirmed", raw: `{"type":"bet_confirmed","new_balance":90,"message":"ok","bet_info":"10 on 17"}`, want: KindBetConfirmed},
		{name: "error", raw: `{"type":"error","message":"insufficient funds"}`, want: KindError},
		{name: "unknown", raw: `{"type":"jackpot","value":1}`, want: Kind("jackpot")},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env, err := Decode([]byte(tc.raw))
			if err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if env.Message.Kind() != tc.want {
				t.Fatalf("kind = %q, want %q", env.Message.Kind(), tc.want)
			}
		})
	}
}

func TestDecode_Malformed(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{name: "not json", raw: `{"type":`},
		{name: "array", raw: `[1,2,3]`},
		{name: "missing type", raw: `{"value":3}`},
		{name: "timer without value", raw: `{"type":"timer"}`},
		{name: "timer with string value", raw: `{"type":"timer","value":"3"}`},
		{name: "negative timer", raw: `{"type":"timer","value":-1}`},
		{name: "status without value", raw: `{"type":"status"}`},
		{name: "result without history", raw: `{"type":"result","number":1,"color":"red"}`},
		{name: "result out of range", raw: `{"type":"result","number":37,"color":"red","history":[]}`},
		{name: "result bad color", raw: `{"type":"result","number":1,"color":"blue","history":[]}`},
		{name: "init bad history entry", raw: `{"type":"init","history":[{"number":5,"color":"purple"}]}`},
		{name: "init without history", raw: `{"type":"init"}`},
		{name: "bet confirmed without balance", raw: `{"type":"bet_confirmed","message":"ok"}`},
		{name: "error without message", raw: `{"type":"error"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.raw))
			if !errors.Is(err, ErrMalformedFrame) {
				t.Fatalf("want ErrMalformedFrame, got %v", err)
			}
		})
	}
}

func TestDecode_ResultFields(t *testing.T) {
	raw := `{"type":"result","number":0,"color":"green","server_time":"2025-01-02 10:00:00",
		"history":[{"number":0,"color":"green"},{"number":32,"color":"red"}]}`

	env, err := Decode([]byte(raw))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if env.ServerTime != "2025-01-02 10:00:00" {
		t.Fatalf("server time = %q", env.ServerTime)
	}
	res, ok := env.Message.(Result)
	if !ok {
		t.Fatalf("want Result, got %T", env.Message)
	}
	if res.Number != 0 || res.Color != ColorGreen {
		t.Fatalf("got %d %s", res.Number, res.Color)
	}
	if len(res.History) != 2 || res.History[1].Number != 32 {
		t.Fatalf("history = %+v", res.History)
	}
	if res.Winners == nil || len(res.Winners) != 0 {
		t.Fatalf("missing winners should decode to an empty map, got %v", res.Winners)
	}
}

func TestPlaceBet_WireShape(t *testing.T) {
	data, err := json.Marshal(NewPlaceBet(7, BetNumber, "17", 10))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := map[string]any{
		"type":     "place_bet",
		"user_id":  float64(7),
		"bet_type": "number",
		"value":    "17",
		"amount":   float64(10),
	}
	if len(got) != len(want) {
		t.Fatalf("got fields %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Fatalf("%s = %v, want %v", k, got[k], v)
		}
	}
}

func TestColorOf(t *testing.T) {
	if ColorOf(0) != ColorGreen {
		t.Fatalf("0 should be green")
	}
	for _, n := range []int{1, 3, 5, 7, 9, 12, 14, 16, 18, 19, 21, 23, 25, 27, 30, 32, 34, 36} {
		if ColorOf(n) != ColorRed {
			t.Fatalf("%d should be red", n)
		}
	}
	for _, n := range []int{2, 4, 6, 8, 10, 11, 13, 15, 17, 20, 22, 24, 26, 28, 29, 31, 33, 35} {
		if ColorOf(n) != ColorBlack {
			t.Fatalf("%d should be black", n)
		}
	}
}

func TestValidateBet(t *testing.T) {
	cases := []struct {
		betType BetType
		value   string
		wantErr bool
	}{
		{BetNumber, "17", false},
		{BetNumber, "0", false},
		{BetNumber, "37", true},
		{BetNumber, "seven", true},
		{BetColor, "green", false},
		{BetColor, "blue", true},
		{BetParity, "odd", false},
		{BetParity, "prime", true},
		{BetDozen, "2nd 12", false},
		{BetDozen, "4th 12", true},
		{BetType("split"), "1-2", true},
	}

	for _, tc := range cases {
		t.Run(string(tc.betType)+"/"+tc.value, func(t *testing.T) {
			err := ValidateBet(tc.betType, tc.value)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
		})
	}
}
