package protocol

import (
	"fmt"
	"strconv"
)

// Color of a pocket on the wheel.
type Color string

const (
	ColorRed   Color = "red"
	ColorBlack Color = "black"
	ColorGreen Color = "green"
)

// Valid reports whether c is one of the three wheel colours.
func (c Color) Valid() bool {
	switch c {
	case ColorRed, ColorBlack, ColorGreen:
		return true
	}
	return false
}

const (
	MinNumber = 0
	MaxNumber = 36
)

var redNumbers = map[int]bool{
	1: true, 3: true, 5: true, 7: true, 9: true, 12: true, 14: true, 16: true, 18: true,
	19: true, 21: true, 23: true, 25: true, 27: true, 30: true, 32: true, 34: true, 36: true,
}

// ColorOf returns the colour of a single-zero wheel pocket.
func ColorOf(number int) Color {
	if number == 0 {
		return ColorGreen
	}
	if redNumbers[number] {
		return ColorRed
	}
	return ColorBlack
}

// BetType is the kind of wager in a place_bet frame.
type BetType string

const (
	BetNumber BetType = "number"
	BetColor  BetType = "color"
	BetParity BetType = "parity"
	BetDozen  BetType = "dozen"
)

// Dozen bet values as the server expects them.
const (
	DozenFirst  = "1st 12"
	DozenSecond = "2nd 12"
	DozenThird  = "3rd 12"
)

// ValidateBet checks that value is a legal selection for betType.
func ValidateBet(betType BetType, value string) error {
	switch betType {
	case BetNumber:
		n, err := strconv.Atoi(value)
		if err != nil || n < MinNumber || n > MaxNumber {
			return fmt.Errorf("number bet must be %d-%d, got %q", MinNumber, MaxNumber, value)
		}
	case BetColor:
		if !Color(value).Valid() {
			return fmt.Errorf("color bet must be red, black or green, got %q", value)
		}
	case BetParity:
		if value != "even" && value != "odd" {
			return fmt.Errorf("parity bet must be even or odd, got %q", value)
		}
	case BetDozen:
		if value != DozenFirst && value != DozenSecond && value != DozenThird {
			return fmt.Errorf("dozen bet must be %q, %q or %q, got %q", DozenFirst, DozenSecond, DozenThird, value)
		}
	default:
		return fmt.Errorf("unknown bet type %q", betType)
	}
	return nil
}
