package models

import "fmt"

// Score is a complementary confidence split.
type Score struct {
	Call int `json:"call_percent"`
	Put  int `json:"put_percent"`
}

// Validate checks both sides are in [0,100] and sum to 100.
func (s Score) Validate() error {
	if s.Call < 0 || s.Call > 100 || s.Put < 0 || s.Put > 100 {
		return fmt.Errorf("score out of range: call=%d put=%d", s.Call, s.Put)
	}
	if s.Call+s.Put != 100 {
		return fmt.Errorf("score does not sum to 100: call=%d put=%d", s.Call, s.Put)
	}
	return nil
}
