package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrdinalName(t *testing.T) {
	cases := map[int]string{
		1:    "First",
		2:    "Second",
		3:    "Third",
		4:    "Fourth",
		12:   "Twelfth",
		20:   "Twentieth",
		21:   "Twenty-First",
		42:   "Forty-Second",
		99:   "Ninety-Ninth",
		100:  "One Hundredth",
		101:  "One Hundred First",
		250:  "Two Hundred Fiftieth",
		1001: "1001st",
		1012: "1012th",
		1023: "1023rd",
	}
	for n, want := range cases {
		assert.Equal(t, want, OrdinalName(n), "n=%d", n)
	}
}
