package utils

import (
	"math/rand/v2"
	"regexp"
)

const txLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// TransactionIDPattern matches identifiers produced by NewTransactionID
var TransactionIDPattern = regexp.MustCompile(`^[A-Z]{3}[0-9]{3}$`)

// NewTransactionID returns three random uppercase letters followed by a
// number between 100 and 999, e.g. "QKD482".
func NewTransactionID() string {
	b := make([]byte, 0, 6)
	for i := 0; i < 3; i++ {
		b = append(b, txLetters[rand.IntN(len(txLetters))])
	}
	n := 100 + rand.IntN(900)
	b = append(b, byte('0'+n/100), byte('0'+(n/10)%10), byte('0'+n%10))
	return string(b)
}
