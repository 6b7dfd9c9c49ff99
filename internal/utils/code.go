package utils

import "crypto/rand"

// codeAlphabet is the character space for library join codes: uppercase
// letters and digits, typed by humans, normalized to uppercase on input.
const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// CodeLength is the fixed length of a library join code.  36^6 codes make
// an accidental collision rare; the unique index on libraries.code catches
// the rest.
const CodeLength = 6

// NewLibraryCode returns a random join code drawn from codeAlphabet.
// Modulo bias over a 36 character alphabet is negligible for this use.
func NewLibraryCode() string {
	buf := make([]byte, CodeLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails when the OS entropy source is broken;
		// nothing sensible to do at this layer.
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}
