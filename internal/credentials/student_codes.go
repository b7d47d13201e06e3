package credentials

import (
	"crypto/rand"
	"math/big"
	"strings"
)

// Word list for generating memorable student codes
var codeWords = []string{
	"apple", "banjo", "cloud", "delta", "ember", "frost", "grape", "honey",
	"igloo", "jumbo", "koala", "lemon", "mango", "ninja", "ocean", "panda",
	"quill", "river", "solar", "tiger", "ultra", "vivid", "whale", "xenon",
	"yacht", "zebra", "comet", "dingo", "eagle", "flame", "gecko", "hippo",
}

// GenerateStudentCode generates a code in the format "word-word-NN".
// Codes never start with "test": that prefix is reserved for test mode.
func GenerateStudentCode() (string, error) {
	for {
		first, err := randomElement(codeWords)
		if err != nil {
			return "", err
		}
		second, err := randomElement(codeWords)
		if err != nil {
			return "", err
		}
		num, err := rand.Int(rand.Reader, big.NewInt(100))
		if err != nil {
			return "", err
		}

		code := first + "-" + second + "-" + twoDigits(int(num.Int64()))
		if !strings.HasPrefix(strings.ToLower(code), "test") {
			return code, nil
		}
	}
}

func twoDigits(n int) string {
	return string([]byte{byte('0' + n/10), byte('0' + n%10)})
}

// randomElement picks a random element from a string slice
func randomElement(slice []string) (string, error) {
	if len(slice) == 0 {
		return "", nil
	}

	num, err := rand.Int(rand.Reader, big.NewInt(int64(len(slice))))
	if err != nil {
		return "", err
	}

	return slice[num.Int64()], nil
}
