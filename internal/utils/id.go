package utils

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const (
	OperatorIDPrefix = "OPR00"
	idSuffixLen      = 5
)

var idSpace = new(big.Int).Exp(big.NewInt(36), big.NewInt(idSuffixLen), nil)

// GeneratePrefixedID returns prefix followed by idSuffixLen upper-case
// base36 characters.
func GeneratePrefixedID(prefix string) (string, error) {
	n, err := rand.Int(rand.Reader, idSpace)
	if err != nil {
		return "", err
	}
	suffix := strings.ToUpper(n.Text(36))
	return prefix + strings.Repeat("0", idSuffixLen-len(suffix)) + suffix, nil
}

// GenerateOperatorID returns an operator primary key such as OPR00K3Z9A.
func GenerateOperatorID() (string, error) {
	return GeneratePrefixedID(OperatorIDPrefix)
}
