// Command hash-password prints a bcrypt hash for seeding an operator row by
// hand. The password comes from the first argument or, if absent, from the
// first line of stdin.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/madhava-poojari/jobs-admin-console/internal/utils"
)

const minPasswordLen = 8

func main() {
	password, err := readPassword()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: hash-password <password>  (or pipe it on stdin)")
		os.Exit(1)
	}
	if len(password) < minPasswordLen {
		fmt.Fprintf(os.Stderr, "Error: password must be at least %d characters\n", minPasswordLen)
		os.Exit(1)
	}
	hash, err := utils.HashPassword(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(hash)
}

func readPassword() (string, error) {
	if len(os.Args) > 1 {
		return os.Args[1], nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("no password given: %w", err)
		}
		return "", fmt.Errorf("no password given")
	}
	return line, nil
}
