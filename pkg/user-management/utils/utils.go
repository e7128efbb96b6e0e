package utils

import (
	"bufio"
	"log/slog"
	"net/mail"
	"os"
	"regexp"
	"strings"
)

const (
	PASSWORD_MIN_LEN = 8
	PASSWORD_MAX_LEN = 512
)

var blockedPasswords map[string]struct{}

func LoadBlockedPasswords(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	blockedPasswords = make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	lines := 0
	usedEntries := 0
	for scanner.Scan() {
		lines += 1
		passwordEntry := strings.TrimSpace(scanner.Text())
		if CheckPasswordFormat(passwordEntry) {
			usedEntries += 1
			blockedPasswords[passwordEntry] = struct{}{}
		}
	}

	if err := scanner.Err(); err != nil {
		return err
	}
	slog.Info("loaded blocked password list", slog.Int("lines", lines), slog.Int("used", usedEntries))
	return nil
}

func SanitizeEmail(email string) string {
	email = strings.ToLower(email)
	email = strings.Trim(email, " \n\r")
	return email
}

func SanitizeUsername(username string) string {
	return strings.Trim(username, " \n\r")
}

// CheckEmailFormat to check if input string is a correct email address
func CheckEmailFormat(email string) bool {
	if len(email) > 254 {
		return false
	}
	_, err := mail.ParseAddress(email)
	if err != nil {
		return false
	}
	// additional regex check for correct email format
	emailRule := regexp.MustCompile(`^[a-zA-Z0-9._%+'-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	return emailRule.MatchString(email)
}

// CheckEmailDomainAllowed applies the portal's domain policy on top of the
// general format check: only ".com" and ".net" addresses are accepted.
func CheckEmailDomainAllowed(email string) bool {
	return strings.HasSuffix(email, ".com") || strings.HasSuffix(email, ".net")
}

// CheckPasswordFormat to check if password fulfills password rules
func CheckPasswordFormat(password string) bool {
	pl := len(password)
	if pl < PASSWORD_MIN_LEN || pl > PASSWORD_MAX_LEN {
		return false
	}

	var res = 0

	lowercase := regexp.MustCompile("[a-z]")
	uppercase := regexp.MustCompile("[A-Z]")
	number := regexp.MustCompile(`\d`)
	symbol := regexp.MustCompile(`\W`)

	if lowercase.MatchString(password) {
		res++
	}
	if uppercase.MatchString(password) {
		res++
	}
	if number.MatchString(password) {
		res++
	}
	if symbol.MatchString(password) {
		res++
	}
	return res > 2
}

func IsPasswordOnBlocklist(password string) bool {
	_, exists := blockedPasswords[password]
	return exists
}
