package textutil

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)
var emailRegex = regexp.MustCompile(`\S+@\S+\.\S+`)

// french numbers in national or international form, with optional
// space/dot/dash separators: 0688914976, 06 88 91 49 76, +33 6.88.91.49.76
var phoneRegex = regexp.MustCompile(`(?:(?:\+|00)33[\s.-]?)?(?:0)?[1-9](?:[\s.-]?\d{2}){4}`)

// CleanCandidate strips contact details (emails, phone numbers) and stray
// separators out of a candidate name while keeping hyphens in composed names
// and apostrophes in particle names.
func CleanCandidate(text string) string {
	text = emailRegex.ReplaceAllString(text, "")
	text = phoneRegex.ReplaceAllString(text, "")
	text = strings.ReplaceAll(text, "/", " ")
	text = strings.ReplaceAll(text, ",", " ")
	text = whitespaceRegex.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// PadDepartment left-pads a department number to two digits. Three-digit
// overseas departments are left alone.
func PadDepartment(num string) string {
	num = strings.TrimSpace(num)
	if len(num) == 1 {
		return "0" + num
	}
	return num
}

func CollapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRegex.ReplaceAllString(s, " "))
}
