package course_archiver

import "strings"

// IllegalFilenameChars are the characters NTFS does not allow in a filename.
const IllegalFilenameChars = `\/:*?"<>|`

var titleReplacer = func() *strings.Replacer {
	pairs := make([]string, 0, 2*len(IllegalFilenameChars))
	for _, c := range IllegalFilenameChars {
		pairs = append(pairs, string(c), "#")
	}
	return strings.NewReplacer(pairs...)
}()

// SanitizeTitle replaces every character in IllegalFilenameChars with '#', leaving everything else untouched.
func SanitizeTitle(title string) string {
	return titleReplacer.Replace(title)
}
