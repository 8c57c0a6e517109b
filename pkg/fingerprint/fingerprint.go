package fingerprint

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/text/language"
)

// Length is the number of characters in a fingerprint.
const Length = 16

// Environment holds the client attributes a fingerprint is derived from.
type Environment struct {
	ScreenWidth  int
	ScreenHeight int
	Timezone     string
	Language     string
	Platform     string
}

// Generate derives a 16-character hex fingerprint from env.
// The same environment always yields the same fingerprint.
func Generate(env Environment) string {
	combined := strings.Join([]string{
		strconv.Itoa(env.ScreenWidth) + "x" + strconv.Itoa(env.ScreenHeight),
		env.Timezone,
		env.Language,
		env.Platform,
	}, "|")
	hash := sha256.Sum256([]byte(combined))

	return hex.EncodeToString(hash[:Length/2])
}

// Validate reports whether the fingerprint of env equals stored.
// An empty stored fingerprint never matches.
func Validate(env Environment, stored string) bool {
	if stored == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(Generate(env)), []byte(stored)) == 1
}

// Detect reads the environment of the current process.
func Detect() Environment {
	return DetectFrom(os.LookupEnv)
}

// DetectFrom builds an Environment using lookup for environment variables:
// COLUMNS and LINES give the screen size, TZ (or the /etc/localtime link)
// the timezone, LC_ALL / LC_MESSAGES / LANG the language.
func DetectFrom(lookup func(string) (string, bool)) Environment {
	return Environment{
		ScreenWidth:  intFrom(lookup, "COLUMNS"),
		ScreenHeight: intFrom(lookup, "LINES"),
		Timezone:     timezoneFrom(lookup),
		Language:     languageFrom(lookup),
		Platform:     runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// NormalizeLanguage turns a POSIX locale such as "en_US.UTF-8" into a
// BCP 47 tag such as "en-US". Unparseable values yield "und".
func NormalizeLanguage(raw string) string {
	raw, _, _ = strings.Cut(raw, ".")
	raw, _, _ = strings.Cut(raw, "@")
	raw = strings.ReplaceAll(strings.TrimSpace(raw), "_", "-")

	if raw == "" || raw == "C" || raw == "POSIX" {
		return language.Und.String()
	}
	tag, err := language.Parse(raw)
	if err != nil {
		return language.Und.String()
	}
	return tag.String()
}

func intFrom(lookup func(string) (string, bool), key string) int {
	v, ok := lookup(key)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func languageFrom(lookup func(string) (string, bool)) string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		if v, ok := lookup(key); ok && v != "" {
			return NormalizeLanguage(v)
		}
	}
	return language.Und.String()
}

// timezoneFrom resolves an IANA zone name. The abbreviation reported by
// time.Now().Zone() is avoided because it flips with daylight saving time.
func timezoneFrom(lookup func(string) (string, bool)) string {
	if tz, ok := lookup("TZ"); ok && tz != "" {
		return strings.TrimPrefix(tz, ":")
	}
	if target, err := os.Readlink("/etc/localtime"); err == nil {
		if _, zone, found := strings.Cut(filepath.ToSlash(target), "zoneinfo/"); found {
			return zone
		}
	}
	return "Local"
}
