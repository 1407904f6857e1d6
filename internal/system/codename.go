package system

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/nginxutil/install-nginx/internal/exitcodes"
)

// DefaultOSReleaseFile is the standard location of OS release metadata.
const DefaultOSReleaseFile = "/etc/os-release"

var codenameToken = regexp.MustCompile(`^[a-z]+$`)

// Codename derives the OS release codename (e.g. "xenial", "bionic")
// from /etc/os-release. The vendor repository URL is codename
// parameterized, so an underivable codename is a hard error.
func Codename() (string, error) {
	return CodenameFrom(DefaultOSReleaseFile)
}

// CodenameFrom derives the codename from the given os-release file.
// Lookup order: VERSION_CODENAME, UBUNTU_CODENAME, then the
// parenthesized name inside VERSION (older releases only carry the
// latter, e.g. VERSION="16.04.1 LTS (Xenial Xerus)").
func CodenameFrom(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", exitcodes.PreconditionErrf("read OS release metadata: %v", err)
	}
	defer func() { _ = f.Close() }()

	fields := map[string]string{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[k] = strings.Trim(v, `"`)
	}
	if err := sc.Err(); err != nil {
		return "", exitcodes.PreconditionErrf("read OS release metadata: %v", err)
	}

	if cn := normalizeCodename(fields["VERSION_CODENAME"]); cn != "" {
		return cn, nil
	}
	if cn := normalizeCodename(fields["UBUNTU_CODENAME"]); cn != "" {
		return cn, nil
	}
	if v := fields["VERSION"]; v != "" {
		if open := strings.Index(v, "("); open >= 0 {
			name := v[open+1:]
			if end := strings.Index(name, ")"); end >= 0 {
				name = name[:end]
			}
			// "Xenial Xerus" -> "xenial"
			if words := strings.Fields(name); len(words) > 0 {
				if cn := normalizeCodename(words[0]); cn != "" {
					return cn, nil
				}
			}
		}
	}
	return "", exitcodes.PreconditionErr("could not derive OS codename from release metadata")
}

func normalizeCodename(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if codenameToken.MatchString(s) {
		return s
	}
	return ""
}
