package policy

import (
	"path"
	"path/filepath"
	"strings"
)

// networkCommands is the fixed deny-list of network egress and
// reconnaissance utilities.
var networkCommands = []string{
	"curl", "wget",
	"nc", "netcat", "ncat",
	"ssh", "scp", "sftp",
	"ftp", "tftp",
	"nmap",
	"ping", "ping6", "traceroute",
	"dig", "nslookup", "host",
	"telnet",
}

// NetworkCommands returns a copy of the built-in network deny-list.
func NetworkCommands() []string {
	return append([]string(nil), networkCommands...)
}

// BaseName returns the final path segment of command, so that
// "/usr/bin/curl", "/usr/bin/curl/." and "curl" are matched alike.
func BaseName(command string) string {
	base := path.Base(path.Clean(filepath.ToSlash(command)))
	switch base {
	case ".", "/", "..":
		return command
	}
	return base
}

// CheckSudo rejects a command whose base name is sudo, or whose argument
// list contains sudo.
func CheckSudo(command string, args []string) error {
	if foldASCII(BaseName(command)) == "sudo" {
		return sudoDetected(command)
	}

	for _, arg := range args {
		if foldASCII(arg) == "sudo" {
			return sudoDetected(command + " (sudo in args)")
		}
	}

	return nil
}

// CheckNetwork rejects a command whose base name is on the built-in
// network deny-list.
func CheckNetwork(command string) error {
	return defaultDenyList.check(command)
}

// foldASCII lowercases ASCII letters and leaves every other rune as is.
// Both command checks compare through it.
func foldASCII(s string) string {
	return strings.Map(func(r rune) rune {
		if 'A' <= r && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}, s)
}

// denyList is an ASCII case-insensitive set of executable base names.
type denyList map[string]struct{}

var defaultDenyList = newDenyList(nil)

func newDenyList(extra []string) denyList {
	dl := make(denyList, len(networkCommands)+len(extra))
	for _, name := range networkCommands {
		dl[foldASCII(name)] = struct{}{}
	}
	for _, name := range extra {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		dl[foldASCII(BaseName(name))] = struct{}{}
	}
	return dl
}

func (dl denyList) check(command string) error {
	if _, denied := dl[foldASCII(BaseName(command))]; denied {
		return networkOperation(command)
	}
	return nil
}
