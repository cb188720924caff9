package constant

import _ "embed"

// Banner is printed above the root command's help.
//
//go:embed ascii.txt
var Banner string

// mpvInstall maps runtime.GOOS to the usual way of installing mpv there.
var mpvInstall = map[string]string{
	"darwin":  "brew install mpv",
	"linux":   "sudo apt install mpv",
	"windows": "scoop install mpv",
	"android": "pkg install mpv",
}

// MpvInstallHint returns the install command for mpv on goos, or "" when none is known.
func MpvInstallHint(goos string) string {
	return mpvInstall[goos]
}
