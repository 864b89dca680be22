package utils

import "syscall"

///////////////////////////////////////////////////////////////////////////////
// Cold-Path Print Helpers — No fmt, No Log Package
///////////////////////////////////////////////////////////////////////////////

// PrintWarning writes msg straight to stderr (fd 2), bypassing the fmt and
// log machinery.  Short writes and errors are ignored; diagnostics must
// never become a failure source themselves.
func PrintWarning(msg string) {
	_, _ = syscall.Write(2, []byte(msg))
}

///////////////////////////////////////////////////////////////////////////////
// Tiny Conversions
///////////////////////////////////////////////////////////////////////////////

// Itoa renders a signed integer in decimal without pulling in strconv.
// Used on print paths where the surrounding string is built by plain
// concatenation.
func Itoa(v int) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	u := uint(v)
	if neg {
		u = -u // two's complement: correct even for the minimum int
	}
	var buf [21]byte
	i := len(buf)
	for u > 0 {
		i--
		buf[i] = byte('0' + u%10)
		u /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
