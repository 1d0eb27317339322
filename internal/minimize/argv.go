package minimize

import "strings"

// argvMode names the four ways the target argv can be reconstructed for
// the minimizer subprocess.
type argvMode int

const (
	modeAtAt argvMode = iota
	modeFileFixed
	modeStdinExisting
	modeStdinForced
)

// replacePrefixBeforeEllipsis rewrites an argv element containing a
// literal "..." segment, substituting rootPrefix for everything up
// through the ellipsis. Elements without "..." pass through unchanged.
func replacePrefixBeforeEllipsis(arg, rootPrefix string) string {
	idx := strings.Index(arg, "...")
	if idx < 0 {
		return arg
	}
	return rootPrefix + arg[idx+3:]
}

// reconstructArgv decides among the four modes and returns the final
// target argv to hand to the minimizer, plus a -f path argument when
// MODE_FILE_FIXED applies (empty string otherwise).
func reconstructArgv(srcArgv []string, rootPrefix, fixedOutFile string) (argv []string, fixedPath string) {
	rewritten := make([]string, len(srcArgv))
	for i, a := range srcArgv {
		rewritten[i] = replacePrefixBeforeEllipsis(a, rootPrefix)
	}

	mode := detectMode(rewritten, fixedOutFile)
	switch mode {
	case modeAtAt:
		return rewritten, ""
	case modeFileFixed:
		return rewritten, fixedOutFile
	case modeStdinExisting:
		return rewritten, ""
	default: // modeStdinForced
		return append(append([]string{}, rewritten...), "-"), ""
	}
}

func detectMode(argv []string, fixedOutFile string) argvMode {
	for _, a := range argv {
		if a == "@@" {
			return modeAtAt
		}
	}
	for _, a := range argv {
		if fixedOutFile != "" && a == fixedOutFile {
			return modeFileFixed
		}
		if strings.Contains(a, ".cur_input") {
			return modeFileFixed
		}
	}
	for _, a := range argv {
		if a == "-" {
			return modeStdinExisting
		}
	}
	return modeStdinForced
}
