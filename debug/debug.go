// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path logging helper (zero-alloc)
//
// Purpose:
//   - Logs infrequent events without introducing heap pressure.
//   - Used only off the hot path: harness progress, teardown, sink errors.
//
// Notes:
//   - Avoids fmt.Sprintf; messages are built by plain concatenation.
//   - Never invoke from inside a worker function's hot loop.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "github.com/tesseract241/simpleAtomicWorkerPool/utils"

// DropError logs err under prefix, or just the prefix when err is nil.
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
	} else {
		utils.PrintWarning(prefix + "\n")
	}
}

// DropMessage logs a tagged one-liner for cold-path diagnostics.
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}
