package versions

import (
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Compare returns -1, 0 or +1 depending on whether a is older than, equal to,
// or newer than b. A leading "v" is accepted. Parseable versions sort after
// unparseable ones so that well-formed bundle versions rank first when sorting
// newest-first.
func Compare(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)

	switch {
	case errA == nil && errB == nil:
		return va.Compare(vb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a, b)
	}
}
